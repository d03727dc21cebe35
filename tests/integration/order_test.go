//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestCreateOrder(t *testing.T) {
	o := createOrder(t, 100, "it-user")

	if o.ID == "" {
		t.Fatal("expected order ID to be assigned")
	}
	if o.Status != "pending" {
		t.Errorf("status: got %q, want %q", o.Status, "pending")
	}
	if o.Amount != 100 {
		t.Errorf("amount: got %v, want 100", o.Amount)
	}
	if o.Balance != 100 {
		t.Errorf("balance: got %v, want 100", o.Balance)
	}
}

func TestCreateOrder_InvalidAmount(t *testing.T) {
	resp := doPost(t, "/orders", map[string]any{"amount": -5, "userId": "it-user"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg == "" {
		t.Error("expected an error message")
	}
}

func TestGetOrder(t *testing.T) {
	created := createOrder(t, 42.50, "it-user")

	resp := doGet(t, "/orders/"+created.ID)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := decodeData[orderResponse](t, resp)
	if got.ID != created.ID {
		t.Errorf("id: got %q, want %q", got.ID, created.ID)
	}
	if got.Amount != 42.50 {
		t.Errorf("amount: got %v, want 42.50", got.Amount)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/orders/no-such-order")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateOrder_Description(t *testing.T) {
	created := createOrder(t, 10, "it-user")

	resp := doPut(t, "/orders/"+created.ID, map[string]any{"description": "updated via API"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := decodeData[orderResponse](t, resp)
	if got.Description != "updated via API" {
		t.Errorf("description: got %q", got.Description)
	}
	if got.Amount != 10 {
		t.Errorf("amount changed unexpectedly: got %v", got.Amount)
	}
}

func TestUpdateOrder_CancelThenReopen(t *testing.T) {
	created := createOrder(t, 10, "it-user")

	resp := doPut(t, "/orders/"+created.ID, map[string]any{"status": "cancelled"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", resp.StatusCode)
	}
	got := decodeData[orderResponse](t, resp)
	resp.Body.Close()
	if got.Status != "cancelled" {
		t.Fatalf("status: got %q, want cancelled", got.Status)
	}

	// A cancelled order is terminal and cannot go back to pending.
	resp = doPut(t, "/orders/"+created.ID, map[string]any{"status": "pending"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("reopen: expected 409, got %d", resp.StatusCode)
	}
}

func TestListOrders(t *testing.T) {
	createOrder(t, 5, "it-list-user")

	resp := doGet(t, "/orders?limit=10")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	orders := decodeData[[]orderResponse](t, resp)
	if len(orders) == 0 {
		t.Fatal("expected at least one order")
	}
	if len(orders) > 10 {
		t.Fatalf("limit not applied: got %d orders", len(orders))
	}
}
