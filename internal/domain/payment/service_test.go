package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/paydesk/internal/domain/discount"
	"github.com/avolkov/paydesk/internal/domain/order"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID map[string]*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, _ *order.Order) error { return nil }

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context, _ int) ([]order.Order, error) { return nil, nil }

func (m *mockOrderRepo) Update(_ context.Context, _ string, _ order.Update) (*order.Order, error) {
	return nil, nil
}

type mockValidator struct {
	discount *discount.Discount
	err      error
	calls    int
}

func (m *mockValidator) Validate(_ context.Context, _ string, _ decimal.Decimal) (*discount.Discount, error) {
	m.calls++
	return m.discount, m.err
}

type mockGateway struct {
	err   error
	calls int
	last  ChargeRequest
}

func (m *mockGateway) Charge(_ context.Context, req ChargeRequest) error {
	m.calls++
	m.last = req
	return m.err
}

type mockSettler struct {
	err   error
	calls int
	last  *Record
}

func (m *mockSettler) Commit(_ context.Context, rec *Record) error {
	m.calls++
	m.last = rec
	if m.err != nil {
		return m.err
	}
	rec.ID = "rec-1"
	return nil
}

// --- Helpers ---

func pendingOrder(id, userID string, amount decimal.Decimal) *order.Order {
	return &order.Order{
		ID:          id,
		Amount:      amount,
		Balance:     amount,
		Status:      order.StatusPending,
		Description: "test order",
		UserID:      userID,
	}
}

func activeDiscount(id, code string, balance decimal.Decimal) *discount.Discount {
	return &discount.Discount{
		ID:      id,
		Code:    code,
		Balance: balance,
		Status:  discount.StatusActive,
	}
}

// --- Tests ---

func TestService_Settle(t *testing.T) {
	t.Run("happy path with discount", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*order.Order{
			"o1": pendingOrder("o1", "u1", decimal.NewFromInt(100)),
		}}
		validator := &mockValidator{discount: activeDiscount("d1", "SAVE20", decimal.NewFromInt(20))}
		gateway := &mockGateway{}
		settler := &mockSettler{}
		svc := NewService(orders, validator, gateway, settler)

		res, err := svc.Settle(context.Background(), SettleRequest{
			OrderID:      "o1",
			DiscountCode: "SAVE20",
			Method:       "card",
			UserID:       "u1",
		})

		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, res.Order.Status)
		assert.Equal(t, "card", res.Order.PaymentMethod)
		assert.True(t, res.Order.Balance.Equal(decimal.NewFromInt(80)))
		assert.True(t, res.Quote.DiscountAmount.Equal(decimal.NewFromInt(20)))
		assert.True(t, res.Quote.FinalAmount.Equal(decimal.NewFromInt(80)))
		assert.True(t, res.Quote.Savings.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, 1, res.Discount.UsageCount)

		// Record conservation: paid + discount == amount.
		rec := res.Record
		assert.True(t, rec.PaidAmount.Add(rec.DiscountAmount).Equal(rec.Amount))
		assert.Equal(t, "d1", rec.DiscountID)
		assert.Equal(t, "SAVE20", rec.DiscountCode)
		assert.Equal(t, "test order", rec.OrderDescription)
		assert.NotEmpty(t, rec.PaymentID)

		// Gateway charged the discounted amount.
		assert.True(t, gateway.last.Amount.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, 1, settler.calls)
	})

	t.Run("happy path without discount", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*order.Order{
			"o1": pendingOrder("o1", "u1", decimal.NewFromInt(50)),
		}}
		validator := &mockValidator{}
		gateway := &mockGateway{}
		settler := &mockSettler{}
		svc := NewService(orders, validator, gateway, settler)

		res, err := svc.Settle(context.Background(), SettleRequest{
			OrderID: "o1",
			Method:  "cash",
			UserID:  "u1",
		})

		require.NoError(t, err)
		assert.Equal(t, 0, validator.calls, "blank code must not reach the validator")
		assert.Nil(t, res.Discount)
		assert.True(t, res.Quote.FinalAmount.Equal(decimal.NewFromInt(50)))
		assert.True(t, res.Quote.DiscountAmount.IsZero())
		assert.True(t, res.Record.PaidAmount.Equal(res.Record.Amount))
		assert.Empty(t, res.Record.DiscountID)
		assert.Empty(t, res.Record.DiscountCode)
	})

	t.Run("over-discount is clamped to the order amount", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*order.Order{
			"o1": pendingOrder("o1", "u1", decimal.NewFromInt(10)),
		}}
		validator := &mockValidator{discount: activeDiscount("d1", "BIG50", decimal.NewFromInt(50))}
		gateway := &mockGateway{}
		settler := &mockSettler{}
		svc := NewService(orders, validator, gateway, settler)

		res, err := svc.Settle(context.Background(), SettleRequest{
			OrderID:      "o1",
			DiscountCode: "BIG50",
			Method:       "card",
			UserID:       "u1",
		})

		require.NoError(t, err)
		assert.True(t, res.Quote.DiscountAmount.Equal(decimal.NewFromInt(10)))
		assert.True(t, res.Quote.FinalAmount.IsZero())
		assert.False(t, res.Quote.FinalAmount.IsNegative())
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := NewService(&mockOrderRepo{byID: map[string]*order.Order{}},
			&mockValidator{}, &mockGateway{}, &mockSettler{})

		_, err := svc.Settle(context.Background(), SettleRequest{
			OrderID: "missing", Method: "card", UserID: "u1",
		})

		require.ErrorIs(t, err, order.ErrNotFound)
	})

	t.Run("order already paid", func(t *testing.T) {
		o := pendingOrder("o1", "u1", decimal.NewFromInt(10))
		o.Status = order.StatusPaid
		gateway := &mockGateway{}
		settler := &mockSettler{}
		svc := NewService(&mockOrderRepo{byID: map[string]*order.Order{"o1": o}},
			&mockValidator{}, gateway, settler)

		_, err := svc.Settle(context.Background(), SettleRequest{
			OrderID: "o1", Method: "card", UserID: "u1",
		})

		require.ErrorIs(t, err, ErrOrderNotPending)
		assert.Equal(t, 0, gateway.calls)
		assert.Equal(t, 0, settler.calls)
	})

	t.Run("cancelled order also fails as not pending", func(t *testing.T) {
		o := pendingOrder("o1", "u1", decimal.NewFromInt(10))
		o.Status = order.StatusCancelled
		svc := NewService(&mockOrderRepo{byID: map[string]*order.Order{"o1": o}},
			&mockValidator{}, &mockGateway{}, &mockSettler{})

		_, err := svc.Settle(context.Background(), SettleRequest{
			OrderID: "o1", Method: "card", UserID: "u1",
		})

		require.ErrorIs(t, err, ErrOrderNotPending)
	})

	t.Run("foreign order is forbidden", func(t *testing.T) {
		svc := NewService(&mockOrderRepo{byID: map[string]*order.Order{
			"o1": pendingOrder("o1", "owner", decimal.NewFromInt(10)),
		}}, &mockValidator{}, &mockGateway{}, &mockSettler{})

		_, err := svc.Settle(context.Background(), SettleRequest{
			OrderID: "o1", Method: "card", UserID: "intruder",
		})

		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("rejected discount aborts before the gateway", func(t *testing.T) {
		gateway := &mockGateway{}
		settler := &mockSettler{}
		svc := NewService(&mockOrderRepo{byID: map[string]*order.Order{
			"o1": pendingOrder("o1", "u1", decimal.NewFromInt(100)),
		}}, &mockValidator{err: discount.Reject(discount.ReasonUsageExceeded, "discount code usage limit reached")},
			gateway, settler)

		_, err := svc.Settle(context.Background(), SettleRequest{
			OrderID: "o1", DiscountCode: "SPENT", Method: "card", UserID: "u1",
		})

		var rej *discount.RejectionError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, discount.ReasonUsageExceeded, rej.Reason)
		assert.Equal(t, 0, gateway.calls)
		assert.Equal(t, 0, settler.calls)
	})

	t.Run("declined charge commits nothing", func(t *testing.T) {
		validator := &mockValidator{discount: activeDiscount("d1", "SAVE5", decimal.NewFromInt(5))}
		settler := &mockSettler{}
		svc := NewService(&mockOrderRepo{byID: map[string]*order.Order{
			"o1": pendingOrder("o1", "u1", decimal.NewFromInt(100)),
		}}, validator, &mockGateway{err: ErrDeclined}, settler)

		_, err := svc.Settle(context.Background(), SettleRequest{
			OrderID: "o1", DiscountCode: "SAVE5", Method: "card", UserID: "u1",
		})

		require.ErrorIs(t, err, ErrDeclined)
		assert.Equal(t, 0, settler.calls,
			"a declined charge must not touch the stores, including the usage counter")
		assert.Equal(t, 0, validator.discount.UsageCount)
	})

	t.Run("commit race surfaces as not pending", func(t *testing.T) {
		svc := NewService(&mockOrderRepo{byID: map[string]*order.Order{
			"o1": pendingOrder("o1", "u1", decimal.NewFromInt(100)),
		}}, &mockValidator{}, &mockGateway{}, &mockSettler{err: ErrOrderNotPending})

		_, err := svc.Settle(context.Background(), SettleRequest{
			OrderID: "o1", Method: "card", UserID: "u1",
		})

		require.ErrorIs(t, err, ErrOrderNotPending)
	})
}
