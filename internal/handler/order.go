package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avolkov/paydesk/internal/domain/order"
)

// orderView is the JSON shape of an order.
type orderView struct {
	ID            string   `json:"id"`
	Amount        float64  `json:"amount"`
	Balance       float64  `json:"balance"`
	Status        string   `json:"status"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
	Description   string   `json:"description,omitempty"`
	UserID        string   `json:"userId"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     *string  `json:"updatedAt,omitempty"`
}

func viewOrder(o *order.Order) orderView {
	v := orderView{
		ID:            o.ID,
		Amount:        o.Amount.InexactFloat64(),
		Balance:       o.Balance.InexactFloat64(),
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		Description:   o.Description,
		UserID:        o.UserID,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
	if o.UpdatedAt != nil {
		s := o.UpdatedAt.Format(time.RFC3339)
		v.UpdatedAt = &s
	}
	return v
}

type createOrderRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	UserID      string  `json:"userId"`
}

// CreateOrder handles POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	o := &order.Order{
		Amount:      decimal.NewFromFloat(req.Amount).Round(2),
		Description: req.Description,
		UserID:      req.UserID,
	}
	if err := h.orders.Create(r.Context(), o); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, viewOrder(o))
}

// GetOrder handles GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, viewOrder(o))
}

// ListOrders handles GET /orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), parseLimit(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = viewOrder(&orders[i])
	}
	respond(w, http.StatusOK, views)
}

type updateOrderRequest struct {
	Amount        *float64 `json:"amount"`
	Balance       *float64 `json:"balance"`
	Status        *string  `json:"status"`
	PaymentMethod *string  `json:"paymentMethod"`
	Description   *string  `json:"description"`
}

// UpdateOrder handles PUT /orders/{id}. Fields absent from the body are left
// untouched. Terminal orders only accept a no-op status (re-opening a paid or
// cancelled order is rejected).
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}

	upd := order.Update{
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	}
	if req.Amount != nil {
		amt := decimal.NewFromFloat(*req.Amount).Round(2)
		upd.Amount = &amt
	}
	if req.Balance != nil {
		bal := decimal.NewFromFloat(*req.Balance).Round(2)
		upd.Balance = &bal
	}
	if req.Status != nil {
		st := order.Status(*req.Status)
		if !st.Valid() {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		upd.Status = &st
	}

	if upd.Status != nil {
		existing, err := h.orders.GetByID(r.Context(), id)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		if existing.Status.Terminal() && *upd.Status != existing.Status {
			respondError(w, http.StatusConflict, "order is in a terminal state")
			return
		}
	}

	o, err := h.orders.Update(r.Context(), id, upd)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, viewOrder(o))
}
