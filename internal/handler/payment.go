package handler

import (
	"net/http"
	"time"

	"github.com/avolkov/paydesk/internal/domain/payment"
)

// recordView is the JSON shape of a payment record.
type recordView struct {
	ID               string  `json:"id"`
	PaymentID        string  `json:"paymentId"`
	OrderID          string  `json:"orderId"`
	Amount           float64 `json:"amount"`
	PaidAmount       float64 `json:"paidAmount"`
	DiscountAmount   float64 `json:"discountAmount"`
	PaymentMethod    string  `json:"paymentMethod"`
	UserID           string  `json:"userId"`
	DiscountID       string  `json:"discountId,omitempty"`
	DiscountCode     string  `json:"discountCode,omitempty"`
	OrderDescription string  `json:"orderDescription,omitempty"`
	PaidAt           string  `json:"paidAt"`
}

func viewRecord(rec *payment.Record) recordView {
	return recordView{
		ID:               rec.ID,
		PaymentID:        rec.PaymentID,
		OrderID:          rec.OrderID,
		Amount:           rec.Amount.InexactFloat64(),
		PaidAmount:       rec.PaidAmount.InexactFloat64(),
		DiscountAmount:   rec.DiscountAmount.InexactFloat64(),
		PaymentMethod:    rec.PaymentMethod,
		UserID:           rec.UserID,
		DiscountID:       rec.DiscountID,
		DiscountCode:     rec.DiscountCode,
		OrderDescription: rec.OrderDescription,
		PaidAt:           rec.PaidAt.Format(time.RFC3339),
	}
}

type settleRequest struct {
	OrderID       string `json:"orderId"`
	DiscountCode  string `json:"discountCode"`
	PaymentMethod string `json:"paymentMethod"`
	UserID        string `json:"userId"`
}

// settleView is the JSON shape of a successful settlement.
type settleView struct {
	Order          orderView     `json:"order"`
	PaymentRecord  recordView    `json:"paymentRecord"`
	Discount       *discountView `json:"discount,omitempty"`
	OriginalAmount float64       `json:"originalAmount"`
	DiscountAmount float64       `json:"discountAmount"`
	FinalAmount    float64       `json:"finalAmount"`
	Savings        float64       `json:"savings"`
}

// SettlePayment handles POST /payment.
func (h *Handler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "orderId is required")
		return
	}
	if req.PaymentMethod == "" {
		respondError(w, http.StatusBadRequest, "paymentMethod is required")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	res, err := h.settlement.Settle(r.Context(), payment.SettleRequest{
		OrderID:      req.OrderID,
		DiscountCode: req.DiscountCode,
		Method:       req.PaymentMethod,
		UserID:       req.UserID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	view := settleView{
		Order:          viewOrder(res.Order),
		PaymentRecord:  viewRecord(res.Record),
		OriginalAmount: res.Quote.OriginalAmount.InexactFloat64(),
		DiscountAmount: res.Quote.DiscountAmount.InexactFloat64(),
		FinalAmount:    res.Quote.FinalAmount.InexactFloat64(),
		Savings:        res.Quote.Savings.InexactFloat64(),
	}
	if res.Discount != nil {
		dv := viewDiscount(res.Discount)
		view.Discount = &dv
	}
	respond(w, http.StatusOK, view)
}

// ListPayments handles GET /payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	recs, err := h.payments.List(r.Context(), parseLimit(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]recordView, len(recs))
	for i := range recs {
		views[i] = viewRecord(&recs[i])
	}
	respond(w, http.StatusOK, views)
}
