package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avolkov/paydesk/internal/domain/discount"
)

// discountView is the JSON shape of a discount.
type discountView struct {
	ID             string   `json:"id"`
	Code           string   `json:"code"`
	Balance        float64  `json:"balance"`
	IsFullDiscount bool     `json:"isFullDiscount"`
	Status         string   `json:"status"`
	UsageCount     int      `json:"usageCount"`
	MaxUsage       *int     `json:"maxUsage,omitempty"`
	MinAmount      *float64 `json:"minAmount,omitempty"`
	Description    string   `json:"description,omitempty"`
	CreatedAt      string   `json:"createdAt"`
}

func viewDiscount(d *discount.Discount) discountView {
	v := discountView{
		ID:             d.ID,
		Code:           d.Code,
		Balance:        d.Balance.InexactFloat64(),
		IsFullDiscount: d.IsFullDiscount,
		Status:         string(d.Status),
		UsageCount:     d.UsageCount,
		MaxUsage:       d.MaxUsage,
		Description:    d.Description,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
	if d.MinAmount != nil {
		m := d.MinAmount.InexactFloat64()
		v.MinAmount = &m
	}
	return v
}

type createDiscountRequest struct {
	Code           string   `json:"code"`
	Balance        float64  `json:"balance"`
	IsFullDiscount bool     `json:"isFullDiscount"`
	Description    string   `json:"description"`
	MaxUsage       *int     `json:"maxUsage"`
	MinAmount      *float64 `json:"minAmount"`
}

// CreateDiscount handles POST /discounts.
func (h *Handler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req createDiscountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Code) < discount.MinCodeLength {
		respondError(w, http.StatusBadRequest, "code must be at least 3 characters")
		return
	}
	if req.Balance < 0 {
		respondError(w, http.StatusBadRequest, "balance must not be negative")
		return
	}
	if req.MaxUsage != nil && *req.MaxUsage <= 0 {
		respondError(w, http.StatusBadRequest, "maxUsage must be greater than 0")
		return
	}
	if req.MinAmount != nil && *req.MinAmount <= 0 {
		respondError(w, http.StatusBadRequest, "minAmount must be greater than 0")
		return
	}

	d := &discount.Discount{
		Code:           req.Code,
		Balance:        decimal.NewFromFloat(req.Balance).Round(2),
		IsFullDiscount: req.IsFullDiscount,
		Description:    req.Description,
		MaxUsage:       req.MaxUsage,
	}
	if req.MinAmount != nil {
		m := decimal.NewFromFloat(*req.MinAmount).Round(2)
		d.MinAmount = &m
	}

	if err := h.discounts.Create(r.Context(), d); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, viewDiscount(d))
}

// ListDiscounts handles GET /discounts.
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.discounts.List(r.Context(), parseLimit(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]discountView, len(discounts))
	for i := range discounts {
		views[i] = viewDiscount(&discounts[i])
	}
	respond(w, http.StatusOK, views)
}

type validateDiscountRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

// quoteView is the discount breakdown attached to previews and settlements.
type quoteView struct {
	Discount       *discountView `json:"discount,omitempty"`
	OriginalAmount float64       `json:"originalAmount"`
	DiscountAmount float64       `json:"discountAmount"`
	FinalAmount    float64       `json:"finalAmount"`
	Savings        float64       `json:"savings"`
}

// ValidateDiscount handles POST /discounts/validate: a pure preview that
// never touches the usage counter.
func (h *Handler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}

	amount := decimal.NewFromFloat(req.Amount).Round(2)
	d, err := h.validator.Validate(r.Context(), req.Code, amount)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	q := discount.Compute(d, amount)
	dv := viewDiscount(d)
	respond(w, http.StatusOK, quoteView{
		Discount:       &dv,
		OriginalAmount: q.OriginalAmount.InexactFloat64(),
		DiscountAmount: q.DiscountAmount.InexactFloat64(),
		FinalAmount:    q.FinalAmount.InexactFloat64(),
		Savings:        q.Savings.InexactFloat64(),
	})
}
