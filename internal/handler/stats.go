package handler

import "net/http"

// statsView is the JSON shape of the dashboard aggregates.
type statsView struct {
	TotalOrders    int64   `json:"totalOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalDiscounts int64   `json:"totalDiscounts"`
	TotalPayments  int64   `json:"totalPayments"`
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Stats(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, statsView{
		TotalOrders:    s.TotalOrders,
		TotalRevenue:   s.TotalRevenue.InexactFloat64(),
		TotalDiscounts: s.TotalDiscounts,
		TotalPayments:  s.TotalPayments,
	})
}
