package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router builds the chi router for the API surface. Probe endpoints and
// middleware are attached by the caller.
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{id}", h.GetOrder)
	r.Put("/orders/{id}", h.UpdateOrder)

	r.Post("/discounts", h.CreateDiscount)
	r.Get("/discounts", h.ListDiscounts)
	r.Post("/discounts/validate", h.ValidateDiscount)

	r.Post("/payment", h.SettlePayment)
	r.Get("/payments", h.ListPayments)

	r.Get("/stats", h.GetStats)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
