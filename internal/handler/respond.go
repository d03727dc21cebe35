package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/avolkov/paydesk/internal/domain/discount"
	"github.com/avolkov/paydesk/internal/domain/order"
	"github.com/avolkov/paydesk/internal/domain/payment"
)

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// respondDomainError maps domain errors to status codes. Anything unmapped is
// logged and surfaced as a bare 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *discount.RejectionError
	switch {
	case errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, payment.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, discount.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, discount.ErrCodeExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, payment.ErrOrderNotPending):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, payment.ErrNotOwner):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, payment.ErrDeclined):
		respondError(w, http.StatusPaymentRequired, err.Error())
	case errors.As(err, &rej):
		if rej.Reason == discount.ReasonNotFound {
			respondError(w, http.StatusNotFound, rej.Message)
		} else {
			respondError(w, http.StatusUnprocessableEntity, rej.Message)
		}
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON parses the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// parseLimit reads the ?limit query parameter, bounded to (0, maxListLimit].
func parseLimit(r *http.Request) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
