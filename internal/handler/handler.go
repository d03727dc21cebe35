// Package handler exposes the JSON HTTP API. Every response uses the
// {success, data?, error?} envelope; domain errors are mapped to status codes
// in respond.go.
package handler

import (
	"context"

	"github.com/avolkov/paydesk/internal/domain/discount"
	"github.com/avolkov/paydesk/internal/domain/order"
	"github.com/avolkov/paydesk/internal/domain/payment"
	"github.com/avolkov/paydesk/internal/repository"
)

// StatsSource provides the dashboard aggregates.
type StatsSource interface {
	Stats(ctx context.Context) (repository.Stats, error)
}

// Handler holds the dependencies for all HTTP endpoints.
type Handler struct {
	orders     order.Repository
	discounts  discount.Repository
	payments   payment.Repository
	validator  discount.Validator
	settlement *payment.Service
	stats      StatsSource
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders order.Repository,
	discounts discount.Repository,
	payments payment.Repository,
	validator discount.Validator,
	settlement *payment.Service,
	stats StatsSource,
) *Handler {
	return &Handler{
		orders:     orders,
		discounts:  discounts,
		payments:   payments,
		validator:  validator,
		settlement: settlement,
		stats:      stats,
	}
}
