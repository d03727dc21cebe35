// Package payment implements payment settlement: the record model, the
// simulated gateway, and the orchestration that finalizes a pending order
// against a payment method and an optional discount code.
package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested payment record does not exist.
var ErrNotFound = errors.New("payment record not found")

// Record is the append-only log entry written for every settled payment.
// For any record, PaidAmount + DiscountAmount equals Amount.
type Record struct {
	ID               string
	PaymentID        string
	OrderID          string
	Amount           decimal.Decimal
	PaidAmount       decimal.Decimal
	DiscountAmount   decimal.Decimal
	PaymentMethod    string
	UserID           string
	DiscountID       string
	DiscountCode     string
	OrderDescription string
	PaidAt           time.Time
}

// Repository defines persistence operations for payment records. Records are
// never mutated or deleted; settlement inserts go through Settler instead so
// they share a transaction with the order update.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	ListByOrder(ctx context.Context, orderID string) ([]Record, error)
}

// Settler commits a settlement atomically: the conditional order update, the
// optional discount usage increment, and the payment record insert run in one
// transaction. Implementations fill in rec.ID and rec.PaidAt.
//
// The order update is conditional on the row still being pending; a lost race
// surfaces as ErrOrderNotPending and nothing is written. The discount
// increment is likewise guarded by the usage cap.
type Settler interface {
	Commit(ctx context.Context, rec *Record) error
}
