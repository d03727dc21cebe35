// Package order defines the order model and its store contract.
//
// An order is created pending with balance equal to its amount. It reaches a
// terminal state exactly once: paid via settlement, or cancelled via an
// administrative update. While pending, the amount due equals Amount; Balance
// becomes meaningful only after settlement.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status enumerates the lifecycle states of an order.
type Status string

const (
	// StatusPending marks an order awaiting settlement.
	StatusPending Status = "pending"
	// StatusPaid marks a settled order. Terminal.
	StatusPaid Status = "paid"
	// StatusCancelled marks an administratively cancelled order. Terminal.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known order status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order represents a customer order awaiting or past settlement.
type Order struct {
	ID            string
	Amount        decimal.Decimal
	Balance       decimal.Decimal
	Status        Status
	PaymentMethod string
	Description   string
	UserID        string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// Update carries a partial order mutation. Nil fields are left untouched;
// there is no way to unset a field.
type Update struct {
	Amount        *decimal.Decimal
	Balance       *decimal.Decimal
	Status        *Status
	PaymentMethod *string
	Description   *string
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, limit int) ([]Order, error)
	Update(ctx context.Context, id string, upd Update) (*Order, error)
}
