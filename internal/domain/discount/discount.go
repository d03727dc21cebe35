package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status enumerates the lifecycle states of a discount code.
type Status string

const (
	// StatusActive marks a discount as redeemable.
	StatusActive Status = "active"
	// StatusUsed marks a discount as fully consumed.
	StatusUsed Status = "used"
	// StatusExpired marks a discount as past its validity.
	StatusExpired Status = "expired"
	// StatusDisabled marks a discount as administratively turned off.
	StatusDisabled Status = "disabled"
)

// MinCodeLength is the minimum accepted length for a discount code.
const MinCodeLength = 3

var (
	// ErrNotFound is returned when no discount exists for a code or id.
	ErrNotFound = errors.New("discount not found")
	// ErrCodeExists is returned when creating a discount whose code is taken.
	ErrCodeExists = errors.New("discount code already exists")
)

// Discount is a redeemable code worth a bounded monetary reduction.
type Discount struct {
	ID             string
	Code           string
	Balance        decimal.Decimal
	IsFullDiscount bool
	Status         Status
	UsageCount     int
	MaxUsage       *int
	MinAmount      *decimal.Decimal
	Description    string
	CreatedAt      time.Time
}

// RejectionReason classifies why a discount code could not be applied.
type RejectionReason string

const (
	// ReasonNotFound: the code does not exist.
	ReasonNotFound RejectionReason = "not_found"
	// ReasonInactive: the discount status is not active.
	ReasonInactive RejectionReason = "inactive"
	// ReasonUsageExceeded: the usage cap has been reached.
	ReasonUsageExceeded RejectionReason = "usage_exceeded"
	// ReasonBelowMinimum: the order amount is below the qualifying minimum.
	ReasonBelowMinimum RejectionReason = "below_minimum"
)

// RejectionError reports that a discount code was rejected, carrying both a
// machine-readable reason and a human-readable message.
type RejectionError struct {
	Reason  RejectionReason
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Reject builds a RejectionError for the given reason.
func Reject(reason RejectionReason, format string, args ...any) *RejectionError {
	return &RejectionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Quote is the discount breakdown for a given order amount.
type Quote struct {
	OriginalAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	Savings        decimal.Decimal
}

// Compute calculates the discount breakdown: the discount amount is the
// discount balance clamped to the order amount, and the final amount never
// goes negative. The IsFullDiscount flag has no computational effect; it is
// carried through for display only.
func Compute(d *Discount, orderAmount decimal.Decimal) Quote {
	amount := decimal.Min(d.Balance, orderAmount)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	amount = amount.Round(2)

	final := orderAmount.Sub(amount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Quote{
		OriginalAmount: orderAmount,
		DiscountAmount: amount,
		FinalAmount:    final.Round(2),
		Savings:        amount,
	}
}

// Repository provides persistence for discounts.
//
// IncrementUsage must be atomic: it bumps usage_count by one only while the
// discount is active and under its usage cap, reporting whether a row matched.
type Repository interface {
	Create(ctx context.Context, d *Discount) error
	GetByID(ctx context.Context, id string) (*Discount, error)
	FindByCode(ctx context.Context, code string) (*Discount, error)
	List(ctx context.Context, limit int) ([]Discount, error)
	IncrementUsage(ctx context.Context, id string) (bool, error)
}
