package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolkov/paydesk/internal/domain/discount"
	"github.com/avolkov/paydesk/internal/domain/order"
)

var (
	// ErrOrderNotPending is returned when settling an order that is already
	// paid or cancelled, including when a concurrent settlement won the race.
	ErrOrderNotPending = errors.New("order is not pending")
	// ErrNotOwner is returned when the requesting user does not own the order.
	ErrNotOwner = errors.New("order belongs to another user")
)

// SettleRequest holds the input for settling a pending order.
type SettleRequest struct {
	OrderID      string
	DiscountCode string
	Method       string
	UserID       string
}

// SettleResult holds the outcome of a successful settlement.
type SettleResult struct {
	Order    *order.Order
	Record   *Record
	Discount *discount.Discount
	Quote    discount.Quote
}

// Service orchestrates settlement. It holds no state of its own; each call
// is an independent pipeline over the injected dependencies.
type Service struct {
	orders    order.Repository
	validator discount.Validator
	gateway   Gateway
	settler   Settler
}

// NewService creates a settlement Service.
func NewService(orders order.Repository, validator discount.Validator, gateway Gateway, settler Settler) *Service {
	return &Service{
		orders:    orders,
		validator: validator,
		gateway:   gateway,
		settler:   settler,
	}
}

// Settle finalizes a pending order. Precondition checks run in a fixed order
// with the first failure winning: the order must exist, be pending, and
// belong to the requesting user. A non-blank discount code is then validated
// against the order's original amount. The gateway is charged the final
// amount, and only after it accepts does anything persist: the order flip to
// paid, the discount usage increment, and the payment record are committed in
// one transaction. A declined charge therefore leaves no trace.
func (s *Service) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	o, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending {
		return nil, ErrOrderNotPending
	}
	if o.UserID != req.UserID {
		return nil, ErrNotOwner
	}

	var (
		d     *discount.Discount
		quote = discount.Quote{
			OriginalAmount: o.Amount,
			DiscountAmount: decimal.Zero,
			FinalAmount:    o.Amount,
			Savings:        decimal.Zero,
		}
	)
	if req.DiscountCode != "" {
		d, err = s.validator.Validate(ctx, req.DiscountCode, o.Amount)
		if err != nil {
			return nil, err
		}
		quote = discount.Compute(d, o.Amount)
	}

	paymentID := uuid.New().String()
	if err := s.gateway.Charge(ctx, ChargeRequest{
		PaymentID: paymentID,
		Amount:    quote.FinalAmount,
		Method:    req.Method,
	}); err != nil {
		return nil, err
	}

	rec := &Record{
		PaymentID:        paymentID,
		OrderID:          o.ID,
		Amount:           o.Amount,
		PaidAmount:       quote.FinalAmount,
		DiscountAmount:   quote.DiscountAmount,
		PaymentMethod:    req.Method,
		UserID:           req.UserID,
		OrderDescription: o.Description,
	}
	if d != nil {
		rec.DiscountID = d.ID
		rec.DiscountCode = d.Code
	}

	if err := s.settler.Commit(ctx, rec); err != nil {
		return nil, err
	}

	settled := *o
	settled.Status = order.StatusPaid
	settled.PaymentMethod = req.Method
	settled.Balance = quote.FinalAmount
	settled.UpdatedAt = &rec.PaidAt

	if d != nil {
		d.UsageCount++
	}

	return &SettleResult{
		Order:    &settled,
		Record:   rec,
		Discount: d,
		Quote:    quote,
	}, nil
}
