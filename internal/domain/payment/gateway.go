package payment

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrDeclined is returned when the payment gateway declines a charge.
var ErrDeclined = errors.New("payment declined by gateway")

// ChargeRequest describes a single charge attempt against the gateway.
type ChargeRequest struct {
	PaymentID string
	Amount    decimal.Decimal
	Method    string
}

// Gateway is the external payment processor contract.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) error
}

// Simulator is a stand-in payment gateway. Each charge waits a fixed latency
// and then succeeds with the configured probability. Zero-amount charges
// (fully discounted orders) always succeed.
type Simulator struct {
	latency     time.Duration
	successRate float64
	roll        func() float64
}

// NewSimulator creates a Simulator with the given latency and success rate
// in [0, 1].
func NewSimulator(latency time.Duration, successRate float64) *Simulator {
	return &Simulator{
		latency:     latency,
		successRate: successRate,
		roll:        rand.Float64,
	}
}

// Charge simulates a gateway round trip. It honors context cancellation
// during the latency wait.
func (s *Simulator) Charge(ctx context.Context, req ChargeRequest) error {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if req.Amount.IsZero() {
		return nil
	}

	if s.roll() >= s.successRate {
		return ErrDeclined
	}
	return nil
}
