package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_Charge(t *testing.T) {
	req := ChargeRequest{PaymentID: "p1", Amount: decimal.NewFromInt(42), Method: "card"}

	t.Run("roll under the success rate succeeds", func(t *testing.T) {
		s := NewSimulator(0, 0.95)
		s.roll = func() float64 { return 0.5 }

		require.NoError(t, s.Charge(context.Background(), req))
	})

	t.Run("roll at or above the success rate declines", func(t *testing.T) {
		s := NewSimulator(0, 0.95)
		s.roll = func() float64 { return 0.95 }

		require.ErrorIs(t, s.Charge(context.Background(), req), ErrDeclined)
	})

	t.Run("zero amount always succeeds", func(t *testing.T) {
		s := NewSimulator(0, 0)
		s.roll = func() float64 { return 0.99 }

		free := ChargeRequest{PaymentID: "p1", Amount: decimal.Zero, Method: "card"}
		require.NoError(t, s.Charge(context.Background(), free))
	})

	t.Run("cancelled context interrupts the latency wait", func(t *testing.T) {
		s := NewSimulator(10*time.Second, 1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := s.Charge(ctx, req)

		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}
