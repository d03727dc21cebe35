// Command seed-db loads demo discounts and orders into the database so a
// fresh deployment has something to settle against.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/avolkov/paydesk/internal/domain/discount"
	"github.com/avolkov/paydesk/internal/domain/order"
	"github.com/avolkov/paydesk/internal/repository"
)

type seedDiscount struct {
	code           string
	balance        string
	isFullDiscount bool
	maxUsage       int
	minAmount      string
	description    string
}

var demoDiscounts = []seedDiscount{
	{code: "SAVE20", balance: "20", description: "Flat $20 off"},
	{code: "WELCOME10", balance: "10", minAmount: "50", description: "New customer: $10 off orders of $50+"},
	{code: "VIP50", balance: "50", maxUsage: 1, description: "One-time $50 credit"},
	{code: "ONTHEHOUSE", balance: "10000", isFullDiscount: true, maxUsage: 5, description: "Covers the whole order"},
}

type seedOrder struct {
	amount      string
	userID      string
	description string
}

var demoOrders = []seedOrder{
	{amount: "120.00", userID: "demo-user", description: "Annual subscription"},
	{amount: "49.99", userID: "demo-user", description: "Starter pack"},
	{amount: "15.50", userID: "demo-user-2", description: "Single seat add-on"},
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedDiscounts(ctx, repository.NewDiscountRepository(pool)); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	if err := seedOrders(ctx, repository.NewOrderRepository(pool)); err != nil {
		return errors.Wrap(err, "seed orders")
	}

	return nil
}

func seedDiscounts(ctx context.Context, repo *repository.DiscountRepository) error {
	for _, s := range demoDiscounts {
		balance, err := decimal.NewFromString(s.balance)
		if err != nil {
			return errors.Wrapf(err, "parse balance for %s", s.code)
		}

		d := &discount.Discount{
			Code:           s.code,
			Balance:        balance,
			IsFullDiscount: s.isFullDiscount,
			Description:    s.description,
		}
		if s.maxUsage > 0 {
			maxUsage := s.maxUsage
			d.MaxUsage = &maxUsage
		}
		if s.minAmount != "" {
			minAmount, err := decimal.NewFromString(s.minAmount)
			if err != nil {
				return errors.Wrapf(err, "parse min amount for %s", s.code)
			}
			d.MinAmount = &minAmount
		}

		switch err := repo.Create(ctx, d); {
		case errors.Is(err, discount.ErrCodeExists):
			slog.Info("discount already present", slog.String("code", s.code))
		case err != nil:
			return errors.Wrapf(err, "create discount %s", s.code)
		default:
			slog.Info("discount created", slog.String("code", s.code))
		}
	}
	return nil
}

func seedOrders(ctx context.Context, repo *repository.OrderRepository) error {
	for _, s := range demoOrders {
		amount, err := decimal.NewFromString(s.amount)
		if err != nil {
			return errors.Wrap(err, "parse order amount")
		}

		o := &order.Order{
			Amount:      amount,
			UserID:      s.userID,
			Description: s.description,
		}
		if err := repo.Create(ctx, o); err != nil {
			return errors.Wrapf(err, "create order for %s", s.userID)
		}
		slog.Info("order created", slog.String("id", o.ID), slog.String("user", s.userID))
	}
	return nil
}
