package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Stats holds the dashboard aggregates.
type Stats struct {
	TotalOrders    int64
	TotalRevenue   decimal.Decimal
	TotalDiscounts int64
	TotalPayments  int64
}

const statsSQL = `SELECT
	(SELECT count(*) FROM orders),
	(SELECT COALESCE(sum(paid_amount), 0) FROM payment_records),
	(SELECT count(*) FROM discounts),
	(SELECT count(*) FROM payment_records)`

// StatsRepository computes dashboard aggregates backed by PostgreSQL.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns a StatsRepository that uses the given pool.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Stats returns order, revenue, discount, and payment totals in one query.
// Revenue is the sum of paid amounts across all settled payments.
func (r *StatsRepository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, statsSQL).Scan(
		&s.TotalOrders, &s.TotalRevenue, &s.TotalDiscounts, &s.TotalPayments,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("computing stats: %w", err)
	}
	return s, nil
}
