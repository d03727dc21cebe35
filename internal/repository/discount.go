package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/avolkov/paydesk/internal/domain/discount"
)

const (
	discountColumns = `id, code, balance, is_full_discount, status, usage_count,
		max_usage, min_amount, description, created_at`

	createDiscountSQL = `INSERT INTO discounts
			(id, code, balance, is_full_discount, status, max_usage, min_amount, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	getDiscountSQL = `SELECT ` + discountColumns + ` FROM discounts WHERE id = $1`

	// Codes match case-sensitively: "save20" and "SAVE20" are distinct codes.
	findDiscountByCodeSQL = `SELECT ` + discountColumns + ` FROM discounts WHERE code = $1`

	listDiscountsSQL = `SELECT ` + discountColumns + ` FROM discounts
		ORDER BY created_at DESC LIMIT $1`

	// The guard makes the increment atomic with respect to the usage cap:
	// concurrent redeemers past the cap simply match zero rows.
	incrementUsageSQL = `UPDATE discounts SET usage_count = usage_count + 1
		WHERE id = $1 AND status = 'active'
			AND (max_usage IS NULL OR usage_count < max_usage)`
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// Create persists a new discount, assigning its id and creation timestamp.
// Returns discount.ErrCodeExists when the code is already taken.
func (r *DiscountRepository) Create(ctx context.Context, d *discount.Discount) error {
	d.ID = uuid.New().String()
	d.Status = discount.StatusActive
	d.UsageCount = 0

	err := r.pool.QueryRow(ctx, createDiscountSQL,
		d.ID, d.Code, d.Balance, d.IsFullDiscount, d.Status,
		d.MaxUsage, d.MinAmount, d.Description,
	).Scan(&d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return discount.ErrCodeExists
		}
		return fmt.Errorf("creating discount %q: %w", d.Code, err)
	}
	return nil
}

// GetByID looks up a discount by id. Returns discount.ErrNotFound when absent.
func (r *DiscountRepository) GetByID(ctx context.Context, id string) (*discount.Discount, error) {
	return r.findOne(ctx, getDiscountSQL, id)
}

// FindByCode looks up a discount by its exact code.
// Returns discount.ErrNotFound when absent.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Discount, error) {
	return r.findOne(ctx, findDiscountByCodeSQL, code)
}

func (r *DiscountRepository) findOne(ctx context.Context, sql, arg string) (*discount.Discount, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("finding discount %q: %w", arg, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount %q: %w", arg, err)
	}
	return &d, nil
}

// List returns up to limit discounts, newest first.
func (r *DiscountRepository) List(ctx context.Context, limit int) ([]discount.Discount, error) {
	rows, err := r.pool.Query(ctx, listDiscountsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing discounts: %w", err)
	}

	discounts, err := pgx.CollectRows(rows, scanDiscount)
	if err != nil {
		return nil, fmt.Errorf("listing discounts: %w", err)
	}
	return discounts, nil
}

// IncrementUsage atomically bumps the usage counter while the discount is
// active and under its cap. It reports whether a row matched.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, incrementUsageSQL, id)
	if err != nil {
		return false, fmt.Errorf("incrementing usage for discount %q: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanDiscount(row pgx.CollectableRow) (discount.Discount, error) {
	var (
		d         discount.Discount
		status    string
		maxUsage  *int32
		minAmount *decimal.Decimal
		createdAt time.Time
	)
	err := row.Scan(
		&d.ID, &d.Code, &d.Balance, &d.IsFullDiscount, &status, &d.UsageCount,
		&maxUsage, &minAmount, &d.Description, &createdAt,
	)
	d.Status = discount.Status(status)
	if maxUsage != nil {
		m := int(*maxUsage)
		d.MaxUsage = &m
	}
	d.MinAmount = minAmount
	d.CreatedAt = createdAt
	return d, err
}
