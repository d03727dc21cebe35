package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/paydesk/internal/domain/order"
)

const (
	orderColumns = `id, amount, balance, status, payment_method, description, user_id, created_at, updated_at`

	createOrderSQL = `INSERT INTO orders (id, amount, balance, status, description, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC LIMIT $1`

	// Partial update: NULL parameters leave the column untouched.
	updateOrderSQL = `UPDATE orders SET
			amount = COALESCE($2, amount),
			balance = COALESCE($3, balance),
			status = COALESCE($4, status),
			payment_method = COALESCE($5, payment_method),
			description = COALESCE($6, description),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order, assigning its id and creation timestamp.
// New orders start pending with balance equal to the amount.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	o.ID = uuid.New().String()
	o.Status = order.StatusPending
	o.Balance = o.Amount

	err := r.pool.QueryRow(ctx, createOrderSQL,
		o.ID, o.Amount, o.Balance, o.Status, o.Description, o.UserID,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID looks up an order by id. Returns order.ErrNotFound when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("finding order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("finding order %q: %w", id, err)
	}
	return &o, nil
}

// List returns up to limit orders, newest first.
func (r *OrderRepository) List(ctx context.Context, limit int) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// Update applies a partial mutation; nil fields are left untouched.
// Returns order.ErrNotFound when the order does not exist.
func (r *OrderRepository) Update(ctx context.Context, id string, upd order.Update) (*order.Order, error) {
	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}

	rows, err := r.pool.Query(ctx, updateOrderSQL,
		id, upd.Amount, upd.Balance, status, upd.PaymentMethod, upd.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		status    string
		updatedAt *time.Time
	)
	err := row.Scan(
		&o.ID, &o.Amount, &o.Balance, &status, &o.PaymentMethod,
		&o.Description, &o.UserID, &o.CreatedAt, &updatedAt,
	)
	o.Status = order.Status(status)
	o.UpdatedAt = updatedAt
	return o, err
}
