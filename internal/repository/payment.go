package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/paydesk/internal/domain/discount"
	"github.com/avolkov/paydesk/internal/domain/payment"
)

// discountUsageRace is the rejection reported when the cap-guarded increment
// inside Commit matches no row: validation saw headroom, but a concurrent
// settlement claimed the last use first.
func discountUsageRace() error {
	return discount.Reject(discount.ReasonUsageExceeded, "discount code usage limit reached")
}

const (
	paymentColumns = `id, payment_id, order_id, amount, paid_amount, discount_amount,
		payment_method, user_id, discount_id, discount_code, order_description, paid_at`

	insertPaymentSQL = `INSERT INTO payment_records
			(id, payment_id, order_id, amount, paid_amount, discount_amount,
			 payment_method, user_id, discount_id, discount_code, order_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING paid_at`

	getPaymentSQL = `SELECT ` + paymentColumns + ` FROM payment_records WHERE id = $1`

	listPaymentsSQL = `SELECT ` + paymentColumns + ` FROM payment_records
		ORDER BY paid_at DESC LIMIT $1`

	listPaymentsByOrderSQL = `SELECT ` + paymentColumns + ` FROM payment_records
		WHERE order_id = $1 ORDER BY paid_at DESC`
)

var _ payment.Repository = (*PaymentRepository)(nil)

// PaymentRepository implements payment.Repository backed by PostgreSQL.
// The payment_records table is append-only; inserts happen exclusively
// through SettlementRepository.Commit.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a PaymentRepository that uses the given pool.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// GetByID looks up a payment record by id.
// Returns payment.ErrNotFound when absent.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Record, error) {
	rows, err := r.pool.Query(ctx, getPaymentSQL, id)
	if err != nil {
		return nil, fmt.Errorf("finding payment record %q: %w", id, err)
	}

	rec, err := pgx.CollectExactlyOneRow(rows, scanPayment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrNotFound
		}
		return nil, fmt.Errorf("finding payment record %q: %w", id, err)
	}
	return &rec, nil
}

// List returns up to limit payment records, newest first.
func (r *PaymentRepository) List(ctx context.Context, limit int) ([]payment.Record, error) {
	rows, err := r.pool.Query(ctx, listPaymentsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing payment records: %w", err)
	}

	recs, err := pgx.CollectRows(rows, scanPayment)
	if err != nil {
		return nil, fmt.Errorf("listing payment records: %w", err)
	}
	return recs, nil
}

// ListByOrder returns all payment records for the given order, newest first.
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]payment.Record, error) {
	rows, err := r.pool.Query(ctx, listPaymentsByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing payment records for order %q: %w", orderID, err)
	}

	recs, err := pgx.CollectRows(rows, scanPayment)
	if err != nil {
		return nil, fmt.Errorf("listing payment records for order %q: %w", orderID, err)
	}
	return recs, nil
}

func scanPayment(row pgx.CollectableRow) (payment.Record, error) {
	var rec payment.Record
	err := row.Scan(
		&rec.ID, &rec.PaymentID, &rec.OrderID, &rec.Amount, &rec.PaidAmount,
		&rec.DiscountAmount, &rec.PaymentMethod, &rec.UserID, &rec.DiscountID,
		&rec.DiscountCode, &rec.OrderDescription, &rec.PaidAt,
	)
	return rec, err
}

var _ payment.Settler = (*SettlementRepository)(nil)

// SettlementRepository commits settlements atomically.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository returns a SettlementRepository using the given pool.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

const settleOrderSQL = `UPDATE orders
	SET status = 'paid', payment_method = $2, balance = $3, updated_at = now()
	WHERE id = $1 AND status = 'pending'`

// Commit runs the settlement write set in one transaction:
//
//  1. Flip the order to paid, conditional on it still being pending. Zero
//     affected rows means a concurrent settlement (or cancellation) won the
//     race; the whole commit is rolled back with payment.ErrOrderNotPending.
//  2. When a discount was applied, bump its usage counter through the same
//     cap-guarded UPDATE used everywhere else. Zero affected rows means the
//     last use was claimed concurrently; roll back with a usage rejection.
//  3. Append the payment record.
//
// On success rec.ID and rec.PaidAt are filled in.
func (r *SettlementRepository) Commit(ctx context.Context, rec *payment.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning settlement tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, settleOrderSQL, rec.OrderID, rec.PaymentMethod, rec.PaidAmount)
	if err != nil {
		return fmt.Errorf("settling order %q: %w", rec.OrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrOrderNotPending
	}

	if rec.DiscountID != "" {
		tag, err = tx.Exec(ctx, incrementUsageSQL, rec.DiscountID)
		if err != nil {
			return fmt.Errorf("incrementing usage for discount %q: %w", rec.DiscountID, err)
		}
		if tag.RowsAffected() == 0 {
			return discountUsageRace()
		}
	}

	rec.ID = uuid.New().String()
	err = tx.QueryRow(ctx, insertPaymentSQL,
		rec.ID, rec.PaymentID, rec.OrderID, rec.Amount, rec.PaidAmount,
		rec.DiscountAmount, rec.PaymentMethod, rec.UserID, rec.DiscountID,
		rec.DiscountCode, rec.OrderDescription,
	).Scan(&rec.PaidAt)
	if err != nil {
		return fmt.Errorf("inserting payment record for order %q: %w", rec.OrderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing settlement for order %q: %w", rec.OrderID, err)
	}
	return nil
}
