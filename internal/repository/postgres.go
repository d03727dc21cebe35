// Package repository implements the Postgres-backed stores using raw pgx.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/paydesk/db"
)

// Pool sizing is deliberately small: the managed Postgres tier this runs
// against caps connections aggressively.
const maxPoolConns = 8

// pingBackoff is the retry schedule applied while waiting for the database
// to accept connections at startup.
var pingBackoff = []time.Duration{time.Second, 3 * time.Second, 5 * time.Second}

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns. The initial ping is retried with backoff so a slow or
// briefly unreachable managed database does not fail startup.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.MaxConns = maxPoolConns
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pingWithBackoff(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	return pool, nil
}

func pingWithBackoff(ctx context.Context, pool *pgxpool.Pool) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if attempt >= len(pingBackoff) {
			return err
		}

		timer := time.NewTimer(pingBackoff[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunMigrations executes the embedded DDL schema against the pool. The schema
// uses IF NOT EXISTS throughout, so the call is idempotent and safe to run on
// every startup.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, db.Schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
