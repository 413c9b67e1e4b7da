// Package repository is the Postgres persistence for tenants, users,
// customers and identity events.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "swiftslot"

// Repository provides database access methods.
type Repository struct {
	pool *pgxpool.Pool
}

// New connects a pool to databaseURL and verifies it. Pool sizing set in the
// URL (pool_max_conns and friends) wins over the defaults here.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if !strings.Contains(databaseURL, "pool_max_conns") {
		config.MaxConns = 10
	}
	if !strings.Contains(databaseURL, "pool_min_conns") {
		config.MinConns = 2
	}
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second
	if _, ok := config.ConnConfig.RuntimeParams["application_name"]; !ok {
		config.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// NewFromPool wraps an existing pool. Used by tests and tooling that manage
// the pool lifecycle themselves.
func NewFromPool(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool for integration tests.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// Migrate applies pending embedded schema migrations.
func (r *Repository) Migrate(ctx context.Context) error {
	return Migrate(ctx, r.pool)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
