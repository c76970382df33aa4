// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tomtom215/tasklane/internal/config"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/metrics"
)

// DB wraps the PostgreSQL connection pool and provides the read queries the
// cache layer needs. It never writes domain rows.
type DB struct {
	conn         *sql.DB
	queryTimeout time.Duration
}

// New opens a connection pool through the pgx stdlib driver and verifies it.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Dur("query_timeout", cfg.QueryTimeout).
		Msg("Connected to PostgreSQL")

	return &DB{conn: conn, queryTimeout: cfg.QueryTimeout}, nil
}

// NewWithConn wraps an existing pool. Used by tests and by callers that
// manage the pool themselves.
func NewWithConn(conn *sql.DB, queryTimeout time.Duration) *DB {
	return &DB{conn: conn, queryTimeout: queryTimeout}
}

// Conn returns the underlying pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// queryContext bounds ctx by the configured query timeout.
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// observe records the query metric and wraps a failure as a StoreError.
// ErrNotFound passes through unwrapped.
func (db *DB) observe(ctx context.Context, op string, start time.Time, err error) error {
	if errors.Is(err, ErrNotFound) {
		metrics.RecordDBQuery(op, time.Since(start), nil)
		return err
	}
	metrics.RecordDBQuery(op, time.Since(start), err)
	if err == nil {
		return nil
	}
	logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Msg("Query failed")
	return &StoreError{Op: op, Err: err}
}
