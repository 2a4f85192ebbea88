package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQuery is the threshold above which statements log at WARN.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB, logging slow statements and recording every
// statement into a perf collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	slow      time.Duration
}

// NewTimedDB wraps db. A zero slow threshold uses DefaultSlowQuery; collector may be nil.
// PRE: db is a valid database connection
// POST: returns a TimedDB usable anywhere an SQLDB is accepted
func NewTimedDB(db *sql.DB, collector *perf.Collector, slow time.Duration) *TimedDB {
	if slow <= 0 {
		slow = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, slow: slow}
}

// RawDB returns the underlying *sql.DB for schema setup and pool tuning.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// observe logs and records one statement.
func (t *TimedDB) observe(op, query string, start time.Time, err error) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0
	label := op + " " + verb(query)

	if elapsed >= t.slow {
		slog.Warn("slow_query", "op", label, "duration_ms", ms)
	} else {
		slog.Debug("query", "op", label, "duration_ms", ms)
	}
	t.collector.Record(perf.Entry{
		Kind:       perf.KindQuery,
		Label:      label,
		DurationMs: ms,
		Failed:     err != nil,
		Timestamp:  start,
	})
}

// verb returns the leading SQL keyword ("SELECT", "INSERT", ...).
func verb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// ExecContext runs a statement with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.db.ExecContext(ctx, query, args...)
	t.observe("exec", query, start, err)
	return res, err
}

// QueryContext runs a query with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe("query", query, start, err)
	return rows, err
}

// QueryRowContext runs a single-row query with timing. Scan errors surface
// later and are not attributed here.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe("query_row", query, start, nil)
	return row
}

// BeginTx starts a transaction with timing.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("begin", "", start, err)
	return tx, err
}

// Close closes the underlying database.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping verifies the database connection.
func (t *TimedDB) Ping() error {
	return t.db.Ping()
}
