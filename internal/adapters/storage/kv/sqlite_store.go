package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/adapters/storage"
)

// SQLiteStore implements Store on the kv_record table.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new kv store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the value stored under key.
// PRE: key is a valid <namespace>/<name> key
// POST: Returns the value and true, or nil and false when absent
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if _, _, err := SplitKey(key); err != nil {
		return nil, false, err
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_record WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get kv record %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put upserts the value stored under key.
// PRE: key is a valid <namespace>/<name> key
// POST: The record holds value
// INVARIANT: No other keys are modified
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	if _, _, err := SplitKey(key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_record (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put kv record %s: %w", key, err)
	}
	return nil
}

// Namespaces lists namespaces that have at least one record, sorted.
func (s *SQLiteStore) Namespaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT substr(key, 1, instr(key, '/') - 1) AS ns
		FROM kv_record
		ORDER BY ns
	`)
	if err != nil {
		return nil, fmt.Errorf("list kv namespaces: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}
