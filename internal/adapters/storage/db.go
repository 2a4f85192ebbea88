package storage

import (
	"database/sql"
	"fmt"
)

// DSN builds the modernc sqlite connection string with WAL, busy timeout and
// foreign keys enabled.
func DSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// schemaVersion is bumped whenever schema below changes shape.
const schemaVersion = 1

// InitDB creates the storefront schema.
// PRE: db is a valid database connection
// POST: all tables exist and schema_version holds the current version
func InitDB(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS product (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price_cents INTEGER NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'NZD',
		category TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		attributes TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_product_category ON product(category);

	CREATE TABLE IF NOT EXISTS inquiry (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		visitor_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS kv_record (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if n == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the recorded schema version.
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	return v, err
}

// LatestSchemaVersion returns the version InitDB creates.
func LatestSchemaVersion() int {
	return schemaVersion
}
