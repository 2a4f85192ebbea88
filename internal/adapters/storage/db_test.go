package storage

import (
	"database/sql"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

// openTestDB creates a single-connection in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TestInitDB_CreatesTables verifies the schema applies cleanly to an empty database.
func TestInitDB_CreatesTables(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	want := []string{"inquiry", "kv_record", "product", "schema_version"}
	if diff := cmp.Diff(want, tableNames(t, db)); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", v, LatestSchemaVersion())
	}
}

// TestInitDB_Idempotent verifies running InitDB twice keeps a single version row.
func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 2; i++ {
		if err := InitDB(db); err != nil {
			t.Fatalf("InitDB run %d: %v", i+1, err)
		}
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("schema_version rows = %d, want 1", n)
	}
}
