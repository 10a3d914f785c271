// ABOUTME: Tests for database schema creation
// ABOUTME: Uses in-memory SQLite for fast isolated tests
package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory db: %v", err)
	}
	database.SetMaxOpenConns(1)
	if err := InitSchema(database); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestInitSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"sync_state", "sync_runs", "sync_log"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	for _, idx := range []string{"idx_sync_runs_list", "idx_sync_log_run"} {
		var indexName string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&indexName)
		if err != nil {
			t.Errorf("Index %s not found: %v", idx, err)
		}
	}
}

func TestInitSchemaRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Exec(`INSERT INTO sync_state (list_name, status) VALUES ('members', 'bogus')`)
	if err == nil {
		t.Error("expected CHECK constraint to reject unknown status")
	}
}
