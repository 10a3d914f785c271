// ABOUTME: Database schema definitions
// ABOUTME: Creates sync_state, sync_runs, and sync_log tables for list sync history
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_state (
	list_name TEXT PRIMARY KEY,
	status TEXT NOT NULL CHECK(status IN ('idle', 'syncing', 'error')),
	last_sync_time DATETIME,
	last_run_id TEXT,
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id TEXT PRIMARY KEY,
	list_name TEXT NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0,
	source_count INTEGER NOT NULL DEFAULT 0,
	dest_count INTEGER NOT NULL DEFAULT 0,
	added INTEGER NOT NULL DEFAULT 0,
	removed INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('running', 'success', 'error')),
	error_message TEXT,
	started_at DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_list ON sync_runs(list_name, started_at);

CREATE TABLE IF NOT EXISTS sync_log (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	list_name TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('add', 'remove')),
	email TEXT NOT NULL,
	applied INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (run_id) REFERENCES sync_runs(id)
);

CREATE INDEX IF NOT EXISTS idx_sync_log_run ON sync_log(run_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
