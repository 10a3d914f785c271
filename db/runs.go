// ABOUTME: Database operations for sync_runs and sync_log tables
// ABOUTME: Records each list sync run and the individual membership changes it made
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Run statuses stored in sync_runs.
const (
	RunRunning = "running"
	RunSuccess = "success"
	RunError   = "error"
)

// Change actions stored in sync_log.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// SyncRun is one reconciliation of a single list.
type SyncRun struct {
	ID           string
	ListName     string
	DryRun       bool
	SourceCount  int
	DestCount    int
	Added        int
	Removed      int
	Status       string
	ErrorMessage *string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// SyncChange is one add or remove computed during a run.
type SyncChange struct {
	ID        string
	RunID     string
	ListName  string
	Action    string
	Email     string
	Applied   bool
	CreatedAt time.Time
}

// StartRun inserts a running sync_runs row. Run ids are ULIDs so they sort by start time.
func StartRun(db *sql.DB, listName string, dryRun bool) (*SyncRun, error) {
	run := &SyncRun{
		ID:        ulid.Make().String(),
		ListName:  listName,
		DryRun:    dryRun,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := db.Exec(`
		INSERT INTO sync_runs (id, list_name, dry_run, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.ListName, run.DryRun, run.Status, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to start sync run: %w", err)
	}

	return run, nil
}

// FinishRun stores the final counts and status of a run.
func FinishRun(db *sql.DB, run *SyncRun) error {
	finished := time.Now().UTC()
	run.FinishedAt = &finished

	var errorMsgVal sql.NullString
	if run.ErrorMessage != nil {
		errorMsgVal = sql.NullString{String: *run.ErrorMessage, Valid: true}
	}

	result, err := db.Exec(`
		UPDATE sync_runs SET
			source_count = ?,
			dest_count = ?,
			added = ?,
			removed = ?,
			status = ?,
			error_message = ?,
			finished_at = ?
		WHERE id = ?
	`, run.SourceCount, run.DestCount, run.Added, run.Removed, run.Status, errorMsgVal, finished, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sync run not found: %s", run.ID)
	}

	return nil
}

// LogChange records a single membership change for a run.
func LogChange(db *sql.DB, runID, listName, action, email string, applied bool) error {
	_, err := db.Exec(`
		INSERT INTO sync_log (id, run_id, list_name, action, email, applied, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, uuid.New().String(), runID, listName, action, email, applied)

	if err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}

	return nil
}

const syncRunColumns = `id, list_name, dry_run, source_count, dest_count, added, removed, status, error_message, started_at, finished_at`

func scanSyncRun(row rowScanner) (*SyncRun, error) {
	var run SyncRun
	var errorMessage sql.NullString
	var finishedAt sql.NullTime

	if err := row.Scan(
		&run.ID,
		&run.ListName,
		&run.DryRun,
		&run.SourceCount,
		&run.DestCount,
		&run.Added,
		&run.Removed,
		&run.Status,
		&errorMessage,
		&run.StartedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}

	if errorMessage.Valid {
		run.ErrorMessage = &errorMessage.String
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}

// GetRun retrieves a single run. It returns nil when no run has that id.
func GetRun(db *sql.DB, runID string) (*SyncRun, error) {
	row := db.QueryRow(`SELECT `+syncRunColumns+` FROM sync_runs WHERE id = ?`, runID)

	run, err := scanSyncRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync run: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first. An empty listName
// returns runs for every list.
func ListRuns(db *sql.DB, listName string, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT `+syncRunColumns+`
		FROM sync_runs
	`
	args := []any{}
	if listName != "" {
		query += " WHERE list_name = ?"
		args = append(args, listName)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync runs: %w", err)
	}

	return runs, nil
}

// GetRunChanges returns the changes recorded for a run in insertion order.
func GetRunChanges(db *sql.DB, runID string) ([]SyncChange, error) {
	rows, err := db.Query(`
		SELECT id, run_id, list_name, action, email, applied, created_at
		FROM sync_log
		WHERE run_id = ?
		ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var changes []SyncChange
	for rows.Next() {
		var change SyncChange
		if err := rows.Scan(
			&change.ID,
			&change.RunID,
			&change.ListName,
			&change.Action,
			&change.Email,
			&change.Applied,
			&change.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync log: %w", err)
	}

	return changes, nil
}
