// ABOUTME: Database operations for the sync_state table
// ABOUTME: Tracks per-list sync status, last successful run, and last error
package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Sync statuses stored in sync_state.
const (
	StatusIdle    = "idle"
	StatusSyncing = "syncing"
	StatusError   = "error"
)

// SyncState represents the sync state for a list.
type SyncState struct {
	ListName     string
	Status       string
	LastSyncTime *time.Time
	LastRunID    *string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const syncStateColumns = `list_name, status, last_sync_time, last_run_id, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncState(row rowScanner) (*SyncState, error) {
	var state SyncState
	var lastSyncTime sql.NullTime
	var lastRunID sql.NullString
	var errorMessage sql.NullString

	if err := row.Scan(
		&state.ListName,
		&state.Status,
		&lastSyncTime,
		&lastRunID,
		&errorMessage,
		&state.CreatedAt,
		&state.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	if lastRunID.Valid {
		state.LastRunID = &lastRunID.String
	}
	if errorMessage.Valid {
		state.ErrorMessage = &errorMessage.String
	}

	return &state, nil
}

// GetSyncState retrieves the sync state for a list. It returns nil when the list
// has never been synced.
func GetSyncState(db *sql.DB, listName string) (*SyncState, error) {
	row := db.QueryRow(`SELECT `+syncStateColumns+` FROM sync_state WHERE list_name = ?`, listName)

	state, err := scanSyncState(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	return state, nil
}

// UpdateSyncStatus updates the sync status for a list.
func UpdateSyncStatus(db *sql.DB, listName, status string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (list_name, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(list_name) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, listName, status, errorMsgVal)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// MarkListSynced records a successful run and returns the list to idle.
func MarkListSynced(db *sql.DB, listName, runID string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (list_name, status, last_sync_time, last_run_id, created_at, updated_at)
		VALUES (?, 'idle', CURRENT_TIMESTAMP, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(list_name) DO UPDATE SET
			status = 'idle',
			last_sync_time = CURRENT_TIMESTAMP,
			last_run_id = excluded.last_run_id,
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, listName, sql.NullString{String: runID, Valid: runID != ""})

	if err != nil {
		return fmt.Errorf("failed to mark list synced: %w", err)
	}

	return nil
}

// GetAllSyncStates retrieves the sync state for all lists.
func GetAllSyncStates(db *sql.DB) ([]SyncState, error) {
	rows, err := db.Query(`SELECT ` + syncStateColumns + ` FROM sync_state ORDER BY list_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []SyncState
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, *state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync states: %w", err)
	}

	return states, nil
}
