// ABOUTME: Database operations for sync_state and sync_runs tables
// ABOUTME: Tracks contact directory sync status and per-attempt history
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/torque/models"
)

const syncStateColumns = `service, last_sync_time, status, error_message, contact_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSyncState(row rowScanner) (*models.SyncState, error) {
	var state models.SyncState
	var lastSyncTime sql.NullTime
	var status sql.NullString
	var errorMessage sql.NullString

	err := row.Scan(
		&state.Service,
		&lastSyncTime,
		&status,
		&errorMessage,
		&state.ContactCount,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	state.Status = status.String
	state.ErrorMessage = errorMessage.String

	return &state, nil
}

// GetSyncState retrieves the sync state for a service.
func GetSyncState(db *sql.DB, service string) (*models.SyncState, error) {
	state, err := scanSyncState(db.QueryRow(`
		SELECT `+syncStateColumns+`
		FROM sync_state
		WHERE service = ?
	`, service))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	return state, nil
}

// UpdateSyncStatus updates the sync status for a service.
func UpdateSyncStatus(db *sql.DB, service, status string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, status, errorMsgVal)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// MarkSyncSuccess records a completed sync and clears any previous error.
func MarkSyncSuccess(db *sql.DB, service string, at time.Time, contactCount int) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (service, last_sync_time, status, contact_count, created_at, updated_at)
		VALUES (?, ?, 'idle', ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = excluded.last_sync_time,
			status = 'idle',
			error_message = NULL,
			contact_count = excluded.contact_count,
			updated_at = CURRENT_TIMESTAMP
	`, service, at, contactCount)

	if err != nil {
		return fmt.Errorf("failed to mark sync success: %w", err)
	}

	return nil
}

// RecordSyncRun inserts a run or updates it when the ID already exists.
func RecordSyncRun(db *sql.DB, run models.SyncRun) error {
	var finishedAt sql.NullTime
	if run.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_runs (id, service, endpoint, started_at, finished_at, status, contact_count, error_kind, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			status = excluded.status,
			contact_count = excluded.contact_count,
			error_kind = excluded.error_kind,
			error_message = excluded.error_message
	`, run.ID, run.Service, run.Endpoint, run.StartedAt, finishedAt, run.Status, run.ContactCount,
		nullString(run.ErrorKind), nullString(run.ErrorMessage))

	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}

	return nil
}

// ListSyncRuns returns the most recent runs for a service, newest first. An
// empty service lists every service.
func ListSyncRuns(db *sql.DB, service string, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT id, service, endpoint, started_at, finished_at, status, contact_count, error_kind, error_message
		FROM sync_runs
		WHERE ? = '' OR service = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, service, service, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []models.SyncRun
	for rows.Next() {
		var run models.SyncRun
		var finishedAt sql.NullTime
		var errorKind, errorMessage sql.NullString

		if err := rows.Scan(&run.ID, &run.Service, &run.Endpoint, &run.StartedAt, &finishedAt,
			&run.Status, &run.ContactCount, &errorKind, &errorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}

		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		run.ErrorKind = errorKind.String
		run.ErrorMessage = errorMessage.String

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync runs: %w", err)
	}

	return runs, nil
}

// SyncRecorder stores sync session attempts in sync_runs and sync_state.
type SyncRecorder struct {
	DB *sql.DB
}

func (r SyncRecorder) SyncStarted(run models.SyncRun) error {
	if err := UpdateSyncStatus(r.DB, run.Service, models.SyncStatusSyncing, nil); err != nil {
		return err
	}
	return RecordSyncRun(r.DB, run)
}

func (r SyncRecorder) SyncFinished(run models.SyncRun) error {
	if err := RecordSyncRun(r.DB, run); err != nil {
		return err
	}

	if run.Status == models.SyncStatusError {
		msg := run.ErrorMessage
		return UpdateSyncStatus(r.DB, run.Service, models.SyncStatusError, &msg)
	}

	finished := run.StartedAt
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}
	return MarkSyncSuccess(r.DB, run.Service, finished, run.ContactCount)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
