// Package jobstore persists jobs and their append-only history in SQLite.
//
// One worker owns all writes for a given job while status queries read
// concurrently; SQLite's WAL mode plus a busy timeout covers that pattern
// without further coordination.
package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"slidecast/internal/services"
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Create inserts a new queued job for the supplied request.
func (s *Store) Create(ctx context.Context, req Request) (*Job, error) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, request_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		id, StatusQueued, string(requestJSON), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	if err := s.appendHistory(ctx, id, "queued", 0, "job accepted"); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID loads one job.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, current_step, progress, message, error_message,
                cancel_requested, request_json, result_json, created_at, updated_at
         FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "jobstore", "get", fmt.Sprintf("job %s", id), nil)
	}
	return job, err
}

// List returns jobs filtered by status, newest first. A nil filter returns
// every job.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT id, status, current_step, progress, message, error_message,
                     cancel_requested, request_json, result_json, created_at, updated_at
              FROM jobs`
	var args []any
	if len(statuses) > 0 {
		query += " WHERE status IN (?" + repeatPlaceholder(len(statuses)-1) + ")"
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// NextQueued claims the oldest queued job and marks it running. Returns nil
// when the queue is empty.
func (s *Store) NextQueued(ctx context.Context) (*Job, error) {
	for {
		var id string
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM jobs WHERE status = ? ORDER BY created_at ASC LIMIT 1`,
			StatusQueued,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("select queued job: %w", err)
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		res, err := s.db.ExecContext(ctx,
			`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			StatusRunning, now, id, StatusQueued,
		)
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim job rows: %w", err)
		}
		if affected == 0 {
			// Another worker claimed it between select and update; try again.
			continue
		}
		return s.GetByID(ctx, id)
	}
}

// SetProgress updates the progress column without touching history. Steps
// use it to interpolate within their weight span; history records step
// transitions only.
func (s *Store) SetProgress(ctx context.Context, id string, progress float64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, now, id,
	)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// UpdateProgress records a step transition: the job row is updated and a
// history entry is appended in one transaction.
func (s *Store) UpdateProgress(ctx context.Context, id, step string, progress float64, message string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin progress tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(ctx,
		`UPDATE jobs SET current_step = ?, progress = ?, message = ?, updated_at = ?
         WHERE id = ?`,
		step, progress, message, now, id,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return services.Wrap(services.ErrNotFound, "jobstore", "progress", fmt.Sprintf("job %s", id), nil)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO job_history (job_id, created_at, step, progress, message)
         VALUES (?, ?, ?, ?, ?)`,
		id, now, step, progress, message,
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return tx.Commit()
}

// MarkCompleted stores the result and moves the job to completed.
func (s *Store) MarkCompleted(ctx context.Context, id string, result *Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, current_step = ?, progress = 100, message = ?,
                result_json = ?, updated_at = ?
         WHERE id = ?`,
		StatusCompleted, "complete", "processing complete", string(resultJSON), now, id,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return s.appendHistory(ctx, id, "complete", 100, "processing complete")
}

// MarkFailed records the failure message and moves the job to failed.
func (s *Store) MarkFailed(ctx context.Context, id, step, errMsg string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, message = ?, updated_at = ?
         WHERE id = ?`,
		StatusFailed, errMsg, "processing failed", now, id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return s.appendHistory(ctx, id, step, -1, "failed: "+errMsg)
}

// MarkCancelled moves the job to its terminal cancelled state.
func (s *Store) MarkCancelled(ctx context.Context, id, step string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, message = ?, updated_at = ? WHERE id = ?`,
		StatusCancelled, "cancelled by request", now, id,
	)
	if err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}
	return s.appendHistory(ctx, id, step, -1, "cancelled by request")
}

// RequestCancel flags a non-terminal job for cancellation. The owning worker
// observes the flag at the next stage boundary. Queued jobs are cancelled
// immediately since no worker owns them yet.
func (s *Store) RequestCancel(ctx context.Context, id string) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return services.Wrap(services.ErrValidation, "jobstore", "cancel",
			fmt.Sprintf("job %s already %s", id, job.Status), nil)
	}
	if job.Status == StatusQueued {
		now := time.Now().UTC().Format(time.RFC3339Nano)
		res, err := s.db.ExecContext(ctx,
			`UPDATE jobs SET status = ?, cancel_requested = 1, message = ?, updated_at = ?
             WHERE id = ? AND status = ?`,
			StatusCancelled, "cancelled before start", now, id, StatusQueued,
		)
		if err != nil {
			return fmt.Errorf("cancel queued job: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			return s.appendHistory(ctx, id, "queued", -1, "cancelled before start")
		}
		// The job started between read and update; fall through to flagging.
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE jobs SET cancel_requested = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("request cancel: %w", err)
	}
	return nil
}

// CancelRequested reports whether cancellation was flagged for the job.
func (s *Store) CancelRequested(ctx context.Context, id string) (bool, error) {
	var flag int
	err := s.db.QueryRowContext(ctx,
		`SELECT cancel_requested FROM jobs WHERE id = ?`, id,
	).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, services.Wrap(services.ErrNotFound, "jobstore", "cancel-check", fmt.Sprintf("job %s", id), nil)
	}
	if err != nil {
		return false, fmt.Errorf("read cancel flag: %w", err)
	}
	return flag != 0, nil
}

// History returns the job's audit trail in insertion order.
func (s *Store) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, step, progress, message FROM job_history
         WHERE job_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var created string
		if err := rows.Scan(&created, &entry.Step, &entry.Progress, &entry.Message); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Delete removes a terminal job and its history.
func (s *Store) Delete(ctx context.Context, id string) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !job.Status.Terminal() {
		return services.Wrap(services.ErrValidation, "jobstore", "delete",
			fmt.Sprintf("job %s is still %s", id, job.Status), nil)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// ResetRunning requeues jobs stuck in running, e.g. after a daemon crash.
func (s *Store) ResetRunning(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, message = 'requeued after restart', updated_at = ?
         WHERE status = ?`,
		StatusQueued, now, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset running jobs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) appendHistory(ctx context.Context, id, step string, progress float64, message string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_history (job_id, created_at, step, progress, message)
         VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano), step, progress, message,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var requestJSON string
	var resultJSON sql.NullString
	var cancelFlag int
	var created, updated string
	err := row.Scan(
		&job.ID, &job.Status, &job.CurrentStep, &job.Progress, &job.Message,
		&job.ErrorMessage, &cancelFlag, &requestJSON, &resultJSON, &created, &updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	job.CancelRequested = cancelFlag != 0
	if err := json.Unmarshal([]byte(requestJSON), &job.Request); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var result Result
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		job.Result = &result
	}
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &job, nil
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
