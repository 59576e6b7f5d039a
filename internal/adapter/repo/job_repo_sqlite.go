package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"server/internal/domain"
)

// JobRepositorySQLite implements domain.JobRepository on a local SQLite
// file. It is the default backend for development so the service runs
// without a PostgreSQL instance.
type JobRepositorySQLite struct {
	db *sql.DB
}

const sqliteJobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    preset_id TEXT NOT NULL,
    input_image_url TEXT NOT NULL DEFAULT '',
    output_image_url TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    variables_json TEXT NOT NULL DEFAULT '{}',
    compiled_instruction TEXT NOT NULL,
    provider_request_id TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_session_created ON jobs (session_id, created_at DESC);
`

// NewJobRepositorySQLite opens (or creates) the database file and
// bootstraps the schema.
func NewJobRepositorySQLite(path string) (*JobRepositorySQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", domain.ErrPersistence, err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteJobsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ensure jobs schema: %v", domain.ErrPersistence, err)
	}
	return &JobRepositorySQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (r *JobRepositorySQLite) Close() error {
	return r.db.Close()
}

// Create inserts a new job record.
func (r *JobRepositorySQLite) Create(ctx context.Context, job *domain.Job) error {
	varsJSON, err := json.Marshal(job.Variables)
	if err != nil {
		return fmt.Errorf("%w: encode variables: %v", domain.ErrPersistence, err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO jobs (id, session_id, preset_id, input_image_url, output_image_url, status, variables_json, compiled_instruction, provider_request_id, error_message, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		job.ID,
		job.SessionID,
		job.PresetID,
		job.InputImageURL,
		job.OutputImageURL,
		string(job.Status),
		string(varsJSON),
		job.CompiledInstruction,
		job.ProviderRequestID,
		job.ErrorMessage,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: insert job: %v", domain.ErrPersistence, err)
	}
	return nil
}

// UpdateStatus advances a job and optionally records output, provider id or
// error text. Nil update fields keep the stored column.
func (r *JobRepositorySQLite) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, update domain.JobUpdate) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE jobs
SET status = ?,
    updated_at = ?,
    output_image_url = COALESCE(?, output_image_url),
    provider_request_id = COALESCE(?, provider_request_id),
    error_message = COALESCE(?, error_message)
WHERE id = ?;`,
		string(status),
		time.Now().UTC(),
		update.OutputImageURL,
		update.ProviderRequestID,
		update.ErrorMessage,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("%w: update job: %v", domain.ErrPersistence, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update job: %v", domain.ErrPersistence, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const sqliteJobColumns = `id, session_id, preset_id, input_image_url, output_image_url, status, variables_json, compiled_instruction, provider_request_id, error_message, created_at, updated_at`

// GetByID fetches a job owned by the given session.
func (r *JobRepositorySQLite) GetByID(ctx context.Context, jobID, sessionID string) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteJobColumns+` FROM jobs WHERE id = ? AND session_id = ?;`,
		jobID, sessionID)
	job, err := scanSQLiteJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get job: %v", domain.ErrPersistence, err)
	}
	return job, nil
}

// ListBySession returns the session's jobs, newest first.
func (r *JobRepositorySQLite) ListBySession(ctx context.Context, sessionID string) ([]domain.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteJobColumns+` FROM jobs WHERE session_id = ? ORDER BY created_at DESC;`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan job: %v", domain.ErrPersistence, err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", domain.ErrPersistence, err)
	}
	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	var status, varsJSON string
	if err := row.Scan(
		&job.ID,
		&job.SessionID,
		&job.PresetID,
		&job.InputImageURL,
		&job.OutputImageURL,
		&status,
		&varsJSON,
		&job.CompiledInstruction,
		&job.ProviderRequestID,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	if varsJSON != "" {
		if err := json.Unmarshal([]byte(varsJSON), &job.Variables); err != nil {
			return nil, err
		}
	}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositorySQLite)(nil)
