package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

const pgJobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    preset_id TEXT NOT NULL,
    input_image_url TEXT NOT NULL DEFAULT '',
    output_image_url TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    variables_json JSONB NOT NULL DEFAULT '{}'::jsonb,
    compiled_instruction TEXT NOT NULL,
    provider_request_id TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_jobs_session_created ON jobs (session_id, created_at DESC);
`

// EnsureSchema creates the jobs table and index when they do not exist yet.
func (r *JobRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, pgJobsSchema); err != nil {
		return fmt.Errorf("%w: ensure jobs schema: %v", domain.ErrPersistence, err)
	}
	return nil
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	varsJSON, err := json.Marshal(job.Variables)
	if err != nil {
		return fmt.Errorf("%w: encode variables: %v", domain.ErrPersistence, err)
	}
	query := `
INSERT INTO jobs (id, session_id, preset_id, input_image_url, output_image_url, status, variables_json, compiled_instruction, provider_request_id, error_message, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.SessionID,
		job.PresetID,
		job.InputImageURL,
		job.OutputImageURL,
		job.Status,
		varsJSON,
		job.CompiledInstruction,
		job.ProviderRequestID,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert job: %v", domain.ErrPersistence, err)
	}
	return nil
}

// UpdateStatus advances a job and optionally records output, provider id or
// error text. Nil update fields keep the stored column.
func (r *JobRepositoryPG) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, update domain.JobUpdate) error {
	query := `
UPDATE jobs
SET status = $2,
    updated_at = NOW(),
    output_image_url = COALESCE($3, output_image_url),
    provider_request_id = COALESCE($4, provider_request_id),
    error_message = COALESCE($5, error_message)
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, jobID, status,
		update.OutputImageURL, update.ProviderRequestID, update.ErrorMessage)
	if err != nil {
		return fmt.Errorf("%w: update job: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const pgJobColumns = `id, session_id, preset_id, input_image_url, output_image_url, status, variables_json, compiled_instruction, provider_request_id, error_message, created_at, updated_at`

// GetByID fetches a job owned by the given session.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID, sessionID string) (*domain.Job, error) {
	query := `SELECT ` + pgJobColumns + ` FROM jobs WHERE id = $1 AND session_id = $2;`
	row := r.pool.QueryRow(ctx, query, jobID, sessionID)
	job, err := scanPGJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get job: %v", domain.ErrPersistence, err)
	}
	return job, nil
}

// ListBySession returns the session's jobs, newest first.
func (r *JobRepositoryPG) ListBySession(ctx context.Context, sessionID string) ([]domain.Job, error) {
	query := `SELECT ` + pgJobColumns + ` FROM jobs WHERE session_id = $1 ORDER BY created_at DESC;`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanPGJob(rows)
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

func scanPGJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	var varsJSON []byte
	if err := row.Scan(
		&job.ID,
		&job.SessionID,
		&job.PresetID,
		&job.InputImageURL,
		&job.OutputImageURL,
		&job.Status,
		&varsJSON,
		&job.CompiledInstruction,
		&job.ProviderRequestID,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(varsJSON) > 0 {
		if err := json.Unmarshal(varsJSON, &job.Variables); err != nil {
			return nil, err
		}
	}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
