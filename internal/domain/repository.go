package domain

import "context"

// JobUpdate carries the optional fields of a status transition. Nil pointers
// leave the stored column untouched.
type JobUpdate struct {
	OutputImageURL    *string
	ProviderRequestID *string
	ErrorMessage      *string
}

// JobRepository defines persistence for job records. Every read is keyed by
// session so a caller can only see its own jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	UpdateStatus(ctx context.Context, jobID string, status JobStatus, update JobUpdate) error
	GetByID(ctx context.Context, jobID, sessionID string) (*Job, error)
	ListBySession(ctx context.Context, sessionID string) ([]Job, error)
}
