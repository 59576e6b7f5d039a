package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusComplete || s == JobStatusFailed
}

// CanTransition reports whether next is a legal successor of s. The only
// legal sequences are prefixes of queued, processing, {complete|failed}.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusComplete || next == JobStatusFailed
	default:
		return false
	}
}

// Job records one user-initiated compilation+execution attempt. A record is
// only ever created with a validated variable set and a successfully
// compiled instruction; CompiledInstruction is immutable once written.
type Job struct {
	ID                  string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	SessionID           string
	PresetID            string
	InputImageURL       string
	OutputImageURL      string
	Status              JobStatus
	Variables           Values
	CompiledInstruction string
	ProviderRequestID   string
	ErrorMessage        string
}
