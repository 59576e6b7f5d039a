// Package enhance orchestrates the full enhancement flow: preset lookup,
// variable validation, template injection, instruction compilation, job
// persistence and the provider call.
package enhance

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/imagegen"
	"server/internal/infra"
	"server/internal/inject"
	"server/internal/preset"
	"server/internal/providers/image"
	"server/internal/storage"
	"server/internal/upload"
)

// Request is one enhancement submission after HTTP decoding.
type Request struct {
	SessionID string
	PresetID  string
	Values    domain.Values
	Image     *upload.Image

	// AspectRatio and Resolution are transport options layered on top of
	// whatever the preset compiled; they never touch the instruction text.
	AspectRatio string
	Resolution  string
}

// Service runs enhancement jobs synchronously.
type Service struct {
	registry *preset.Registry
	jobs     domain.JobRepository
	blobs    storage.BlobStore
	editor   image.Editor
	logger   *infra.Logger
	now      func() time.Time
}

// NewService wires the enhancement pipeline.
func NewService(registry *preset.Registry, jobs domain.JobRepository, blobs storage.BlobStore, editor image.Editor, logger *infra.Logger) *Service {
	return &Service{
		registry: registry,
		jobs:     jobs,
		blobs:    blobs,
		editor:   editor,
		logger:   logger,
		now:      time.Now,
	}
}

// Enhance validates, compiles and executes one job. The job record is only
// created once validation and compilation have succeeded, so every stored
// job carries a complete compiled instruction. Provider failures are
// recorded on the job and returned.
func (s *Service) Enhance(ctx context.Context, req Request) (*domain.Job, error) {
	p, err := s.registry.Get(req.PresetID)
	if err != nil {
		return nil, err
	}
	if req.Image == nil || len(req.Image.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", domain.ErrConfiguration)
	}
	if verr := preset.ValidateValues(p, req.Values); verr != nil {
		return nil, verr
	}

	tree, err := inject.Apply(p, req.Values)
	if err != nil {
		return nil, err
	}
	compiled, err := imagegen.Compile(p, tree)
	if err != nil {
		return nil, err
	}

	options := make(map[string]any, len(compiled.Options)+2)
	for k, v := range compiled.Options {
		options[k] = v
	}
	if req.AspectRatio != "" {
		options["aspect_ratio"] = req.AspectRatio
	}
	if req.Resolution != "" {
		options["resolution"] = req.Resolution
	}

	jobID := uuid.NewString()
	inputURL, err := s.blobs.Write(ctx,
		"uploads/"+jobID+upload.Extension(req.Image.MIME),
		req.Image.Data, req.Image.MIME)
	if err != nil {
		return nil, fmt.Errorf("%w: store input image: %v", domain.ErrPersistence, err)
	}

	now := s.now().UTC()
	job := &domain.Job{
		ID:                  jobID,
		CreatedAt:           now,
		UpdatedAt:           now,
		SessionID:           req.SessionID,
		PresetID:            p.ID,
		InputImageURL:       inputURL,
		Status:              domain.JobStatusQueued,
		Variables:           req.Values,
		CompiledInstruction: compiled.InstructionText,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, job, domain.JobStatusProcessing, domain.JobUpdate{}); err != nil {
		return nil, err
	}

	result, err := s.editor.Edit(ctx, image.EditRequest{
		Instruction: compiled.InstructionText,
		Options:     options,
		ImageData:   req.Image.Data,
		ImageMIME:   req.Image.MIME,
	})
	if err == nil && (result == nil || len(result.ImageData) == 0) {
		err = fmt.Errorf("%w: provider returned no image", domain.ErrProviderFailure)
	}
	if err != nil {
		msg := err.Error()
		if ferr := s.transition(ctx, job, domain.JobStatusFailed, domain.JobUpdate{ErrorMessage: &msg}); ferr != nil {
			s.logger.Error().Err(ferr).Str("job_id", job.ID).Msg("enhance: record failure")
		}
		job.ErrorMessage = msg
		return job, err
	}

	outputURL, err := s.blobs.Write(ctx,
		"outputs/"+jobID+upload.Extension(result.MIME),
		result.ImageData, result.MIME)
	if err != nil {
		msg := fmt.Sprintf("store output image: %v", err)
		if ferr := s.transition(ctx, job, domain.JobStatusFailed, domain.JobUpdate{ErrorMessage: &msg}); ferr != nil {
			s.logger.Error().Err(ferr).Str("job_id", job.ID).Msg("enhance: record failure")
		}
		job.ErrorMessage = msg
		return job, fmt.Errorf("%w: %s", domain.ErrPersistence, msg)
	}

	update := domain.JobUpdate{OutputImageURL: &outputURL}
	if result.ProviderRequestID != "" {
		update.ProviderRequestID = &result.ProviderRequestID
	}
	if err := s.transition(ctx, job, domain.JobStatusComplete, update); err != nil {
		return nil, err
	}
	job.OutputImageURL = outputURL
	job.ProviderRequestID = result.ProviderRequestID

	s.logger.Info().
		Str("job_id", job.ID).
		Str("preset_id", p.ID).
		Str("status", string(job.Status)).
		Msg("enhance: job complete")
	return job, nil
}

// Job returns one of the session's jobs.
func (s *Service) Job(ctx context.Context, jobID, sessionID string) (*domain.Job, error) {
	return s.jobs.GetByID(ctx, jobID, sessionID)
}

// Output reads the stored result image of a job from the blob store so the
// HTTP layer can serve the bytes as a download.
func (s *Service) Output(ctx context.Context, job *domain.Job) ([]byte, string, error) {
	key, err := outputKey(job.OutputImageURL)
	if err != nil {
		return nil, "", err
	}
	data, contentType, err := s.blobs.Read(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read output image: %v", domain.ErrPersistence, err)
	}
	return data, contentType, nil
}

// outputKey maps a stored output URL back onto the blob key it was written
// under. Outputs live under the outputs/ prefix on every backend.
func outputKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: malformed output url: %v", domain.ErrPersistence, err)
	}
	if !strings.Contains(u.Path, "/outputs/") {
		return "", fmt.Errorf("%w: output url %q has no key", domain.ErrPersistence, rawURL)
	}
	return "outputs/" + path.Base(u.Path), nil
}

// Jobs lists the session's jobs, newest first.
func (s *Service) Jobs(ctx context.Context, sessionID string) ([]domain.Job, error) {
	return s.jobs.ListBySession(ctx, sessionID)
}

// Presets exposes the catalog for the HTTP surface.
func (s *Service) Presets() []*domain.Preset {
	return s.registry.List()
}

// Preset returns one preset by id.
func (s *Service) Preset(id string) (*domain.Preset, error) {
	return s.registry.Get(id)
}

func (s *Service) transition(ctx context.Context, job *domain.Job, next domain.JobStatus, update domain.JobUpdate) error {
	if !job.Status.CanTransition(next) {
		return fmt.Errorf("%w: illegal transition %s -> %s", domain.ErrPersistence, job.Status, next)
	}
	if err := s.jobs.UpdateStatus(ctx, job.ID, next, update); err != nil {
		return err
	}
	job.Status = next
	job.UpdatedAt = s.now().UTC()
	return nil
}
