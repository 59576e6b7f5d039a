package enhance

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/preset"
	"server/internal/providers/image"
	"server/internal/upload"
)

type memoryJobs struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job

	createErr error
	updates   []domain.JobStatus
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{jobs: map[string]*domain.Job{}}
}

func (m *memoryJobs) Create(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memoryJobs) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, update domain.JobUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	m.updates = append(m.updates, status)
	job.Status = status
	if update.OutputImageURL != nil {
		job.OutputImageURL = *update.OutputImageURL
	}
	if update.ProviderRequestID != nil {
		job.ProviderRequestID = *update.ProviderRequestID
	}
	if update.ErrorMessage != nil {
		job.ErrorMessage = *update.ErrorMessage
	}
	return nil
}

func (m *memoryJobs) GetByID(ctx context.Context, jobID, sessionID string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.SessionID != sessionID {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memoryJobs) ListBySession(ctx context.Context, sessionID string) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Job
	for _, job := range m.jobs {
		if job.SessionID == sessionID {
			out = append(out, *job)
		}
	}
	return out, nil
}

type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: map[string][]byte{}}
}

func (m *memoryBlobs) Write(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.HasPrefix(key, m.failOn) {
		return "", errors.New("disk full")
	}
	m.objects[key] = data
	return "http://localhost/files/" + key, nil
}

func (m *memoryBlobs) Read(ctx context.Context, key string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, "", errors.New("no such blob")
	}
	return data, "image/png", nil
}

type fakeEditor struct {
	result *image.EditResult
	err    error
	last   image.EditRequest
}

func (f *fakeEditor) Edit(ctx context.Context, req image.EditRequest) (*image.EditResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testLogger() *infra.Logger {
	l := infra.Logger(zerolog.New(io.Discard))
	return &l
}

func testService(t *testing.T, jobs *memoryJobs, blobs *memoryBlobs, editor *fakeEditor) *Service {
	t.Helper()
	registry, err := preset.NewRegistry(preset.BuiltinCatalog())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return NewService(registry, jobs, blobs, editor, testLogger())
}

func pngImage() *upload.Image {
	return &upload.Image{Data: []byte{0x89, 0x50, 0x4E, 0x47}, MIME: "image/png"}
}

func calloutRequest() Request {
	return Request{
		SessionID: "sess-a",
		PresetID:  "product-callout",
		Values: domain.Values{
			"surface": domain.StringValue("marble"),
			"mood":    domain.StringValue("dramatic"),
		},
		Image: pngImage(),
	}
}

func TestEnhanceHappyPath(t *testing.T) {
	jobs := newMemoryJobs()
	blobs := newMemoryBlobs()
	editor := &fakeEditor{result: &image.EditResult{
		ImageData:         []byte("out-bytes"),
		MIME:              "image/png",
		ProviderRequestID: "prov-1",
	}}
	svc := testService(t, jobs, blobs, editor)

	job, err := svc.Enhance(context.Background(), calloutRequest())
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if job.Status != domain.JobStatusComplete {
		t.Fatalf("Status = %q, want complete", job.Status)
	}
	if job.OutputImageURL == "" || job.InputImageURL == "" {
		t.Fatalf("URLs not recorded: in=%q out=%q", job.InputImageURL, job.OutputImageURL)
	}
	if job.ProviderRequestID != "prov-1" {
		t.Fatalf("ProviderRequestID = %q, want prov-1", job.ProviderRequestID)
	}
	if !strings.Contains(editor.last.Instruction, "marble") || !strings.Contains(editor.last.Instruction, "dramatic") {
		t.Fatalf("instruction = %q, want substituted surface and mood", editor.last.Instruction)
	}
	want := []domain.JobStatus{domain.JobStatusProcessing, domain.JobStatusComplete}
	if len(jobs.updates) != 2 || jobs.updates[0] != want[0] || jobs.updates[1] != want[1] {
		t.Fatalf("transitions = %v, want %v", jobs.updates, want)
	}
	if _, ok := blobs.objects["outputs/"+job.ID+".png"]; !ok {
		t.Fatalf("output blob missing, stored keys: %v", blobs.objects)
	}
}

func TestOutputReadsStoredBytes(t *testing.T) {
	jobs := newMemoryJobs()
	blobs := newMemoryBlobs()
	editor := &fakeEditor{result: &image.EditResult{
		ImageData: []byte("out-bytes"),
		MIME:      "image/png",
	}}
	svc := testService(t, jobs, blobs, editor)

	job, err := svc.Enhance(context.Background(), calloutRequest())
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}

	data, contentType, err := svc.Output(context.Background(), job)
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if string(data) != "out-bytes" {
		t.Fatalf("Output() data = %q, want out-bytes", data)
	}
	if contentType != "image/png" {
		t.Fatalf("Output() contentType = %q, want image/png", contentType)
	}

	bad := *job
	bad.OutputImageURL = "http://localhost/files/uploads/stray.png"
	if _, _, err := svc.Output(context.Background(), &bad); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("Output() error = %v, want ErrPersistence", err)
	}
}

func TestEnhanceUnknownPreset(t *testing.T) {
	svc := testService(t, newMemoryJobs(), newMemoryBlobs(), &fakeEditor{})
	req := calloutRequest()
	req.PresetID = "nope"
	if _, err := svc.Enhance(context.Background(), req); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Enhance() error = %v, want ErrNotFound", err)
	}
}

func TestEnhanceValidationFailureCreatesNoJob(t *testing.T) {
	jobs := newMemoryJobs()
	svc := testService(t, jobs, newMemoryBlobs(), &fakeEditor{})

	req := calloutRequest()
	delete(req.Values, "surface")
	_, err := svc.Enhance(context.Background(), req)
	verr, ok := domain.AsValidationError(err)
	if !ok {
		t.Fatalf("Enhance() error = %v, want ValidationError", err)
	}
	if len(verr.Violations) == 0 {
		t.Fatal("ValidationError carries no violations")
	}
	if len(jobs.jobs) != 0 {
		t.Fatalf("job record created despite validation failure: %v", jobs.jobs)
	}
}

func TestEnhanceMissingImage(t *testing.T) {
	svc := testService(t, newMemoryJobs(), newMemoryBlobs(), &fakeEditor{})
	req := calloutRequest()
	req.Image = nil
	if _, err := svc.Enhance(context.Background(), req); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Enhance() error = %v, want ErrConfiguration", err)
	}
}

func TestEnhanceProviderFailureMarksJobFailed(t *testing.T) {
	jobs := newMemoryJobs()
	editor := &fakeEditor{err: domain.ErrProviderFailure}
	svc := testService(t, jobs, newMemoryBlobs(), editor)

	job, err := svc.Enhance(context.Background(), calloutRequest())
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("Enhance() error = %v, want ErrProviderFailure", err)
	}
	if job == nil || job.Status != domain.JobStatusFailed {
		t.Fatalf("job = %+v, want failed status", job)
	}
	stored := jobs.jobs[job.ID]
	if stored.Status != domain.JobStatusFailed || stored.ErrorMessage == "" {
		t.Fatalf("stored job = %+v, want failed with error message", stored)
	}
	if stored.CompiledInstruction == "" {
		t.Fatal("failed job lost its compiled instruction")
	}
}

func TestEnhanceEmptyProviderResultFails(t *testing.T) {
	jobs := newMemoryJobs()
	editor := &fakeEditor{result: &image.EditResult{ImageData: nil}}
	svc := testService(t, jobs, newMemoryBlobs(), editor)

	job, err := svc.Enhance(context.Background(), calloutRequest())
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("Enhance() error = %v, want ErrProviderFailure", err)
	}
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("Status = %q, want failed", job.Status)
	}
}

func TestEnhanceOutputStoreFailure(t *testing.T) {
	jobs := newMemoryJobs()
	blobs := newMemoryBlobs()
	blobs.failOn = "outputs/"
	editor := &fakeEditor{result: &image.EditResult{ImageData: []byte("x"), MIME: "image/png"}}
	svc := testService(t, jobs, blobs, editor)

	job, err := svc.Enhance(context.Background(), calloutRequest())
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("Enhance() error = %v, want ErrPersistence", err)
	}
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("Status = %q, want failed", job.Status)
	}
}

func TestEnhanceLayersTransportOptions(t *testing.T) {
	editor := &fakeEditor{result: &image.EditResult{ImageData: []byte("x"), MIME: "image/png"}}
	svc := testService(t, newMemoryJobs(), newMemoryBlobs(), editor)

	req := calloutRequest()
	req.AspectRatio = "16:9"
	req.Resolution = "4K"
	if _, err := svc.Enhance(context.Background(), req); err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if editor.last.Options["aspect_ratio"] != "16:9" {
		t.Fatalf("aspect_ratio = %v, want 16:9", editor.last.Options["aspect_ratio"])
	}
	if editor.last.Options["resolution"] != "4K" {
		t.Fatalf("resolution = %v, want 4K", editor.last.Options["resolution"])
	}
}

func TestJobLookupIsSessionScoped(t *testing.T) {
	jobs := newMemoryJobs()
	editor := &fakeEditor{result: &image.EditResult{ImageData: []byte("x"), MIME: "image/png"}}
	svc := testService(t, jobs, newMemoryBlobs(), editor)

	job, err := svc.Enhance(context.Background(), calloutRequest())
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if _, err := svc.Job(context.Background(), job.ID, "sess-b"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Job() with wrong session error = %v, want ErrNotFound", err)
	}
	got, err := svc.Job(context.Background(), job.ID, "sess-a")
	if err != nil {
		t.Fatalf("Job() error = %v", err)
	}
	if got.ID != job.ID {
		t.Fatalf("Job() id = %q, want %q", got.ID, job.ID)
	}
}
