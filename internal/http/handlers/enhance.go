package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/enhance"
)

type jobView struct {
	ID                  string        `json:"id"`
	PresetID            string        `json:"preset_id"`
	Status              string        `json:"status"`
	InputImageURL       string        `json:"input_image_url,omitempty"`
	OutputImageURL      string        `json:"output_image_url,omitempty"`
	Variables           domain.Values `json:"variables,omitempty"`
	CompiledInstruction string        `json:"compiled_instruction,omitempty"`
	ProviderRequestID   string        `json:"provider_request_id,omitempty"`
	ErrorMessage        string        `json:"error_message,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func toJobView(job *domain.Job, includeInstruction bool) jobView {
	view := jobView{
		ID:                job.ID,
		PresetID:          job.PresetID,
		Status:            string(job.Status),
		InputImageURL:     job.InputImageURL,
		OutputImageURL:    job.OutputImageURL,
		Variables:         job.Variables,
		ProviderRequestID: job.ProviderRequestID,
		ErrorMessage:      job.ErrorMessage,
		CreatedAt:         job.CreatedAt,
		UpdatedAt:         job.UpdatedAt,
	}
	if includeInstruction {
		view.CompiledInstruction = job.CompiledInstruction
	}
	return view
}

// Enhance accepts a multipart form: preset_id, variables (JSON object),
// image (file), plus optional aspect_ratio and resolution fields. The job
// runs synchronously and the final record is returned.
func (a *App) Enhance(w http.ResponseWriter, r *http.Request) {
	sessionID, err := a.sessionID(r)
	if err != nil {
		a.domainError(w, err)
		return
	}

	if err := r.ParseMultipartForm(a.Uploads.MaxBytes() + (1 << 20)); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	presetID := strings.TrimSpace(r.FormValue("preset_id"))
	if presetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "preset_id is required")
		return
	}

	values := domain.Values{}
	if raw := r.FormValue("variables"); raw != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "variables must be a JSON object")
			return
		}
		parsed, err := domain.ParseValues(decoded)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		values = parsed
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file is required")
		return
	}
	defer file.Close()
	img, err := a.Uploads.ReadPart(file, header)
	if err != nil {
		a.domainError(w, err)
		return
	}

	job, err := a.Service.Enhance(r.Context(), enhance.Request{
		SessionID:   sessionID,
		PresetID:    presetID,
		Values:      values,
		Image:       img,
		AspectRatio: strings.TrimSpace(r.FormValue("aspect_ratio")),
		Resolution:  strings.TrimSpace(r.FormValue("resolution")),
	})
	if err != nil {
		if job != nil && job.Status == domain.JobStatusFailed {
			a.json(w, http.StatusBadGateway, map[string]any{
				"error":   "enhance_failed",
				"message": job.ErrorMessage,
				"job":     toJobView(job, true),
			})
			return
		}
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toJobView(job, true))
}
