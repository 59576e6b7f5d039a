package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"server/internal/domain"
)

// Download serves the finished output of a job as an attachment so the
// browser saves the file instead of navigating to it. Only complete jobs
// have an output to serve.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	sessionID, err := a.sessionID(r)
	if err != nil {
		a.domainError(w, err)
		return
	}
	jobID := strings.TrimSpace(r.URL.Query().Get("job_id"))
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id is required")
		return
	}
	job, err := a.Service.Job(r.Context(), jobID, sessionID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if job.Status != domain.JobStatusComplete || job.OutputImageURL == "" {
		a.error(w, http.StatusConflict, "not_ready", "job has no output yet")
		return
	}
	data, contentType, err := a.Service.Output(r.Context(), job)
	if err != nil {
		a.domainError(w, err)
		return
	}

	filename := downloadFilename(r.URL.Query().Get("filename"), job.OutputImageURL)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// downloadFilename picks the saved-as name: the caller's filename query
// param when present, otherwise the stored object's name. Path separators
// and quotes are stripped so the header stays well formed.
func downloadFilename(requested, outputURL string) string {
	name := strings.TrimSpace(requested)
	if name != "" {
		name = path.Base(strings.ReplaceAll(name, "\\", "/"))
		name = strings.ReplaceAll(name, `"`, "")
	}
	if name == "" || name == "." || name == "/" {
		name = path.Base(outputURL)
	}
	if name == "" || name == "." || name == "/" {
		name = "enhanced-image.png"
	}
	return name
}
