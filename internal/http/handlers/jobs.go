package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListJobs returns the session's jobs without compiled instructions; the
// list view only needs status and URLs.
func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	sessionID, err := a.sessionID(r)
	if err != nil {
		a.domainError(w, err)
		return
	}
	jobs, err := a.Service.Jobs(r.Context(), sessionID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	views := make([]jobView, 0, len(jobs))
	for i := range jobs {
		views = append(views, toJobView(&jobs[i], false))
	}
	a.json(w, http.StatusOK, map[string]any{"jobs": views})
}

func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	sessionID, err := a.sessionID(r)
	if err != nil {
		a.domainError(w, err)
		return
	}
	job, err := a.Service.Job(r.Context(), chi.URLParam(r, "id"), sessionID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toJobView(job, true))
}
