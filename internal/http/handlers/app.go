// Package handlers implements the HTTP surface of the enhancement service.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"server/internal/domain"
	"server/internal/enhance"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/upload"
)

// App bundles the dependencies the handlers need.
type App struct {
	Service *enhance.Service
	Uploads *upload.Validator
	Logger  *infra.Logger
}

// NewApp wires a handler container.
func NewApp(service *enhance.Service, uploads *upload.Validator, logger *infra.Logger) *App {
	return &App{Service: service, Uploads: uploads, Logger: logger}
}

// sessionID extracts the caller's session established by the middleware.
func (a *App) sessionID(r *http.Request) (string, error) {
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		return "", fmt.Errorf("%w: missing session", domain.ErrUnauthorized)
	}
	return id, nil
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error":   errCode,
		"message": message,
	})
}

// domainError maps service errors onto HTTP responses. Validation errors
// carry the full violation list so a client can fix everything at once.
func (a *App) domainError(w http.ResponseWriter, err error) {
	if verr, ok := domain.AsValidationError(err); ok {
		a.json(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "validation_failed",
			"message":    "variable validation failed",
			"violations": verr.Violations,
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrConfiguration):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrStructuralMismatch):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "provider_failure", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("handlers: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
