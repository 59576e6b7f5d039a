package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type presetVariable struct {
	Key      string                `json:"key"`
	Type     domain.VariableType   `json:"type"`
	Label    string                `json:"label"`
	Default  any                   `json:"default,omitempty"`
	Required bool                  `json:"required"`
	Min      *float64              `json:"min,omitempty"`
	Max      *float64              `json:"max,omitempty"`
	Step     *float64              `json:"step,omitempty"`
	Options  []domain.SelectOption `json:"options,omitempty"`
}

type presetView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Variables   []presetVariable `json:"variables"`
}

// The template, injection strategy and compiler rules stay server-side;
// clients only see what they need to render a form.
func toPresetView(p *domain.Preset) presetView {
	view := presetView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Variables:   make([]presetVariable, 0, len(p.VariablesSchema)),
	}
	for _, schema := range p.VariablesSchema {
		view.Variables = append(view.Variables, presetVariable{
			Key:      schema.Key,
			Type:     schema.Type,
			Label:    schema.DisplayLabel(),
			Default:  schema.Default,
			Required: schema.Required,
			Min:      schema.Min,
			Max:      schema.Max,
			Step:     schema.Step,
			Options:  schema.Options,
		})
	}
	return view
}

func (a *App) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := a.Service.Presets()
	views := make([]presetView, 0, len(presets))
	for _, p := range presets {
		views = append(views, toPresetView(p))
	}
	a.json(w, http.StatusOK, map[string]any{"presets": views})
}

func (a *App) GetPreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := a.Service.Preset(id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toPresetView(p))
}
