package preset

import (
	"fmt"
	"strings"

	"server/internal/domain"
)

// Registry is the immutable process-wide preset catalog. It is built once at
// startup and only ever read afterwards, so concurrent lookups need no
// synchronization.
type Registry struct {
	byID    map[string]*domain.Preset
	ordered []*domain.Preset
}

// NewRegistry builds a registry from a static preset list, rejecting
// duplicate ids and any preset with authoring defects before the process
// starts serving.
func NewRegistry(presets []domain.Preset) (*Registry, error) {
	r := &Registry{
		byID:    make(map[string]*domain.Preset, len(presets)),
		ordered: make([]*domain.Preset, 0, len(presets)),
	}
	for i := range presets {
		p := presets[i]
		if defects := Lint(&p); len(defects) > 0 {
			return nil, fmt.Errorf("%w: preset %q: %s", domain.ErrConfiguration, p.ID, strings.Join(defects, "; "))
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate preset id %q", domain.ErrConfiguration, p.ID)
		}
		r.byID[p.ID] = &p
		r.ordered = append(r.ordered, &p)
	}
	return r, nil
}

// Get returns the preset for id.
func (r *Registry) Get(id string) (*domain.Preset, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("preset %q: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// List returns all presets in catalog order.
func (r *Registry) List() []*domain.Preset {
	out := make([]*domain.Preset, len(r.ordered))
	copy(out, r.ordered)
	return out
}
