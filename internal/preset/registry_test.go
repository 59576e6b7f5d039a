package preset

import (
	"errors"
	"testing"

	"server/internal/domain"
)

func TestBuiltinCatalogBuildsCleanRegistry(t *testing.T) {
	r, err := NewRegistry(BuiltinCatalog())
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	if len(r.List()) != 3 {
		t.Fatalf("List() = %d presets, want 3", len(r.List()))
	}
	p, err := r.Get("luxury-studio")
	if err != nil {
		t.Fatalf("Get(luxury-studio) error: %v", err)
	}
	if p.InjectionMode != domain.InjectionPathPatch || len(p.Patches) == 0 {
		t.Fatalf("luxury-studio = %+v, want pathpatch preset with patches", p)
	}
}

func TestRegistryGetUnknownID(t *testing.T) {
	r, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	if _, err := r.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get() err = %v, want ErrNotFound", err)
	}
}

func TestRegistryRejectsDuplicateIDs(t *testing.T) {
	presets := []domain.Preset{
		{ID: "dup", Name: "A", Template: map[string]any{}},
		{ID: "dup", Name: "B", Template: map[string]any{}},
	}
	if _, err := NewRegistry(presets); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("NewRegistry() err = %v, want ErrConfiguration", err)
	}
}

func TestRegistryRejectsAuthoringDefects(t *testing.T) {
	cases := []struct {
		name   string
		preset domain.Preset
	}{
		{
			name: "required with default",
			preset: domain.Preset{
				ID: "p", Name: "P", Template: map[string]any{},
				VariablesSchema: []domain.VariableSchema{
					{Key: "x", Type: domain.VariableText, Required: true, Default: "masked"},
				},
			},
		},
		{
			name: "pathpatch without patches",
			preset: domain.Preset{
				ID: "p", Name: "P", Template: map[string]any{},
				InjectionMode: domain.InjectionPathPatch,
			},
		},
		{
			name: "patch with bad grammar",
			preset: domain.Preset{
				ID: "p", Name: "P", Template: map[string]any{},
				InjectionMode:   domain.InjectionPathPatch,
				VariablesSchema: []domain.VariableSchema{{Key: "x", Type: domain.VariableText}},
				Patches:         []domain.Patch{{Path: "$.a[*]", VariableKey: "x"}},
			},
		},
		{
			name: "patch referencing undeclared variable",
			preset: domain.Preset{
				ID: "p", Name: "P", Template: map[string]any{},
				InjectionMode: domain.InjectionPathPatch,
				Patches:       []domain.Patch{{Path: "$.a", VariableKey: "ghost"}},
			},
		},
		{
			name: "strict without extraction mode",
			preset: domain.Preset{
				ID: "p", Name: "P", Template: map[string]any{},
				CompilerRules: domain.CompilerRules{Strict: true},
			},
		},
		{
			name: "duplicate variable keys",
			preset: domain.Preset{
				ID: "p", Name: "P", Template: map[string]any{},
				VariablesSchema: []domain.VariableSchema{
					{Key: "x", Type: domain.VariableText},
					{Key: "x", Type: domain.VariableText},
				},
			},
		},
	}
	for _, tc := range cases {
		if _, err := NewRegistry([]domain.Preset{tc.preset}); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("%s: NewRegistry() err = %v, want ErrConfiguration", tc.name, err)
		}
	}
}
