package preset

import (
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/imagegen"
	"server/internal/inject"
)

// Lint checks one preset definition for authoring defects. Every returned
// entry is a defect that would otherwise surface as a runtime failure; the
// registry refuses to build from a preset with any.
func Lint(p *domain.Preset) []string {
	var defects []string
	if strings.TrimSpace(p.ID) == "" {
		defects = append(defects, "preset id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		defects = append(defects, "preset name is required")
	}

	seen := make(map[string]struct{}, len(p.VariablesSchema))
	for _, schema := range p.VariablesSchema {
		if strings.TrimSpace(schema.Key) == "" {
			defects = append(defects, "variable with empty key")
			continue
		}
		if _, dup := seen[schema.Key]; dup {
			defects = append(defects, fmt.Sprintf("duplicate variable key %q", schema.Key))
		}
		seen[schema.Key] = struct{}{}
		if !domain.KnownVariableType(schema.Type) {
			defects = append(defects, fmt.Sprintf("variable %q has unknown type %q", schema.Key, schema.Type))
		}
		if schema.Required && schema.HasDefault() {
			// A default on a required variable masks missing-input errors;
			// required becomes unreachable.
			defects = append(defects, fmt.Sprintf("variable %q is required but declares a default", schema.Key))
		}
		if schema.Type == domain.VariableSelect && len(schema.Options) == 0 {
			defects = append(defects, fmt.Sprintf("select variable %q declares no options", schema.Key))
		}
		if schema.Min != nil && schema.Max != nil && *schema.Min > *schema.Max {
			defects = append(defects, fmt.Sprintf("variable %q has min > max", schema.Key))
		}
	}

	switch p.InjectionMode {
	case "", domain.InjectionPlaceholder:
		if len(p.Patches) > 0 {
			defects = append(defects, "patches declared but injection mode is not pathpatch")
		}
	case domain.InjectionPathPatch:
		if len(p.Patches) == 0 {
			defects = append(defects, "pathpatch injection mode requires a non-empty patch list")
		}
		for _, patch := range p.Patches {
			if err := inject.ValidatePath(patch.Path); err != nil {
				defects = append(defects, fmt.Sprintf("patch path %q: unsupported grammar", patch.Path))
			}
			if _, declared := p.Schema(patch.VariableKey); !declared {
				defects = append(defects, fmt.Sprintf("patch references undeclared variable %q", patch.VariableKey))
			}
		}
	default:
		defects = append(defects, fmt.Sprintf("unknown injection mode %q", p.InjectionMode))
	}

	rules := p.CompilerRules
	hasMode := rules.PromptFieldPath != "" || rules.StringifyWithWrapper || len(rules.FieldMappings) > 0
	if rules.Strict && !hasMode {
		defects = append(defects, "strict compiler rules configure no prompt extraction mode")
	}
	if rules.WrapperTemplate != "" && !strings.Contains(rules.WrapperTemplate, imagegen.WrapperMarker) {
		defects = append(defects, fmt.Sprintf("wrapper template lacks the %s marker", imagegen.WrapperMarker))
	}
	for _, mapping := range rules.FieldMappings {
		if strings.TrimSpace(mapping.Field) == "" || strings.TrimSpace(mapping.Phrase) == "" {
			defects = append(defects, "field mapping with empty field or phrase")
		}
	}
	return defects
}
