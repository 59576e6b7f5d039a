package inject

import (
	"fmt"
	"regexp"

	"server/internal/domain"
)

// Apply produces the injected tree for a preset and a validated variable
// set. It always works on a structural deep copy of the preset template so
// concurrent requests against the same preset never observe each other's
// substitutions.
func Apply(p *domain.Preset, values domain.Values) (map[string]any, error) {
	tree, ok := cloneNode(p.Template).(map[string]any)
	if !ok {
		tree = map[string]any{}
	}
	switch p.InjectionMode {
	case domain.InjectionPathPatch:
		return applyPatches(p, values, tree)
	default:
		// Placeholder is the default when the preset omits the mode.
		return applyPlaceholders(p, values, tree)
	}
}

// cloneNode deep-copies a template tree of maps, slices, and scalars.
func cloneNode(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneNode(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneNode(item)
		}
		return out
	default:
		return v
	}
}

var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

func applyPlaceholders(p *domain.Preset, values domain.Values, tree map[string]any) (map[string]any, error) {
	var missing []string
	substituted := substituteNode(tree, p, values, &missing).(map[string]any)
	if len(missing) > 0 {
		violations := make([]string, 0, len(missing))
		for _, key := range missing {
			violations = append(violations, fmt.Sprintf("required variable %q has no value", key))
		}
		return nil, &domain.ValidationError{Violations: violations}
	}
	return substituted, nil
}

func substituteNode(node any, p *domain.Preset, values domain.Values, missing *[]string) any {
	switch v := node.(type) {
	case string:
		return placeholderPattern.ReplaceAllStringFunc(v, func(token string) string {
			name := token[2 : len(token)-2]
			if val, ok := values[name]; ok {
				return val.String()
			}
			schema, declared := p.Schema(name)
			if !declared {
				// Tokens that name no declared variable pass through
				// verbatim; template authors may use {{...}} for other
				// purposes.
				return token
			}
			if def, ok := schema.DefaultValue(); ok {
				return def.String()
			}
			if schema.Required {
				*missing = append(*missing, name)
				return ""
			}
			return ""
		})
	case map[string]any:
		for key, item := range v {
			v[key] = substituteNode(item, p, values, missing)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = substituteNode(item, p, values, missing)
		}
		return v
	default:
		return v
	}
}

func applyPatches(p *domain.Preset, values domain.Values, tree map[string]any) (map[string]any, error) {
	if len(p.Patches) == 0 {
		return nil, fmt.Errorf("%w: preset %q uses pathpatch injection but declares no patches", domain.ErrConfiguration, p.ID)
	}
	for _, patch := range p.Patches {
		val, ok := values[patch.VariableKey]
		if !ok {
			schema, declared := p.Schema(patch.VariableKey)
			if declared {
				if def, has := schema.DefaultValue(); has {
					val = def
					ok = true
				} else if schema.Required {
					return nil, &domain.ValidationError{
						Violations: []string{fmt.Sprintf("required variable %q has no value", patch.VariableKey)},
					}
				}
			}
		}
		if !ok {
			// Optional variable without a value: leave the tree untouched
			// at this path.
			continue
		}
		if _, err := SetAtPath(tree, patch.Path, val.Native()); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
