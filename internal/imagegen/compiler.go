package imagegen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"server/internal/domain"
)

// CompiledRequest is the provider-facing output of compilation: the
// instruction text handed to the image model plus a flat options map.
type CompiledRequest struct {
	InstructionText string
	Options         map[string]any
}

const (
	// WrapperMarker is the substitution point inside a wrapper template.
	WrapperMarker = "<json>"
	// DefaultWrapperTemplate is used when stringify mode is enabled without
	// an explicit wrapper.
	DefaultWrapperTemplate = "Use this JSON spec exactly:\n<json>"

	// legacyPromptField is the conventional field consulted by the
	// non-strict fallback. Its siblings under the same object are merged
	// into the options map, which lets template content flow into the
	// outbound request; strict presets never reach this path.
	legacyPromptField = "provider.prompt"
)

// Compile turns an injected template tree into the provider-facing request.
// It is a pure function of the preset rules and the tree: no clock, no
// randomness, identical inputs yield byte-identical output.
func Compile(p *domain.Preset, tree map[string]any) (*CompiledRequest, error) {
	rules := p.CompilerRules
	options := make(map[string]any, len(p.DefaultOptions))
	for key, val := range p.DefaultOptions {
		options[key] = val
	}

	switch {
	case rules.PromptFieldPath != "":
		value, ok := lookupField(tree, rules.PromptFieldPath)
		if !ok {
			return nil, fmt.Errorf("%w: preset %q prompt field path %q not found in injected template",
				domain.ErrConfiguration, p.ID, rules.PromptFieldPath)
		}
		return &CompiledRequest{InstructionText: scalarText(value), Options: options}, nil

	case rules.StringifyWithWrapper:
		wrapper := rules.WrapperTemplate
		if wrapper == "" {
			wrapper = DefaultWrapperTemplate
		}
		canon := CanonicalJSON(tree)
		text := strings.Replace(wrapper, WrapperMarker, canon, 1)
		if !strings.Contains(wrapper, WrapperMarker) {
			text = wrapper + "\n" + canon
		}
		return &CompiledRequest{InstructionText: text, Options: options}, nil

	case len(rules.FieldMappings) > 0:
		var lines []string
		for _, mapping := range rules.FieldMappings {
			value, ok := lookupField(tree, mapping.Field)
			if !ok {
				continue
			}
			lines = append(lines, mapping.Phrase+": "+scalarText(value))
		}
		return &CompiledRequest{InstructionText: strings.Join(lines, "\n"), Options: options}, nil

	case rules.Strict:
		return nil, fmt.Errorf("%w: preset %q is strict but configures no prompt extraction mode",
			domain.ErrConfiguration, p.ID)

	default:
		if value, ok := lookupField(tree, legacyPromptField); ok {
			parentPath := legacyPromptField[:strings.LastIndex(legacyPromptField, ".")]
			leaf := legacyPromptField[strings.LastIndex(legacyPromptField, ".")+1:]
			if parent, ok := lookupField(tree, parentPath); ok {
				if siblings, ok := parent.(map[string]any); ok {
					for key, sibling := range siblings {
						if key == leaf {
							continue
						}
						options[key] = sibling
					}
				}
			}
			return &CompiledRequest{InstructionText: scalarText(value), Options: options}, nil
		}
		return &CompiledRequest{InstructionText: CanonicalJSON(tree), Options: options}, nil
	}
}

// CanonicalJSON serializes a tree with two-space indentation and
// lexicographically sorted object keys, which is stable across runs.
func CanonicalJSON(tree map[string]any) string {
	raw, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		// Template trees only hold JSON-representable nodes; a failure here
		// means a preset carried something it never should have.
		return "{}"
	}
	return string(raw)
}

// lookupField resolves a dotted field path against nested objects. It never
// descends into sequences; mapping paths address object members only.
func lookupField(tree map[string]any, path string) (any, bool) {
	var node any = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

func scalarText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
