package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// VariableType enumerates the control types a preset can expose.
type VariableType string

const (
	VariableText    VariableType = "text"
	VariableNumber  VariableType = "number"
	VariableBoolean VariableType = "boolean"
	VariableColor   VariableType = "color"
	VariableSelect  VariableType = "select"
	VariableSlider  VariableType = "slider"
)

// KnownVariableType reports whether t is one of the declared control types.
func KnownVariableType(t VariableType) bool {
	switch t {
	case VariableText, VariableNumber, VariableBoolean, VariableColor, VariableSelect, VariableSlider:
		return true
	}
	return false
}

// SelectOption is one choice of a select variable. Validation compares
// supplied values against Value, never Label.
type SelectOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// VariableSchema declares one typed input a preset accepts.
type VariableSchema struct {
	Key      string         `json:"key" yaml:"key"`
	Type     VariableType   `json:"type" yaml:"type"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Default  any            `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool           `json:"required,omitempty" yaml:"required,omitempty"`
	Min      *float64       `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64       `json:"max,omitempty" yaml:"max,omitempty"`
	Step     *float64       `json:"step,omitempty" yaml:"step,omitempty"`
	Options  []SelectOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// HasDefault reports whether the schema declares a default value.
func (s VariableSchema) HasDefault() bool { return s.Default != nil }

// DefaultValue returns the declared default as a tagged Value.
func (s VariableSchema) DefaultValue() (Value, bool) {
	if s.Default == nil {
		return Value{}, false
	}
	v, err := ValueOf(s.Default)
	if err != nil {
		return Value{}, false
	}
	return v, true
}

var labelCaser = cases.Title(language.Und)

// DisplayLabel returns the declared label, or one derived from the key when
// authors omit it ("background_color" becomes "Background Color").
func (s VariableSchema) DisplayLabel() string {
	if strings.TrimSpace(s.Label) != "" {
		return s.Label
	}
	return labelCaser.String(strings.ReplaceAll(s.Key, "_", " "))
}

// InjectionMode selects how validated values are applied onto a template.
type InjectionMode string

const (
	InjectionPlaceholder InjectionMode = "placeholder"
	InjectionPathPatch   InjectionMode = "pathpatch"
)

// Patch sets one variable at one template location via the minimal path
// grammar. Required and non-empty when InjectionMode is pathpatch.
type Patch struct {
	Path        string `json:"path" yaml:"path"`
	VariableKey string `json:"var" yaml:"var"`
}

// FieldMapping maps a template field path to an instruction phrase. Mappings
// are an ordered list so compiled output is stable.
type FieldMapping struct {
	Field  string `json:"field" yaml:"field"`
	Phrase string `json:"phrase" yaml:"phrase"`
}

// CompilerRules governs how an injected template becomes the provider-facing
// instruction text. Exactly the first configured mode wins, in the order the
// fields are listed here; Strict forbids the legacy fallback entirely.
type CompilerRules struct {
	PromptFieldPath      string         `json:"prompt_field_path,omitempty" yaml:"prompt_field_path,omitempty"`
	StringifyWithWrapper bool           `json:"stringify_with_wrapper,omitempty" yaml:"stringify_with_wrapper,omitempty"`
	WrapperTemplate      string         `json:"wrapper_template,omitempty" yaml:"wrapper_template,omitempty"`
	FieldMappings        []FieldMapping `json:"field_mappings,omitempty" yaml:"field_mappings,omitempty"`
	Strict               bool           `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// Preset is an immutable bundle of template, variable schema, injection
// strategy, compiler rules, and default provider options. Presets are built
// once into the registry at process start and never mutated afterward; all
// per-request work happens on a deep copy of Template.
type Preset struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
	Template        map[string]any   `json:"template" yaml:"template"`
	VariablesSchema []VariableSchema `json:"variables_schema" yaml:"variables_schema"`
	InjectionMode   InjectionMode    `json:"injection_mode,omitempty" yaml:"injection_mode,omitempty"`
	Patches         []Patch          `json:"patches,omitempty" yaml:"patches,omitempty"`
	DefaultOptions  map[string]any   `json:"default_options,omitempty" yaml:"default_options,omitempty"`
	CompilerRules   CompilerRules    `json:"compiler_rules,omitempty" yaml:"compiler_rules,omitempty"`
}

// Schema returns the declared schema entry for key.
func (p *Preset) Schema(key string) (VariableSchema, bool) {
	for _, s := range p.VariablesSchema {
		if s.Key == key {
			return s, true
		}
	}
	return VariableSchema{}, false
}
