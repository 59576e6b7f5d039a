package preset

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"server/internal/domain"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateValues checks supplied values against a preset's declared schema
// and returns every violation found, not just the first, so a caller can
// report all problems in one pass. A nil return means the values are valid.
// This is the fail-fast gate: no injection or compilation proceeds while it
// reports violations.
func ValidateValues(p *domain.Preset, values domain.Values) *domain.ValidationError {
	var violations []string
	for _, schema := range p.VariablesSchema {
		value, present := values[schema.Key]
		if present && value.Kind() == domain.ValueKindString && value.String() == "" {
			present = false
		}
		if !present {
			if schema.Required {
				violations = append(violations,
					fmt.Sprintf("required variable '%s' (%s) is missing", schema.DisplayLabel(), schema.Key))
			}
			continue
		}
		violations = append(violations, checkType(schema, value)...)
	}
	if len(violations) == 0 {
		return nil
	}
	return &domain.ValidationError{Violations: violations}
}

func checkType(schema domain.VariableSchema, value domain.Value) []string {
	var violations []string
	label := schema.DisplayLabel()
	switch schema.Type {
	case domain.VariableNumber, domain.VariableSlider:
		num, ok := numericValue(value)
		if !ok {
			return []string{fmt.Sprintf("variable '%s' must be a number", label)}
		}
		if schema.Min != nil && num < *schema.Min {
			violations = append(violations,
				fmt.Sprintf("variable '%s' must be >= %s", label, formatBound(*schema.Min)))
		}
		if schema.Max != nil && num > *schema.Max {
			violations = append(violations,
				fmt.Sprintf("variable '%s' must be <= %s", label, formatBound(*schema.Max)))
		}
	case domain.VariableBoolean:
		if value.Kind() != domain.ValueKindBool {
			violations = append(violations,
				fmt.Sprintf("variable '%s' must be a boolean", label))
		}
	case domain.VariableSelect:
		supplied := value.String()
		for _, option := range schema.Options {
			if option.Value == supplied {
				return nil
			}
		}
		violations = append(violations,
			fmt.Sprintf("variable '%s' must be one of the declared options", label))
	case domain.VariableColor:
		if !hexColorPattern.MatchString(value.String()) {
			violations = append(violations,
				fmt.Sprintf("variable '%s' must be a hex color like #ffffff", label))
		}
	}
	// Text accepts any non-empty value at this layer.
	return violations
}

// numericValue accepts the number kind directly and strings that parse as a
// finite number, which is how form-encoded callers submit slider values.
func numericValue(value domain.Value) (float64, bool) {
	if num, ok := value.Number(); ok {
		return num, true
	}
	if value.Kind() != domain.ValueKindString {
		return 0, false
	}
	num, err := strconv.ParseFloat(value.String(), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
