package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind enumerates the runtime representations a variable value can take.
type ValueKind string

const (
	ValueKindString ValueKind = "string"
	ValueKindNumber ValueKind = "number"
	ValueKindBool   ValueKind = "bool"
)

// Value is a tagged variable value. It always holds exactly one of a string,
// a number, or a boolean; untyped blobs never travel through the pipeline.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

func StringValue(s string) Value { return Value{kind: ValueKindString, str: s} }

func NumberValue(f float64) Value { return Value{kind: ValueKindNumber, num: f} }

func BoolValue(b bool) Value { return Value{kind: ValueKindBool, b: b} }

// ValueOf converts a decoded JSON scalar into a tagged Value.
func ValueOf(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case float64:
		return NumberValue(v), nil
	case int:
		return NumberValue(float64(v)), nil
	case int64:
		return NumberValue(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("value %q is not a finite number", v.String())
		}
		return NumberValue(f), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Kind reports the tag of the value. The zero Value has an empty kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsZero reports whether the value is the absent zero Value.
func (v Value) IsZero() bool { return v.kind == "" }

// Native returns the untagged scalar suitable for placing into a template
// tree or serializing to JSON.
func (v Value) Native() any {
	switch v.kind {
	case ValueKindString:
		return v.str
	case ValueKindNumber:
		return v.num
	case ValueKindBool:
		return v.b
	default:
		return nil
	}
}

// String renders the value the way placeholder substitution expects:
// numbers without an exponent or trailing zeros, booleans as true/false.
func (v Value) String() string {
	switch v.kind {
	case ValueKindString:
		return v.str
	case ValueKindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueKindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Number returns the numeric payload; ok is false for non-number kinds.
func (v Value) Number() (float64, bool) {
	if v.kind != ValueKindNumber {
		return 0, false
	}
	return v.num, true
}

// Bool returns the boolean payload; ok is false for non-bool kinds.
func (v Value) Bool() (bool, bool) {
	if v.kind != ValueKindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Values maps variable keys to their tagged values.
type Values map[string]Value

// ParseValues converts a decoded JSON object into tagged Values, rejecting
// nested objects and arrays at the boundary.
func ParseValues(raw map[string]any) (Values, error) {
	out := make(Values, len(raw))
	for key, item := range raw {
		if item == nil {
			continue
		}
		v, err := ValueOf(item)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}
