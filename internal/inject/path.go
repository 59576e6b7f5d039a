package inject

import (
	"fmt"
	"strconv"
	"strings"

	"server/internal/domain"
)

type stepKind int

const (
	stepField stepKind = iota
	stepIndex
)

// step is one parsed path segment: an object member access or a zero-based
// sequence index.
type step struct {
	kind  stepKind
	field string
	index int
}

func (s step) String() string {
	if s.kind == stepIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return "." + s.field
}

// parsePath tokenizes the minimal path grammar: a leading "$" root marker
// followed by one or more ".identifier" or "[integer]" segments. Anything
// outside the grammar (wildcards, filters, slices, recursive descent) is
// rejected up front; there is no best-effort matching.
func parsePath(path string) ([]step, error) {
	if !strings.HasPrefix(path, "$") {
		return nil, fmt.Errorf("%w: path %q must start with '$'", domain.ErrConfiguration, path)
	}
	rest := path[1:]
	var steps []step
	i := 0
	for i < len(rest) {
		switch rest[i] {
		case '.':
			i++
			start := i
			for i < len(rest) && isIdentByte(rest[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("%w: path %q has an empty member segment", domain.ErrConfiguration, path)
			}
			steps = append(steps, step{kind: stepField, field: rest[start:i]})
		case '[':
			i++
			start := i
			for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
				i++
			}
			if i == start || i >= len(rest) || rest[i] != ']' {
				return nil, fmt.Errorf("%w: path %q has a malformed index segment", domain.ErrConfiguration, path)
			}
			idx, err := strconv.Atoi(rest[start:i])
			if err != nil {
				return nil, fmt.Errorf("%w: path %q index: %v", domain.ErrConfiguration, path, err)
			}
			steps = append(steps, step{kind: stepIndex, index: idx})
			i++
		default:
			return nil, fmt.Errorf("%w: path %q has unsupported syntax at offset %d", domain.ErrConfiguration, path, i+1)
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: path %q has no segments", domain.ErrConfiguration, path)
	}
	return steps, nil
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// ValidatePath reports whether path belongs to the supported grammar. It is
// used by preset linting so authoring defects surface before any request.
func ValidatePath(path string) error {
	_, err := parsePath(path)
	return err
}

// SetAtPath applies value at path on tree, creating missing intermediate
// containers: an empty sequence when the next segment is an index, an empty
// map otherwise. Existing nodes whose shape conflicts with a segment fail
// with a structural mismatch instead of being coerced. The mutated tree is
// also returned for chaining.
func SetAtPath(tree map[string]any, path string, value any) (map[string]any, error) {
	steps, err := parsePath(path)
	if err != nil {
		return tree, err
	}
	if _, err := assign(tree, steps, value, path); err != nil {
		return tree, err
	}
	return tree, nil
}

func assign(node any, steps []step, value any, path string) (any, error) {
	if len(steps) == 0 {
		return value, nil
	}
	s := steps[0]
	switch s.kind {
	case stepField:
		m, ok := node.(map[string]any)
		if node == nil {
			m = map[string]any{}
		} else if !ok {
			return nil, fmt.Errorf("%w: path %q expects an object at %q", domain.ErrStructuralMismatch, path, s.field)
		}
		child, err := assign(m[s.field], steps[1:], value, path)
		if err != nil {
			return nil, err
		}
		m[s.field] = child
		return m, nil
	default:
		seq, ok := node.([]any)
		if node == nil {
			seq = []any{}
		} else if !ok {
			return nil, fmt.Errorf("%w: path %q expects a sequence at %s", domain.ErrStructuralMismatch, path, s)
		}
		switch {
		case s.index < len(seq):
			child, err := assign(seq[s.index], steps[1:], value, path)
			if err != nil {
				return nil, err
			}
			seq[s.index] = child
			return seq, nil
		case s.index == len(seq):
			child, err := assign(nil, steps[1:], value, path)
			if err != nil {
				return nil, err
			}
			return append(seq, child), nil
		default:
			return nil, fmt.Errorf("%w: path %q index %d is past the sequence length %d", domain.ErrStructuralMismatch, path, s.index, len(seq))
		}
	}
}
