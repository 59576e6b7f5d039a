package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConfiguration      = errors.New("preset configuration error")
	ErrStructuralMismatch = errors.New("structural mismatch")
	ErrProviderFailure    = errors.New("provider failure")
	ErrPersistence        = errors.New("persistence failure")
)

// ValidationError aggregates every constraint violation found in one pass so
// callers can report all of them at once instead of failing on the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "invalid variables"
	}
	return fmt.Sprintf("invalid variables: %s", strings.Join(e.Violations, "; "))
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
