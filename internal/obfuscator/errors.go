package obfuscator

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidEvent = errors.New("invalid invocation event")
)

// MissingFieldError reports a request key that is absent or null.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }
