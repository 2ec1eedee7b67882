package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad caller input; nothing was written.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing insight, method, version, rule or channel.
	ErrNotFound = errors.New("not found")
	// ErrInvariant marks a request that would break a domain rule; nothing was written.
	ErrInvariant = errors.New("invariant violation")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
