package scheduling

import (
	"errors"
	"fmt"
)

// Error kinds returned by every Service operation. Callers match them with
// errors.Is; the wrapped message carries the detail.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("not authorized")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
)

var kinds = []error{ErrValidation, ErrConflict, ErrUnauthorized, ErrInvalidState, ErrNotFound}

func fail(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// KindOf returns the error kind err wraps, or nil for store and other
// unexpected failures.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
