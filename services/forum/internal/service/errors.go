package service

import (
	"errors"
	"fmt"

	"github.com/example/forum-platform/services/forum/internal/store"
)

var (
	// ErrNotFound means a referenced comment or post does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller may not edit or delete the target.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports a rejected input field. Nothing is written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// lookupErr maps store.ErrNotFound to ErrNotFound and wraps anything else.
func lookupErr(what, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", what, id, err)
}
