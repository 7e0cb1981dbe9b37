package policy

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrEmptyIdentity indicates a source produced an empty identity token.
	ErrEmptyIdentity = errors.New("empty policy identity")
)

// LoadError indicates a policy identity source failed to load.
type LoadError struct {
	Source string
	Cause  error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	return fmt.Sprintf("policy identity load from %s failed: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
