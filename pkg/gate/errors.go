package gate

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrComputationTimeout indicates a decision computation (or the wait
	// on a shared in-flight computation) exceeded the configured timeout.
	ErrComputationTimeout = errors.New("decision computation timed out")

	// ErrInvalidConfig indicates invalid gate construction parameters.
	ErrInvalidConfig = errors.New("invalid gate configuration")
)

// DecideError indicates the external decision function failed for a
// fingerprint. It is surfaced as an Error verdict and never cached.
type DecideError struct {
	Fingerprint Fingerprint
	Cause       error
}

// Error returns the error message.
func (e *DecideError) Error() string {
	return fmt.Sprintf("decision failed for fingerprint %s: %v", shortFingerprint(e.Fingerprint), e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DecideError) Unwrap() error {
	return e.Cause
}

// shortFingerprint truncates a fingerprint for error messages and logs.
func shortFingerprint(f Fingerprint) string {
	const n = 12
	if len(f) <= n {
		return string(f)
	}
	return string(f[:n])
}
