package gate

// Decision is the outcome class of a compliance check.
type Decision string

const (
	// DecisionAllow indicates the request complies with the active policy.
	DecisionAllow Decision = "allow"

	// DecisionDeny indicates the request violates the active policy.
	DecisionDeny Decision = "deny"

	// DecisionNeedsReview indicates the request could not be decided
	// automatically and requires human review.
	DecisionNeedsReview Decision = "needs_review"

	// DecisionError indicates the check itself failed. Error verdicts are
	// never cached.
	DecisionError Decision = "error"
)

// Verdict is the result of a compliance check.
type Verdict struct {
	// Decision is the outcome class.
	Decision Decision

	// Reason is an optional human-readable explanation, typically set on
	// Deny and NeedsReview verdicts.
	Reason string

	// Err carries the failure cause on Error verdicts and is nil
	// otherwise.
	Err error
}

// Allow returns an Allow verdict.
func Allow() Verdict {
	return Verdict{Decision: DecisionAllow}
}

// Deny returns a Deny verdict with the given reason.
func Deny(reason string) Verdict {
	return Verdict{Decision: DecisionDeny, Reason: reason}
}

// NeedsReview returns a NeedsReview verdict with the given reason.
func NeedsReview(reason string) Verdict {
	return Verdict{Decision: DecisionNeedsReview, Reason: reason}
}

// Errored returns an Error verdict carrying the failure cause.
func Errored(err error) Verdict {
	return Verdict{Decision: DecisionError, Err: err}
}

// Allowed reports whether the verdict permits the request.
func (v Verdict) Allowed() bool {
	return v.Decision == DecisionAllow
}

// Cacheable reports whether the verdict may be stored in the validation
// cache. Error verdicts are transient and must never poison the cache.
func (v Verdict) Cacheable() bool {
	return v.Err == nil && v.Decision != DecisionError && v.Decision != ""
}
