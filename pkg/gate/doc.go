// Package gate implements the compliance gate: the validation entry point
// that sits in front of an external decision function and guarantees that
// repeated validations of the same request under the same policy identity
// are served from cache.
//
// # Validation flow
//
//	Validate(input)
//	       ↓
//	fingerprint input (SHA-256)
//	       ↓
//	snapshot policy identity
//	       ↓
//	cache lookup ── hit ──→ return cached verdict
//	       │ miss
//	       ↓
//	singleflight per (fingerprint, identity)
//	       ↓
//	decision function (bounded by computation timeout)
//	       ↓
//	cache store (Allow/Deny/NeedsReview only) ──→ fan out to waiters
//
// Concurrent callers that miss on the same fingerprint share a single
// in-flight computation; the decision function is invoked exactly once per
// (fingerprint, identity) pair no matter how many callers arrive during the
// miss. Decision failures and timeouts surface as Error verdicts and are
// never written to the cache, so a subsequent call recomputes instead of
// replaying a transient failure.
//
// The gate is an in-process library. The decision function, the metrics
// recorder, and the result observer are all injected collaborators; the
// gate attaches no meaning to the policy identity or to the rules behind
// the decision function.
package gate
