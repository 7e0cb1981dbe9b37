package audit

import "time"

// Record is one audited validation outcome.
type Record struct {
	// ID is a unique record identifier (UUID v4).
	ID string

	// Fingerprint is the validated request's fingerprint.
	Fingerprint string

	// PolicyIdentity is the policy identity the verdict was computed
	// under.
	PolicyIdentity string

	// Decision is the verdict's outcome class.
	Decision string

	// Reason is the verdict's explanation, if any.
	Reason string

	// CacheHit reports whether the verdict was served from cache.
	CacheHit bool

	// LatencyMicros is the end-to-end validation latency in microseconds.
	LatencyMicros int64

	// ObservedAt is when the validation completed.
	ObservedAt time.Time
}
