package gate

import "time"

// MetricsRecorder receives gate telemetry. Implementations must be
// fire-and-forget: they may not block and may not fail the validation path.
//
// A Prometheus-backed implementation lives in pkg/telemetry/metrics; the
// gate itself only depends on this interface.
type MetricsRecorder interface {
	// RecordHit records a cache hit.
	RecordHit()

	// RecordMiss records a cache miss.
	RecordMiss()

	// RecordLatency records the end-to-end latency of one validation,
	// labeled by the verdict's decision.
	RecordLatency(d time.Duration, decision Decision)
}

// NopMetrics is a MetricsRecorder that discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordHit()                            {}
func (NopMetrics) RecordMiss()                           {}
func (NopMetrics) RecordLatency(time.Duration, Decision) {}

// Result describes one completed validation, delivered to the observer.
// Observers consume outcomes only; they never participate in gate logic.
type Result struct {
	Fingerprint    Fingerprint
	PolicyIdentity string
	Verdict        Verdict
	CacheHit       bool
	Latency        time.Duration
}

// ObserverFunc receives completed validation results, e.g. for audit
// recording. Like MetricsRecorder it must never block the validation path
// for long.
type ObserverFunc func(Result)
