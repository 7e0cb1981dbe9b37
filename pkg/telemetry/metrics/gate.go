package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/gate"
)

// GateMetrics tracks validation traffic through the compliance gate.
//
// Metrics:
//   - ganymede_gate_cache_hits_total: validations served from cache
//   - ganymede_gate_cache_misses_total: validations that required computation
//   - ganymede_gate_validation_duration_seconds: end-to-end latency by decision
type GateMetrics struct {
	hitsTotal   prometheus.Counter
	missesTotal prometheus.Counter

	validationDuration *prometheus.HistogramVec
}

// NewGateMetrics creates and registers gate metrics with the provided registry.
func NewGateMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GateMetrics {
	buckets := cfg.ValidationDurationBuckets
	if len(buckets) == 0 {
		buckets = config.DefaultValidationDurationBuckets
	}

	gm := &GateMetrics{
		hitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gate_cache_hits_total",
				Help:      "Total number of validations served from the cache",
			},
		),

		missesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gate_cache_misses_total",
				Help:      "Total number of validations that required a decision computation",
			},
		),

		validationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gate_validation_duration_seconds",
				Help:      "End-to-end validation latency in seconds",
				Buckets:   buckets,
			},
			[]string{"decision"},
		),
	}

	registry.MustRegister(
		gm.hitsTotal,
		gm.missesTotal,
		gm.validationDuration,
	)

	return gm
}

// RecordHit records a validation served from the cache.
func (gm *GateMetrics) RecordHit() {
	gm.hitsTotal.Inc()
}

// RecordMiss records a validation that required a decision computation.
func (gm *GateMetrics) RecordMiss() {
	gm.missesTotal.Inc()
}

// RecordLatency records one validation's end-to-end latency.
func (gm *GateMetrics) RecordLatency(d time.Duration, decision gate.Decision) {
	gm.validationDuration.WithLabelValues(string(decision)).Observe(d.Seconds())
}

// GateMetrics satisfies gate.MetricsRecorder, so it can be wired into the
// gate directly.
var _ gate.MetricsRecorder = (*GateMetrics)(nil)
