package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/config"
)

// PolicyMetrics tracks policy identity rotation activity.
//
// Metrics:
//   - ganymede_policy_rotations_total: effective identity rotations
//   - ganymede_policy_last_rotation_timestamp_seconds: unix time of the
//     most recent rotation
type PolicyMetrics struct {
	rotationsTotal prometheus.Counter
	lastRotation   prometheus.Gauge
}

// NewPolicyMetrics creates and registers policy metrics with the provided registry.
func NewPolicyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		rotationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_rotations_total",
				Help:      "Total number of effective policy identity rotations",
			},
		),

		lastRotation: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_last_rotation_timestamp_seconds",
				Help:      "Unix timestamp of the most recent policy identity rotation",
			},
		),
	}

	registry.MustRegister(
		pm.rotationsTotal,
		pm.lastRotation,
	)

	return pm
}

// RecordRotation records an effective rotation. Wire this as a Holder
// subscriber.
func (pm *PolicyMetrics) RecordRotation() {
	pm.rotationsTotal.Inc()
	pm.lastRotation.Set(float64(time.Now().Unix()))
}
