package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/config"
)

// CacheMetrics tracks validation cache occupancy and churn.
//
// Metrics:
//   - ganymede_cache_entries: current number of cached verdicts,
//     sampled from the cache at scrape time
//   - ganymede_cache_capacity: configured maximum entry count
//   - ganymede_cache_evictions_total: entries removed by LRU pressure,
//     TTL expiry, or identity staleness
type CacheMetrics struct {
	entries        prometheus.GaugeFunc
	capacity       prometheus.Gauge
	evictionsTotal prometheus.Counter

	sizeFn atomic.Pointer[func() int]
}

// NewCacheMetrics creates and registers cache metrics with the provided registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{}

	cm.entries = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_entries",
			Help:      "Current number of entries in the validation cache",
		},
		func() float64 {
			if fn := cm.sizeFn.Load(); fn != nil {
				return float64((*fn)())
			}
			return 0
		},
	)

	cm.capacity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_capacity",
			Help:      "Configured maximum number of validation cache entries",
		},
	)

	cm.evictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_evictions_total",
			Help:      "Total number of validation cache evictions",
		},
	)

	registry.MustRegister(
		cm.entries,
		cm.capacity,
		cm.evictionsTotal,
	)

	return cm
}

// SetCapacity records the configured capacity bound.
func (cm *CacheMetrics) SetCapacity(capacity int) {
	cm.capacity.Set(float64(capacity))
}

// ObserveSize wires the entry count gauge to fn, which is called at
// scrape time. Until the first call the gauge reports zero.
func (cm *CacheMetrics) ObserveSize(fn func() int) {
	cm.sizeFn.Store(&fn)
}

// RecordEviction records one evicted entry. Wire this as the cache's
// eviction hook.
func (cm *CacheMetrics) RecordEviction() {
	cm.evictionsTotal.Inc()
}
