package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mercator-hq/ganymede/pkg/config"
)

// Collector bundles all Ganymede metric groups behind a single registry.
type Collector struct {
	registry *prometheus.Registry

	gate   *GateMetrics
	cache  *CacheMetrics
	policy *PolicyMetrics
}

// NewCollector creates a Collector and registers all metric groups.
// When registry is nil, a private registry with the standard Go and process
// collectors is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Collector{
		registry: registry,
		gate:     NewGateMetrics(cfg, registry),
		cache:    NewCacheMetrics(cfg, registry),
		policy:   NewPolicyMetrics(cfg, registry),
	}
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Gate returns the gate metric group.
func (c *Collector) Gate() *GateMetrics {
	return c.gate
}

// Cache returns the cache metric group.
func (c *Collector) Cache() *CacheMetrics {
	return c.cache
}

// Policy returns the policy metric group.
func (c *Collector) Policy() *PolicyMetrics {
	return c.policy
}
