package gate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	"mercator-hq/ganymede/pkg/gate/cache"
	"mercator-hq/ganymede/pkg/policy"
)

// DecisionFunc is the external compliance rule engine. It is invoked on
// cache misses, at most once concurrently per (fingerprint, identity) pair.
// The context carries the computation timeout; implementations should
// respect cancellation.
type DecisionFunc func(ctx context.Context, fp Fingerprint, id policy.Identity) (Verdict, error)

// Config assembles a Gate's collaborators and tuning.
type Config struct {
	// Holder provides the active policy identity. Required.
	Holder *policy.Holder

	// Decide is the external decision function. Required.
	Decide DecisionFunc

	// Cache is the validation cache. Required.
	Cache *cache.Cache[Verdict]

	// EntryTTL is the TTL applied to cached verdicts.
	EntryTTL time.Duration

	// ComputationTimeout bounds a decision computation and any wait on a
	// shared in-flight computation.
	ComputationTimeout time.Duration

	// Metrics receives hit/miss/latency telemetry. Optional.
	Metrics MetricsRecorder

	// Observer receives completed validation results. Optional.
	Observer ObserverFunc

	// Logger is used for warnings on the failure path. Optional.
	Logger *slog.Logger

	// Tracer creates spans around validations. Optional.
	Tracer trace.Tracer
}

// Gate is the compliance gate. See the package documentation for the
// validation flow. A Gate is safe for concurrent use; no global lock
// serializes validations.
type Gate struct {
	holder  *policy.Holder
	decide  DecisionFunc
	cache   *cache.Cache[Verdict]
	ttl     time.Duration
	timeout time.Duration

	group    singleflight.Group
	metrics  MetricsRecorder
	observer ObserverFunc
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a Gate from the given configuration.
func New(cfg Config) (*Gate, error) {
	if cfg.Holder == nil {
		return nil, fmt.Errorf("%w: policy holder is required", ErrInvalidConfig)
	}
	if cfg.Decide == nil {
		return nil, fmt.Errorf("%w: decision function is required", ErrInvalidConfig)
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("%w: validation cache is required", ErrInvalidConfig)
	}
	if cfg.EntryTTL <= 0 {
		return nil, fmt.Errorf("%w: entry TTL must be positive", ErrInvalidConfig)
	}
	if cfg.ComputationTimeout <= 0 {
		return nil, fmt.Errorf("%w: computation timeout must be positive", ErrInvalidConfig)
	}

	g := &Gate{
		holder:   cfg.Holder,
		decide:   cfg.Decide,
		cache:    cfg.Cache,
		ttl:      cfg.EntryTTL,
		timeout:  cfg.ComputationTimeout,
		metrics:  cfg.Metrics,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		tracer:   cfg.Tracer,
	}
	if g.metrics == nil {
		g.metrics = NopMetrics{}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.tracer == nil {
		g.tracer = noop.NewTracerProvider().Tracer("ganymede/gate")
	}
	return g, nil
}

// Validate fingerprints the input and validates it against the active
// policy identity.
func (g *Gate) Validate(ctx context.Context, input []byte) Verdict {
	return g.ValidateFingerprint(ctx, FingerprintBytes(input))
}

// ValidateFingerprint validates a precomputed fingerprint against the
// active policy identity. It always returns a Verdict; failures surface as
// Error verdicts, never as panics or silent drops.
func (g *Gate) ValidateFingerprint(ctx context.Context, fp Fingerprint) Verdict {
	start := time.Now()
	ctx, span := g.tracer.Start(ctx, "gate.validate")
	defer span.End()

	// Snapshot the identity once; the whole validation runs against this
	// snapshot even if a rotation lands mid-flight.
	id := g.holder.Current()

	if v, ok := g.cache.Get(fp.String(), id.String()); ok {
		g.metrics.RecordHit()
		g.finish(span, fp, id, v, true, time.Since(start))
		return v
	}
	g.metrics.RecordMiss()

	v := g.compute(ctx, fp, id)
	g.finish(span, fp, id, v, false, time.Since(start))
	return v
}

// compute resolves a cache miss through the singleflight group. At most one
// decision computation is in flight per (fingerprint, identity); late
// arrivals wait for and share its result.
func (g *Gate) compute(ctx context.Context, fp Fingerprint, id policy.Identity) Verdict {
	key := fp.String() + "@" + id.String()

	ch := g.group.DoChan(key, func() (interface{}, error) {
		// Detach from the triggering caller: its cancellation must not
		// abort a computation other callers are waiting on. The
		// computation timeout is the only bound.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		v, err := g.decide(cctx, fp, id)
		if err != nil {
			if cctx.Err() == context.DeadlineExceeded {
				return nil, ErrComputationTimeout
			}
			return nil, &DecideError{Fingerprint: fp, Cause: err}
		}
		if v.Cacheable() {
			g.cache.Put(fp.String(), id.String(), v, g.ttl)
		}
		return v, nil
	})

	// Waiters are bounded too: a caller never blocks indefinitely on a
	// shared computation slot.
	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			g.logger.Warn("decision computation failed",
				"fingerprint", shortFingerprint(fp),
				"policy_identity", id.Short(),
				"shared", res.Shared,
				"error", res.Err,
			)
			return Errored(res.Err)
		}
		return res.Val.(Verdict)

	case <-ctx.Done():
		return Errored(fmt.Errorf("%w: %v", ErrComputationTimeout, ctx.Err()))

	case <-timer.C:
		return Errored(ErrComputationTimeout)
	}
}

// finish annotates the span and fans out to metrics and the observer.
func (g *Gate) finish(span trace.Span, fp Fingerprint, id policy.Identity, v Verdict, hit bool, latency time.Duration) {
	span.SetAttributes(
		attribute.Bool("gate.cache_hit", hit),
		attribute.String("gate.decision", string(v.Decision)),
	)

	g.metrics.RecordLatency(latency, v.Decision)
	if g.observer != nil {
		g.observer(Result{
			Fingerprint:    fp,
			PolicyIdentity: id.String(),
			Verdict:        v,
			CacheHit:       hit,
			Latency:        latency,
		})
	}
}

// CacheLen returns the current number of cached verdicts.
func (g *Gate) CacheLen() int {
	return g.cache.Len()
}

// CacheCapacity returns the configured cache capacity.
func (g *Gate) CacheCapacity() int {
	return g.cache.Capacity()
}
