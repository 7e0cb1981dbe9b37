package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/gate/cache"
	"mercator-hq/ganymede/pkg/policy"
)

func newTestGate(t *testing.T, decide DecisionFunc, opts ...func(*Config)) *Gate {
	t.Helper()

	cfg := Config{
		Holder:             policy.NewHolder("pol-1"),
		Decide:             decide,
		Cache:              cache.New[Verdict](64),
		EntryTTL:           time.Minute,
		ComputationTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestNew_Validation(t *testing.T) {
	allow := func(context.Context, Fingerprint, policy.Identity) (Verdict, error) {
		return Allow(), nil
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nil holder", func(c *Config) { c.Holder = nil }},
		{"nil decide", func(c *Config) { c.Decide = nil }},
		{"nil cache", func(c *Config) { c.Cache = nil }},
		{"zero ttl", func(c *Config) { c.EntryTTL = 0 }},
		{"zero timeout", func(c *Config) { c.ComputationTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Holder:             policy.NewHolder("pol-1"),
				Decide:             allow,
				Cache:              cache.New[Verdict](64),
				EntryTTL:           time.Minute,
				ComputationTimeout: time.Second,
			}
			tt.mutate(&cfg)

			_, err := New(cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestGate_Validate_CachesVerdict(t *testing.T) {
	var calls atomic.Int64
	g := newTestGate(t, func(context.Context, Fingerprint, policy.Identity) (Verdict, error) {
		calls.Add(1)
		return Deny("prohibited content"), nil
	})

	input := []byte("request payload")

	first := g.Validate(context.Background(), input)
	second := g.Validate(context.Background(), input)

	if first.Decision != DecisionDeny || second.Decision != DecisionDeny {
		t.Errorf("verdicts = (%v, %v), want deny", first.Decision, second.Decision)
	}
	if second.Reason != "prohibited content" {
		t.Errorf("cached verdict reason = %q, want original reason", second.Reason)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("decision function called %d times, want 1", got)
	}
}

func TestGate_Validate_Singleflight(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})

	g := newTestGate(t, func(ctx context.Context, _ Fingerprint, _ policy.Identity) (Verdict, error) {
		calls.Add(1)
		<-release
		return Allow(), nil
	})

	const callers = 10
	var wg sync.WaitGroup
	verdicts := make([]Verdict, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verdicts[i] = g.Validate(context.Background(), []byte("same payload"))
		}(i)
	}

	// Let all callers pile onto the in-flight computation, then release it.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("decision function called %d times for %d concurrent callers, want 1", got, callers)
	}
	for i, v := range verdicts {
		if v.Decision != DecisionAllow {
			t.Errorf("caller %d got decision %v, want allow", i, v.Decision)
		}
	}
}

func TestGate_Validate_FailureNotCached(t *testing.T) {
	var calls atomic.Int64
	g := newTestGate(t, func(context.Context, Fingerprint, policy.Identity) (Verdict, error) {
		if calls.Add(1) == 1 {
			return Verdict{}, errors.New("rule engine unavailable")
		}
		return Allow(), nil
	})

	input := []byte("payload")

	first := g.Validate(context.Background(), input)
	if first.Decision != DecisionError {
		t.Fatalf("first verdict = %v, want error", first.Decision)
	}
	var derr *DecideError
	if !errors.As(first.Err, &derr) {
		t.Errorf("first verdict err type = %T, want *DecideError", first.Err)
	}

	// The failure must not have been cached: the retry recomputes.
	second := g.Validate(context.Background(), input)
	if second.Decision != DecisionAllow {
		t.Errorf("second verdict = %v, want allow from recomputation", second.Decision)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("decision function called %d times, want 2", got)
	}
}

func TestGate_Validate_RotationInvalidates(t *testing.T) {
	var calls atomic.Int64
	holder := policy.NewHolder("pol-1")

	g := newTestGate(t, func(_ context.Context, _ Fingerprint, id policy.Identity) (Verdict, error) {
		calls.Add(1)
		if id == "pol-1" {
			return Allow(), nil
		}
		return Deny("stricter policy"), nil
	}, func(c *Config) { c.Holder = holder })

	input := []byte("payload")

	if v := g.Validate(context.Background(), input); v.Decision != DecisionAllow {
		t.Fatalf("verdict under pol-1 = %v, want allow", v.Decision)
	}

	holder.Rotate("pol-2")

	// Entries tagged pol-1 must be unreachable; the gate recomputes under
	// the new identity.
	if v := g.Validate(context.Background(), input); v.Decision != DecisionDeny {
		t.Errorf("verdict under pol-2 = %v, want deny from recomputation", v.Decision)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("decision function called %d times, want 2", got)
	}
}

func TestGate_Validate_ComputationTimeout(t *testing.T) {
	g := newTestGate(t, func(ctx context.Context, _ Fingerprint, _ policy.Identity) (Verdict, error) {
		<-ctx.Done()
		return Verdict{}, ctx.Err()
	}, func(c *Config) { c.ComputationTimeout = 50 * time.Millisecond })

	v := g.Validate(context.Background(), []byte("slow payload"))

	if v.Decision != DecisionError {
		t.Fatalf("verdict = %v, want error", v.Decision)
	}
	if !errors.Is(v.Err, ErrComputationTimeout) {
		t.Errorf("verdict err = %v, want ErrComputationTimeout", v.Err)
	}
	if g.CacheLen() != 0 {
		t.Errorf("CacheLen() = %d after timeout, want 0", g.CacheLen())
	}
}

func TestGate_Validate_CallerCancellation(t *testing.T) {
	started := make(chan struct{})
	g := newTestGate(t, func(ctx context.Context, _ Fingerprint, _ policy.Identity) (Verdict, error) {
		close(started)
		<-ctx.Done()
		return Verdict{}, ctx.Err()
	}, func(c *Config) { c.ComputationTimeout = 5 * time.Second })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	v := g.Validate(ctx, []byte("payload"))

	if v.Decision != DecisionError {
		t.Fatalf("verdict = %v, want error on caller cancellation", v.Decision)
	}
	if !errors.Is(v.Err, ErrComputationTimeout) {
		t.Errorf("verdict err = %v, want ErrComputationTimeout", v.Err)
	}
}

type countingMetrics struct {
	hits, misses atomic.Int64
	latencies    atomic.Int64
}

func (m *countingMetrics) RecordHit()  { m.hits.Add(1) }
func (m *countingMetrics) RecordMiss() { m.misses.Add(1) }
func (m *countingMetrics) RecordLatency(time.Duration, Decision) {
	m.latencies.Add(1)
}

func TestGate_Validate_Metrics(t *testing.T) {
	metrics := &countingMetrics{}
	g := newTestGate(t, func(context.Context, Fingerprint, policy.Identity) (Verdict, error) {
		return Allow(), nil
	}, func(c *Config) { c.Metrics = metrics })

	input := []byte("payload")
	g.Validate(context.Background(), input)
	g.Validate(context.Background(), input)
	g.Validate(context.Background(), input)

	if got := metrics.misses.Load(); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := metrics.hits.Load(); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
	if got := metrics.latencies.Load(); got != 3 {
		t.Errorf("latency samples = %d, want 3", got)
	}
}

func TestGate_Validate_Observer(t *testing.T) {
	var mu sync.Mutex
	var results []Result

	g := newTestGate(t, func(context.Context, Fingerprint, policy.Identity) (Verdict, error) {
		return Allow(), nil
	}, func(c *Config) {
		c.Observer = func(r Result) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}
	})

	input := []byte("payload")
	g.Validate(context.Background(), input)
	g.Validate(context.Background(), input)

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 2 {
		t.Fatalf("observer received %d results, want 2", len(results))
	}
	if results[0].CacheHit {
		t.Error("first result CacheHit = true, want false")
	}
	if !results[1].CacheHit {
		t.Error("second result CacheHit = false, want true")
	}
	if results[0].PolicyIdentity != "pol-1" {
		t.Errorf("result identity = %q, want %q", results[0].PolicyIdentity, "pol-1")
	}
	if results[0].Fingerprint != FingerprintBytes(input) {
		t.Errorf("result fingerprint mismatch")
	}
}
