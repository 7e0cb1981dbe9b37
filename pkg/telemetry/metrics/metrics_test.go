package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/gate"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	cfg := &config.MetricsConfig{Namespace: "ganymede"}
	return NewCollector(cfg, prometheus.NewRegistry())
}

func TestGateMetrics_HitsAndMisses(t *testing.T) {
	c := newTestCollector(t)

	c.Gate().RecordHit()
	c.Gate().RecordHit()
	c.Gate().RecordMiss()

	if got := testutil.ToFloat64(c.Gate().hitsTotal); got != 2 {
		t.Errorf("hits_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Gate().missesTotal); got != 1 {
		t.Errorf("misses_total = %v, want 1", got)
	}
}

func TestGateMetrics_Latency(t *testing.T) {
	c := newTestCollector(t)

	c.Gate().RecordLatency(2*time.Millisecond, gate.DecisionAllow)
	c.Gate().RecordLatency(3*time.Millisecond, gate.DecisionAllow)
	c.Gate().RecordLatency(time.Millisecond, gate.DecisionDeny)

	count := testutil.CollectAndCount(c.Gate().validationDuration, "ganymede_gate_validation_duration_seconds")
	if count != 2 {
		t.Errorf("validation_duration label sets = %d, want 2 (allow, deny)", count)
	}
}

func TestGateMetrics_ImplementsRecorder(t *testing.T) {
	var _ gate.MetricsRecorder = newTestCollector(t).Gate()
}

func TestCacheMetrics(t *testing.T) {
	c := newTestCollector(t)

	c.Cache().SetCapacity(10000)
	c.Cache().RecordEviction()
	c.Cache().RecordEviction()

	if got := testutil.ToFloat64(c.Cache().capacity); got != 10000 {
		t.Errorf("capacity = %v, want 10000", got)
	}
	if got := testutil.ToFloat64(c.Cache().evictionsTotal); got != 2 {
		t.Errorf("evictions_total = %v, want 2", got)
	}
}

func TestCacheMetrics_EntriesTracksSource(t *testing.T) {
	c := newTestCollector(t)

	if got := testutil.ToFloat64(c.Cache().entries); got != 0 {
		t.Errorf("entries before wiring = %v, want 0", got)
	}

	size := 0
	c.Cache().ObserveSize(func() int { return size })

	for _, want := range []int{3, 17, 0} {
		size = want
		if got := testutil.ToFloat64(c.Cache().entries); got != float64(want) {
			t.Errorf("entries = %v, want %d", got, want)
		}
	}
}

func TestPolicyMetrics(t *testing.T) {
	c := newTestCollector(t)

	before := float64(time.Now().Unix())
	c.Policy().RecordRotation()

	if got := testutil.ToFloat64(c.Policy().rotationsTotal); got != 1 {
		t.Errorf("rotations_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Policy().lastRotation); got < before {
		t.Errorf("last_rotation = %v, want >= %v", got, before)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector(t)
	c.Gate().RecordHit()

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !strings.Contains(string(body), "ganymede_gate_cache_hits_total") {
		t.Error("exposition output missing ganymede_gate_cache_hits_total")
	}
}
