package goGuard

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricEvaluateAuthorized)

	if got := m.Value(MetricEvaluateAuthorized); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricEvaluateAuthorized)
	m.Inc(MetricEvaluateAuthorized)
	m.Inc(MetricEvaluateAuthorized)

	if got := m.Value(MetricEvaluateAuthorized); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricEvaluateRedirectLogin)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricEvaluateRedirectLogin); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricEvaluateLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricEvaluateLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricEvaluateAuthorized)
	m.Inc(MetricEvaluateRedirectLogin)
	m.Inc(MetricEvaluateRedirectLogin)
	m.Observe(MetricEvaluateLatency, 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.Counters[MetricEvaluateAuthorized] != 1 {
		t.Fatalf("expected MetricEvaluateAuthorized=1 got %d", snap.Counters[MetricEvaluateAuthorized])
	}
	if snap.Counters[MetricEvaluateRedirectLogin] != 2 {
		t.Fatalf("expected MetricEvaluateRedirectLogin=2 got %d", snap.Counters[MetricEvaluateRedirectLogin])
	}
	if len(snap.Histograms[MetricEvaluateLatency]) != 8 {
		t.Fatalf("expected histogram length 8")
	}
	if snap.Histograms[MetricEvaluateLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricEvaluateLatency][0])
	}
}

func TestEvaluateWithMetricsStillAvoidsSessionMutation(t *testing.T) {
	h := newStubSession(authedSnapshot(activeProfile("student")))
	guard, _ := newTestGuard(t, FailClosedConfig(), h)

	for i := 0; i < 5; i++ {
		d := guard.Evaluate(context.Background(), Request{Location: "/notes"})
		if d.Outcome != OutcomeRender {
			t.Fatalf("expected render, got %v", d.Outcome)
		}
	}

	inits, logouts := h.calls()
	if inits != 0 || logouts != 0 {
		t.Fatalf("expected instrumented evaluate to leave the session alone, got init=%d logout=%d", inits, logouts)
	}
}
