package chatgate

import (
	"sync"
	"testing"
)

func TestMetricsDisabledIgnoresInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricSessionCreated)
	if m.Value(MetricSessionCreated) != 0 {
		t.Fatal("disabled metrics counted")
	}
	if m.Enabled() {
		t.Fatal("Enabled() true for disabled metrics")
	}
}

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricSessionCreated)
	m.Inc(MetricSessionCreated)
	m.Inc(MetricMessageSent)

	if got := m.Value(MetricSessionCreated); got != 2 {
		t.Fatalf("session_created = %d, want 2", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricSessionCreated] != 2 || snap.Counters[MetricMessageSent] != 1 {
		t.Fatalf("snapshot mismatch: %v", snap.Counters)
	}
	if snap.Counters[MetricLogoutFailure] != 0 {
		t.Fatalf("untouched counter nonzero: %v", snap.Counters)
	}
	if len(snap.Counters) != int(metricIDCount) {
		t.Fatalf("snapshot has %d entries, want %d", len(snap.Counters), metricIDCount)
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 16
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricMessageSent)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricMessageSent); got != workers*perWorker {
		t.Fatalf("message_sent = %d, want %d", got, workers*perWorker)
	}
}

func TestMetricIDString(t *testing.T) {
	cases := map[MetricID]string{
		MetricSessionCreated:    "session_created",
		MetricQRIssued:          "qr_issued",
		MetricMessageFailed:     "message_failed",
		MetricRateLimited:       "rate_limited",
		metricIDCount:           "unknown",
		metricIDCount + 1000:    "unknown",
		MetricSessionExpired:    "session_expired",
		MetricLogoutSuccess:     "logout_success",
		MetricStaleEventIgnored: "stale_event_ignored",
	}
	for id, want := range cases {
		if got := id.String(); got != want {
			t.Fatalf("MetricID(%d).String() = %q, want %q", id, got, want)
		}
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics

	m.Inc(MetricSessionCreated)
	if m.Value(MetricSessionCreated) != 0 {
		t.Fatal("nil metrics returned a value")
	}
	if m.Enabled() {
		t.Fatal("nil metrics enabled")
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatal("nil metrics produced counters")
	}
}
