package chatgate

import "sync/atomic"

// MetricID defines a public type used by chatgate APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricSessionCreated is an exported constant or variable used by the gateway engine.
	MetricSessionCreated MetricID = iota
	// MetricSessionDuplicate is an exported constant or variable used by the gateway engine.
	MetricSessionDuplicate
	// MetricSessionAuthenticated is an exported constant or variable used by the gateway engine.
	MetricSessionAuthenticated
	// MetricQRIssued is an exported constant or variable used by the gateway engine.
	MetricQRIssued
	// MetricSessionDisconnected is an exported constant or variable used by the gateway engine.
	MetricSessionDisconnected
	// MetricSessionExpired is an exported constant or variable used by the gateway engine.
	MetricSessionExpired
	// MetricStaleEventIgnored is an exported constant or variable used by the gateway engine.
	MetricStaleEventIgnored
	// MetricMessageSent is an exported constant or variable used by the gateway engine.
	MetricMessageSent
	// MetricMessageFailed is an exported constant or variable used by the gateway engine.
	MetricMessageFailed
	// MetricLogoutSuccess is an exported constant or variable used by the gateway engine.
	MetricLogoutSuccess
	// MetricLogoutFailure is an exported constant or variable used by the gateway engine.
	MetricLogoutFailure
	// MetricRateLimited is an exported constant or variable used by the gateway engine.
	MetricRateLimited
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricSessionCreated:       "session_created",
	MetricSessionDuplicate:     "session_duplicate",
	MetricSessionAuthenticated: "session_authenticated",
	MetricQRIssued:             "qr_issued",
	MetricSessionDisconnected:  "session_disconnected",
	MetricSessionExpired:       "session_expired",
	MetricStaleEventIgnored:    "stale_event_ignored",
	MetricMessageSent:          "message_sent",
	MetricMessageFailed:        "message_failed",
	MetricLogoutSuccess:        "logout_success",
	MetricLogoutFailure:        "logout_failure",
	MetricRateLimited:          "rate_limited",
}

// String returns the snake_case metric name.
func (id MetricID) String() string {
	if id >= metricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by chatgate APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot defines a public type used by chatgate APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics may return an error when input validation, dependency calls, or security checks fail.
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

// Enabled describes the enabled operation and its observable behavior.
//
// Enabled may return an error when input validation, dependency calls, or security checks fail.
// Enabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc describes the inc operation and its observable behavior.
//
// Inc may return an error when input validation, dependency calls, or security checks fail.
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value describes the value operation and its observable behavior.
//
// Value may return an error when input validation, dependency calls, or security checks fail.
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, metricIDCount),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
