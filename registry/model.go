package registry

import "time"

// Status is the lifecycle stage of a session. Destruction has no status of
// its own: a destroyed session is simply absent from the store.
type Status uint8

const (
	// StatusPending means the client is initializing and no scan code has
	// been issued yet.
	StatusPending Status = iota
	// StatusAwaitingScan means a scan code is available and waiting to be
	// scanned out of band.
	StatusAwaitingScan
	// StatusAuthenticated means the scan was accepted and the session can
	// send messages.
	StatusAuthenticated
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAwaitingScan:
		return "awaiting_scan"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a snapshot of one registry entry. Snapshots are copies; mutating
// one has no effect on the store.
type Session struct {
	// ID is the caller-supplied identifier. Never generated internally.
	ID string

	// Instance identifies the client instance owning this entry. A reused id
	// gets a fresh instance, which is what keeps stale events inert.
	Instance string

	Status Status

	// QR is the rendered scan-code payload. Non-empty only while
	// StatusAwaitingScan.
	QR string

	CreatedAt       time.Time
	AuthenticatedAt time.Time
}
