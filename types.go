package chatgate

import (
	"time"

	"github.com/chatgate-io/chatgate/registry"
)

// SessionInfo is returned by [Engine.Status] and [Engine.Sessions]. It is a
// point-in-time snapshot; a later lifecycle event is only visible on the
// next poll.
type SessionInfo struct {
	ID string

	// Status is the internal lifecycle stage name: "pending",
	// "awaiting_scan", or "authenticated".
	Status string

	// Ready reports whether the session authenticated and can send.
	Ready bool

	// QR is the rendered scan-code payload, empty unless a scan is pending.
	// Callers must treat it as an opaque displayable reference.
	QR string

	CreatedAt       time.Time
	AuthenticatedAt time.Time
}

func sessionInfo(sess registry.Session) SessionInfo {
	return SessionInfo{
		ID:              sess.ID,
		Status:          sess.Status.String(),
		Ready:           sess.Status == registry.StatusAuthenticated,
		QR:              sess.QR,
		CreatedAt:       sess.CreatedAt,
		AuthenticatedAt: sess.AuthenticatedAt,
	}
}
