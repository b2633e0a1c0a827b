package client

import "context"

// EventKind enumerates the lifecycle events a messaging client emits.
type EventKind uint8

const (
	// EventQR carries a fresh raw scan code. It may fire repeatedly before
	// authentication, e.g. when a code expires unscanned.
	EventQR EventKind = iota
	// EventAuthenticated fires when the scan was accepted.
	EventAuthenticated
	// EventReady fires when the client is fully usable. Some transports emit
	// it after EventAuthenticated, some emit only one of the two.
	EventReady
	// EventDisconnected fires on unexpected session termination.
	EventDisconnected
)

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventQR:
		return "qr"
	case EventAuthenticated:
		return "authenticated"
	case EventReady:
		return "ready"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is a single lifecycle notification from a messaging client.
type Event struct {
	Kind EventKind

	// Code is the raw scan code. Set only for EventQR.
	Code string

	// Reason describes why the session ended. Set only for EventDisconnected.
	Reason string
}

// EventSink receives lifecycle events for one session. Implementations must
// tolerate events arriving after the session was destroyed.
type EventSink interface {
	Handle(ctx context.Context, ev Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, ev Event)

// Handle calls f.
func (f EventSinkFunc) Handle(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// Client is one connection to the messaging network. A Client is owned by
// exactly one session and is never shared.
type Client interface {
	// Initialize begins authentication. It returns once initialization has
	// been scheduled; progress is reported through the EventSink the client
	// was constructed with. It must not block until authentication completes.
	Initialize(ctx context.Context) error

	// SendMessage dispatches text to a normalized recipient address. It fails
	// when the client is not authenticated.
	SendMessage(ctx context.Context, recipient, text string) error

	// Logout releases the authenticated session with the messaging network.
	Logout(ctx context.Context) error

	// Destroy releases underlying resources. Logout and Destroy may fail
	// independently.
	Destroy(ctx context.Context) error
}

// Factory builds one Client per session. Implementations deliver all of the
// client's lifecycle events to the given sink.
type Factory interface {
	New(ctx context.Context, sessionID string, sink EventSink) (Client, error)
}
