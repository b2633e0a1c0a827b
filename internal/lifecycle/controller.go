package lifecycle

import (
	"context"
	"time"

	"github.com/chatgate-io/chatgate/client"
	"github.com/chatgate-io/chatgate/qr"
	"github.com/chatgate-io/chatgate/registry"
)

// Deps captures controller dependencies. Store and Render are required; the
// callbacks are optional and may be nil.
type Deps struct {
	Store  *registry.Store
	Render qr.Renderer

	// OnQR fires after a scan-code payload was stored for the session.
	OnQR func(ctx context.Context, id string)

	// OnAuthenticated fires once per actual transition to authenticated.
	// A ready event that follows an authenticated event does not re-fire.
	OnAuthenticated func(ctx context.Context, id string)

	// OnDisconnected fires after the session was removed from the registry.
	OnDisconnected func(ctx context.Context, id, reason string)

	// OnIgnored fires for events that did not apply: unknown id, stale
	// instance, or a scan code arriving after authentication.
	OnIgnored func(ctx context.Context, id string, ev client.Event)

	// OnRenderError fires when a scan code could not be rendered. The event
	// is dropped; the session keeps its previous payload.
	OnRenderError func(ctx context.Context, id string, err error)

	// Destroy tears down the client of a disconnected session. Optional;
	// typically releases resources on a background goroutine.
	Destroy func(ctx context.Context, cl client.Client)

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Controller applies client events to the registry. One controller serves
// all sessions; per-session identity travels in the bound sink.
type Controller struct {
	deps Deps
}

// New returns a controller over the given dependencies.
func New(deps Deps) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{deps: deps}
}

// Bind returns the event sink for one session instance. The id and instance
// are captured explicitly so every event is attributed even when the entry
// is long gone.
func (c *Controller) Bind(id, instance string) client.EventSink {
	return client.EventSinkFunc(func(ctx context.Context, ev client.Event) {
		c.handle(ctx, id, instance, ev)
	})
}

func (c *Controller) handle(ctx context.Context, id, instance string, ev client.Event) {
	switch ev.Kind {
	case client.EventQR:
		payload, err := c.deps.Render.Render(ev.Code)
		if err != nil {
			if c.deps.OnRenderError != nil {
				c.deps.OnRenderError(ctx, id, err)
			}
			return
		}
		if !c.deps.Store.SetQR(id, instance, payload) {
			c.ignored(ctx, id, ev)
			return
		}
		if c.deps.OnQR != nil {
			c.deps.OnQR(ctx, id)
		}

	case client.EventAuthenticated, client.EventReady:
		changed, ok := c.deps.Store.MarkAuthenticated(id, instance, c.deps.Now())
		if !ok {
			c.ignored(ctx, id, ev)
			return
		}
		if changed && c.deps.OnAuthenticated != nil {
			c.deps.OnAuthenticated(ctx, id)
		}

	case client.EventDisconnected:
		cl, ok := c.deps.Store.RemoveInstance(id, instance)
		if !ok {
			c.ignored(ctx, id, ev)
			return
		}
		if cl != nil && c.deps.Destroy != nil {
			c.deps.Destroy(ctx, cl)
		}
		if c.deps.OnDisconnected != nil {
			c.deps.OnDisconnected(ctx, id, ev.Reason)
		}

	default:
		c.ignored(ctx, id, ev)
	}
}

func (c *Controller) ignored(ctx context.Context, id string, ev client.Event) {
	if c.deps.OnIgnored != nil {
		c.deps.OnIgnored(ctx, id, ev)
	}
}
