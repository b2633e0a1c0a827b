package clienttest

import (
	"context"
	"sync"

	"github.com/chatgate-io/chatgate/client"
)

// SentMessage records one SendMessage call.
type SentMessage struct {
	Recipient string
	Text      string
}

// Factory builds [Fake] clients and remembers every client it built, keyed
// by session id in construction order.
type Factory struct {
	mu      sync.Mutex
	clients map[string][]*Fake
	created int

	// NewErr, when set, makes New fail without constructing a client.
	NewErr error
	// InitErr is copied onto every constructed client.
	InitErr error
}

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{
		clients: make(map[string][]*Fake),
	}
}

// New implements [client.Factory].
func (f *Factory) New(ctx context.Context, sessionID string, sink client.EventSink) (client.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.NewErr != nil {
		return nil, f.NewErr
	}

	c := &Fake{
		sessionID: sessionID,
		sink:      sink,
		initErr:   f.InitErr,
	}
	f.clients[sessionID] = append(f.clients[sessionID], c)
	f.created++
	return c, nil
}

// Created returns the total number of clients constructed.
func (f *Factory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// Client returns the most recently constructed client for the session id.
func (f *Factory) Client(sessionID string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := f.clients[sessionID]
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// All returns every client constructed for the session id, oldest first.
func (f *Factory) All(sessionID string) []*Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Fake(nil), f.clients[sessionID]...)
}

// Fake is a scripted messaging client.
type Fake struct {
	sessionID string
	sink      client.EventSink

	mu          sync.Mutex
	initialized bool
	loggedOut   bool
	destroyed   bool
	sent        []SentMessage

	initErr error

	// SendErr, LogoutErr, DestroyErr fail the corresponding call when set.
	SendErr    error
	LogoutErr  error
	DestroyErr error
}

// Initialize implements [client.Client]. The fake never emits events on its
// own; tests drive the lifecycle with the Emit helpers.
func (c *Fake) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initErr != nil {
		return c.initErr
	}
	c.initialized = true
	return nil
}

// SendMessage implements [client.Client].
func (c *Fake) SendMessage(ctx context.Context, recipient, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.sent = append(c.sent, SentMessage{Recipient: recipient, Text: text})
	return nil
}

// Logout implements [client.Client].
func (c *Fake) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.LogoutErr != nil {
		return c.LogoutErr
	}
	c.loggedOut = true
	return nil
}

// Destroy implements [client.Client].
func (c *Fake) Destroy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DestroyErr != nil {
		return c.DestroyErr
	}
	c.destroyed = true
	return nil
}

// EmitQR delivers a qr event carrying the raw code.
func (c *Fake) EmitQR(code string) {
	c.sink.Handle(context.Background(), client.Event{Kind: client.EventQR, Code: code})
}

// EmitAuthenticated delivers an authenticated event.
func (c *Fake) EmitAuthenticated() {
	c.sink.Handle(context.Background(), client.Event{Kind: client.EventAuthenticated})
}

// EmitReady delivers a ready event.
func (c *Fake) EmitReady() {
	c.sink.Handle(context.Background(), client.Event{Kind: client.EventReady})
}

// EmitDisconnected delivers a disconnected event.
func (c *Fake) EmitDisconnected(reason string) {
	c.sink.Handle(context.Background(), client.Event{Kind: client.EventDisconnected, Reason: reason})
}

// SessionID returns the session id the client was built for.
func (c *Fake) SessionID() string {
	return c.sessionID
}

// Initialized reports whether Initialize succeeded.
func (c *Fake) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// LoggedOut reports whether Logout succeeded.
func (c *Fake) LoggedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedOut
}

// Destroyed reports whether Destroy succeeded.
func (c *Fake) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Sent returns a copy of all dispatched messages.
func (c *Fake) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage(nil), c.sent...)
}
