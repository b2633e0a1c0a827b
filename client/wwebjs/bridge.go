package wwebjs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chatgate-io/chatgate/client"
)

const (
	// Time allowed to write a message to the sidecar.
	defaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the sidecar.
	defaultPongWait = 60 * time.Second

	// Maximum envelope size allowed from the sidecar.
	defaultMaxMessageSize = 64 * 1024

	defaultHandshakeTimeout = 15 * time.Second
)

// ErrBridgeClosed is returned by commands issued after the connection died.
var ErrBridgeClosed = errors.New("bridge connection closed")

// Config holds sidecar connection parameters.
type Config struct {
	// BaseURL is the sidecar's WebSocket root, e.g. ws://localhost:8466.
	// The per-session endpoint is BaseURL + /session/<id>.
	BaseURL string

	HandshakeTimeout time.Duration
	WriteWait        time.Duration
	PongWait         time.Duration
	MaxMessageSize   int64
}

func (c Config) withDefaults() Config {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	return c
}

// Factory dials one sidecar connection per session.
type Factory struct {
	cfg Config
}

// NewFactory returns a factory for the given sidecar.
func NewFactory(cfg Config) (*Factory, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("sidecar base url required")
	}
	return &Factory{cfg: cfg.withDefaults()}, nil
}

// New implements [client.Factory]. It dials the sidecar's per-session
// endpoint and starts the read pump; events flow to sink until the
// connection dies.
func (f *Factory) New(ctx context.Context, sessionID string, sink client.EventSink) (client.Client, error) {
	endpoint := f.cfg.BaseURL + "/session/" + url.PathEscape(sessionID)

	dialer := websocket.Dialer{HandshakeTimeout: f.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial sidecar: %w", err)
	}

	b := &Bridge{
		cfg:       f.cfg,
		sessionID: sessionID,
		conn:      conn,
		sink:      sink,
		pending:   make(map[string]chan frame),
		done:      make(chan struct{}),
	}

	go b.readLoop()
	go b.pingLoop()

	return b, nil
}

// frame is the JSON envelope in both directions.
type frame struct {
	Type   string `json:"type,omitempty"`
	ID     string `json:"id,omitempty"`
	Event  string `json:"event,omitempty"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
	Action string `json:"action,omitempty"`
	To     string `json:"to,omitempty"`
	Body   string `json:"body,omitempty"`
	OK     bool   `json:"ok,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Bridge is one live sidecar connection implementing [client.Client].
type Bridge struct {
	cfg       Config
	sessionID string
	conn      *websocket.Conn
	sink      client.EventSink

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan frame

	done          chan struct{}
	closeOnce     sync.Once
	destroying    atomic.Bool
	sawDisconnect atomic.Bool
}

// Initialize schedules authentication on the sidecar. It returns after the
// init command is on the wire; all progress arrives as events.
func (b *Bridge) Initialize(ctx context.Context) error {
	return b.writeFrame(frame{Action: "init"})
}

// SendMessage dispatches text through the sidecar and waits for the result.
func (b *Bridge) SendMessage(ctx context.Context, recipient, text string) error {
	res, err := b.call(ctx, frame{Action: "send", To: recipient, Body: text})
	if err != nil {
		return err
	}
	if !res.OK {
		return errors.New(res.Error)
	}
	return nil
}

// Logout releases the authenticated session on the sidecar.
func (b *Bridge) Logout(ctx context.Context) error {
	res, err := b.call(ctx, frame{Action: "logout"})
	if err != nil {
		return err
	}
	if !res.OK {
		return errors.New(res.Error)
	}
	return nil
}

// Destroy tells the sidecar to release browser resources and closes the
// connection. The close error is not reported; the destroy command's
// delivery is.
func (b *Bridge) Destroy(ctx context.Context) error {
	b.destroying.Store(true)
	err := b.writeFrame(frame{Action: "destroy"})
	b.shutdown()
	if err != nil && !errors.Is(err, ErrBridgeClosed) {
		return err
	}
	return nil
}

// call runs one correlated request/response exchange.
func (b *Bridge) call(ctx context.Context, f frame) (frame, error) {
	f.ID = uuid.NewString()

	ch := make(chan frame, 1)
	b.pendingMu.Lock()
	b.pending[f.ID] = ch
	b.pendingMu.Unlock()

	defer func() {
		b.pendingMu.Lock()
		delete(b.pending, f.ID)
		b.pendingMu.Unlock()
	}()

	if err := b.writeFrame(f); err != nil {
		return frame{}, err
	}

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return frame{}, ctx.Err()
	case <-b.done:
		return frame{}, ErrBridgeClosed
	}
}

func (b *Bridge) writeFrame(f frame) error {
	select {
	case <-b.done:
		return ErrBridgeClosed
	default:
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	_ = b.conn.SetWriteDeadline(time.Now().Add(b.cfg.WriteWait))
	if err := b.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("write to sidecar: %w", err)
	}
	return nil
}

func (b *Bridge) readLoop() {
	b.conn.SetReadLimit(b.cfg.MaxMessageSize)
	_ = b.conn.SetReadDeadline(time.Now().Add(b.cfg.PongWait))
	b.conn.SetPongHandler(func(string) error {
		return b.conn.SetReadDeadline(time.Now().Add(b.cfg.PongWait))
	})

	for {
		var f frame
		if err := b.conn.ReadJSON(&f); err != nil {
			b.shutdown()
			// A torn connection is a disconnect unless the sidecar already
			// said so, or we initiated the teardown ourselves.
			if !b.destroying.Load() && !b.sawDisconnect.Load() {
				b.sink.Handle(context.Background(), client.Event{
					Kind:   client.EventDisconnected,
					Reason: err.Error(),
				})
			}
			return
		}

		switch f.Type {
		case "result":
			b.pendingMu.Lock()
			ch, ok := b.pending[f.ID]
			b.pendingMu.Unlock()
			if ok {
				ch <- f
			}

		case "event":
			b.dispatchEvent(f)
		}
	}
}

func (b *Bridge) dispatchEvent(f frame) {
	ctx := context.Background()
	switch f.Event {
	case "qr":
		b.sink.Handle(ctx, client.Event{Kind: client.EventQR, Code: f.Code})
	case "authenticated":
		b.sink.Handle(ctx, client.Event{Kind: client.EventAuthenticated})
	case "ready":
		b.sink.Handle(ctx, client.Event{Kind: client.EventReady})
	case "disconnected":
		b.sawDisconnect.Store(true)
		b.sink.Handle(ctx, client.Event{Kind: client.EventDisconnected, Reason: f.Reason})
	}
}

func (b *Bridge) pingLoop() {
	ticker := time.NewTicker(b.cfg.PongWait * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.writeMu.Lock()
			err := b.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(b.cfg.WriteWait))
			b.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-b.done:
			return
		}
	}
}

// shutdown closes the connection and fails all pending calls. Idempotent.
func (b *Bridge) shutdown() {
	b.closeOnce.Do(func() {
		close(b.done)
		_ = b.conn.Close()
	})
}
