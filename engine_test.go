package chatgate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chatgate-io/chatgate/client/clienttest"
)

func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *clienttest.Factory) {
	t.Helper()

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	factory := clienttest.NewFactory()
	engine, err := New().
		WithConfig(cfg).
		WithClientFactory(factory).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, factory
}

// authenticate drives the fake through qr + authenticated so the session can
// send.
func authenticate(t *testing.T, factory *clienttest.Factory, id string) *clienttest.Fake {
	t.Helper()

	fake := factory.Client(id)
	if fake == nil {
		t.Fatalf("no client constructed for %q", id)
	}
	fake.EmitQR("raw-code")
	fake.EmitAuthenticated()
	return fake
}

func TestCreateSessionValidation(t *testing.T) {
	engine, factory := newTestEngine(t, nil)

	if err := engine.CreateSession(context.Background(), ""); !errors.Is(err, ErrSessionIDRequired) {
		t.Fatalf("expected ErrSessionIDRequired, got %v", err)
	}
	if factory.Created() != 0 {
		t.Fatalf("validation failure constructed %d clients", factory.Created())
	}
}

func TestCreateSessionDuplicateNoSecondClient(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := engine.CreateSession(ctx, "a"); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}

	if factory.Created() != 1 {
		t.Fatalf("duplicate create constructed a second client: %d", factory.Created())
	}
	if len(factory.All("a")) != 1 {
		t.Fatalf("expected one client for id, got %d", len(factory.All("a")))
	}
}

func TestCreateSessionInitializesClient(t *testing.T) {
	engine, factory := newTestEngine(t, nil)

	if err := engine.CreateSession(context.Background(), "a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	fake := factory.Client("a")
	if fake == nil || !fake.Initialized() {
		t.Fatal("client was not initialized")
	}

	info, err := engine.Status(context.Background(), "a")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if info.Status != "pending" || info.Ready || info.QR != "" {
		t.Fatalf("fresh session not pending/empty: %+v", info)
	}
}

func TestCreateSessionFactoryFailureStillSucceeds(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	factory.NewErr = errors.New("chrome refused to start")

	// Observed upstream contract: the caller still gets a success and the
	// session stays pending forever.
	if err := engine.CreateSession(context.Background(), "a"); err != nil {
		t.Fatalf("expected success despite factory failure, got %v", err)
	}

	info, err := engine.Status(context.Background(), "a")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if info.Status != "pending" {
		t.Fatalf("expected stuck pending, got %q", info.Status)
	}

	// But the stuck session is not sendable.
	err = engine.SendMessage(context.Background(), "a", "15551234567", "hi")
	if !errors.Is(err, ErrSessionNotReady) {
		t.Fatalf("expected ErrSessionNotReady, got %v", err)
	}
}

func TestCreateSessionInitFailureStillSucceeds(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	factory.InitErr = errors.New("sidecar unreachable")

	if err := engine.CreateSession(context.Background(), "a"); err != nil {
		t.Fatalf("expected success despite init failure, got %v", err)
	}
	info, err := engine.Status(context.Background(), "a")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if info.Status != "pending" {
		t.Fatalf("expected stuck pending, got %q", info.Status)
	}
}

func TestStatusUnknownSession(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	if _, err := engine.Status(context.Background(), "ghost"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestQRVisibility(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := engine.QR(ctx, "a"); !errors.Is(err, ErrQRNotAvailable) {
		t.Fatalf("expected ErrQRNotAvailable before scan code, got %v", err)
	}

	fake := factory.Client("a")
	fake.EmitQR("raw-code")

	payload, err := engine.QR(ctx, "a")
	if err != nil {
		t.Fatalf("qr after event: %v", err)
	}
	// Hosted mode url-encodes the raw code into the image reference.
	if !strings.Contains(payload, "api.qrserver.com") || !strings.Contains(payload, "data=raw-code") {
		t.Fatalf("expected hosted image url, got %q", payload)
	}

	fake.EmitAuthenticated()
	if _, err := engine.QR(ctx, "a"); !errors.Is(err, ErrQRNotAvailable) {
		t.Fatalf("expected ErrQRNotAvailable after authentication, got %v", err)
	}

	if _, err := engine.QR(ctx, "ghost"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSendMessageAppendsSuffix(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fake := authenticate(t, factory, "a")

	if err := engine.SendMessage(ctx, "a", "15551234567", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	sent := fake.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(sent))
	}
	if sent[0].Recipient != "15551234567@c.us" {
		t.Fatalf("recipient = %q, want %q", sent[0].Recipient, "15551234567@c.us")
	}
	if sent[0].Text != "hello" {
		t.Fatalf("text = %q", sent[0].Text)
	}
}

func TestSendMessageSuffixedNumberPassesThrough(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fake := authenticate(t, factory, "a")

	if err := engine.SendMessage(ctx, "a", "15551234567@c.us", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	sent := fake.Sent()
	if sent[0].Recipient != "15551234567@c.us" {
		t.Fatalf("recipient = %q, want passthrough", sent[0].Recipient)
	}
}

func TestSendMessageNotReadyNoSideEffect(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fake := factory.Client("a")
	fake.EmitQR("raw-code") // awaiting scan, still not ready

	err := engine.SendMessage(ctx, "a", "15551234567", "hello")
	if !errors.Is(err, ErrSessionNotReady) {
		t.Fatalf("expected ErrSessionNotReady, got %v", err)
	}
	if len(fake.Sent()) != 0 {
		t.Fatal("send reached the client before authentication")
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	err := engine.SendMessage(context.Background(), "ghost", "15551234567", "hello")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSendMessageValidation(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SendMessage(ctx, "", "1", "m"); !errors.Is(err, ErrSessionIDRequired) {
		t.Fatalf("expected ErrSessionIDRequired, got %v", err)
	}
	if err := engine.SendMessage(ctx, "a", "", "m"); !errors.Is(err, ErrRecipientRequired) {
		t.Fatalf("expected ErrRecipientRequired, got %v", err)
	}
	if err := engine.SendMessage(ctx, "a", "1", ""); !errors.Is(err, ErrMessageRequired) {
		t.Fatalf("expected ErrMessageRequired, got %v", err)
	}
}

func TestSendMessageUpstreamFailure(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fake := authenticate(t, factory, "a")
	fake.SendErr = errors.New("connection reset")

	err := engine.SendMessage(ctx, "a", "15551234567", "hello")
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("upstream detail lost: %v", err)
	}
}

func TestLogoutRemovesSessionAndFreesID(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fake := authenticate(t, factory, "a")

	if err := engine.Logout(ctx, "a"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !fake.LoggedOut() || !fake.Destroyed() {
		t.Fatal("client not released")
	}

	if _, err := engine.Status(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}

	// The id is free again and starts a fresh state machine.
	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("recreate after logout: %v", err)
	}
	info, err := engine.Status(ctx, "a")
	if err != nil {
		t.Fatalf("status after recreate: %v", err)
	}
	if info.Status != "pending" {
		t.Fatalf("recreated session not fresh: %+v", info)
	}
	if factory.Created() != 2 {
		t.Fatalf("expected 2 clients total, got %d", factory.Created())
	}
}

func TestLogoutUnknownSession(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	if err := engine.Logout(context.Background(), "ghost"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestLogoutFailureKeepsSession(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fake := authenticate(t, factory, "a")
	fake.LogoutErr = errors.New("network error")

	err := engine.Logout(ctx, "a")
	if !errors.Is(err, ErrLogoutFailed) {
		t.Fatalf("expected ErrLogoutFailed, got %v", err)
	}

	// Logout never confirmed, so the session must survive.
	if _, err := engine.Status(ctx, "a"); err != nil {
		t.Fatalf("session vanished after failed logout: %v", err)
	}
}

func TestLogoutDestroyFailureStillRemoves(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fake := authenticate(t, factory, "a")
	fake.DestroyErr = errors.New("browser wedged")

	err := engine.Logout(ctx, "a")
	if !errors.Is(err, ErrDestroyFailed) {
		t.Fatalf("expected ErrDestroyFailed, got %v", err)
	}

	// Removal is the final unconditional step once logout confirmed.
	if _, err := engine.Status(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("teardown failure rolled back removal: %v", err)
	}
}

func TestDisconnectedRemovesSession(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fake := authenticate(t, factory, "a")

	fake.EmitDisconnected("phone offline")

	if _, err := engine.Status(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after disconnect, got %v", err)
	}
}

func TestStaleClientCannotTouchSuccessor(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	old := factory.Client("a")

	if err := engine.Logout(ctx, "a"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := engine.CreateSession(ctx, "a"); err != nil {
		t.Fatalf("recreate: %v", err)
	}

	// Events from the first client's lifetime arrive late.
	old.EmitQR("stale-code")
	old.EmitAuthenticated()
	old.EmitDisconnected("late")

	info, err := engine.Status(ctx, "a")
	if err != nil {
		t.Fatalf("successor session gone: %v", err)
	}
	if info.Status != "pending" || info.QR != "" {
		t.Fatalf("stale events mutated successor: %+v", info)
	}
}

func TestSessionsListing(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		if err := engine.CreateSession(ctx, id); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	authenticate(t, factory, "a")

	infos := engine.Sessions(ctx)
	if len(infos) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(infos))
	}
	if infos[0].ID != "a" || infos[1].ID != "b" {
		t.Fatalf("listing not sorted: %v, %v", infos[0].ID, infos[1].ID)
	}
	if !infos[0].Ready || infos[1].Ready {
		t.Fatalf("readiness wrong: %+v", infos)
	}
}

func TestMetricsCountOperations(t *testing.T) {
	engine, factory := newTestEngine(t, nil)
	ctx := context.Background()

	_ = engine.CreateSession(ctx, "a")
	_ = engine.CreateSession(ctx, "a") // duplicate
	authenticate(t, factory, "a")
	_ = engine.SendMessage(ctx, "a", "1555", "hi")
	_ = engine.Logout(ctx, "a")

	snap := engine.MetricsSnapshot()
	expect := map[MetricID]uint64{
		MetricSessionCreated:       1,
		MetricSessionDuplicate:     1,
		MetricQRIssued:             1,
		MetricSessionAuthenticated: 1,
		MetricMessageSent:          1,
		MetricLogoutSuccess:        1,
	}
	for id, want := range expect {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("%s = %d, want %d", id, got, want)
		}
	}
}

func TestNormalizeRecipient(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"15551234567", "15551234567@c.us"},
		{"15551234567@c.us", "15551234567@c.us"},
		// Containment, not suffix: mirrors the upstream check exactly.
		{"x@c.usy", "x@c.usy"},
	}
	for _, tc := range cases {
		if got := normalizeRecipient(tc.in, "@c.us"); got != tc.want {
			t.Fatalf("normalizeRecipient(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
