package test

import (
	"context"
	"errors"
	"testing"

	chatgate "github.com/chatgate-io/chatgate"
	"github.com/chatgate-io/chatgate/client/clienttest"
)

// End-to-end pass through the public API only: create, scan, authenticate,
// send, logout, recreate.
func TestGatewayEndToEnd(t *testing.T) {
	factory := clienttest.NewFactory()
	engine, err := chatgate.New().
		WithClientFactory(factory).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()

	if err := engine.CreateSession(ctx, "desk"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := engine.CreateSession(ctx, "desk"); !errors.Is(err, chatgate.ErrSessionExists) {
		t.Fatalf("duplicate create: %v", err)
	}

	fake := factory.Client("desk")
	fake.EmitQR("scan-me")

	payload, err := engine.QR(ctx, "desk")
	if err != nil || payload == "" {
		t.Fatalf("qr = %q, %v", payload, err)
	}

	fake.EmitAuthenticated()

	info, err := engine.Status(ctx, "desk")
	if err != nil || !info.Ready {
		t.Fatalf("status = %+v, %v", info, err)
	}

	if err := engine.SendMessage(ctx, "desk", "15551234567", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent := fake.Sent(); len(sent) != 1 || sent[0].Recipient != "15551234567@c.us" {
		t.Fatalf("dispatch = %+v", sent)
	}

	if err := engine.Logout(ctx, "desk"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := engine.Status(ctx, "desk"); !errors.Is(err, chatgate.ErrSessionNotFound) {
		t.Fatalf("status after logout: %v", err)
	}

	if err := engine.CreateSession(ctx, "desk"); err != nil {
		t.Fatalf("recreate: %v", err)
	}
}
