package chatgate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chatgate-io/chatgate/client"
	"github.com/chatgate-io/chatgate/qr"
)

type nopFactory struct{}

func (nopFactory) New(context.Context, string, client.EventSink) (client.Client, error) {
	return nopClient{}, nil
}

type nopClient struct{}

func (nopClient) Initialize(context.Context) error                  { return nil }
func (nopClient) SendMessage(context.Context, string, string) error { return nil }
func (nopClient) Logout(context.Context) error                      { return nil }
func (nopClient) Destroy(context.Context) error                     { return nil }

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Fatalf("port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.QR.Mode != qr.ModeHosted || cfg.QR.Size != 300 {
		t.Fatalf("qr defaults wrong: %+v", cfg.QR)
	}
	if cfg.Messaging.AddressSuffix != "@c.us" {
		t.Fatalf("address suffix = %q", cfg.Messaging.AddressSuffix)
	}
	if cfg.Session.PendingTTL != 0 {
		t.Fatal("session expiry must be off by default")
	}
	if cfg.RateLimit.Enabled {
		t.Fatal("rate limiting must be off by default")
	}
	if cfg.Guard.Enabled {
		t.Fatal("guard must be off by default")
	}
	if !cfg.Audit.Enabled || !cfg.Audit.DropIfFull {
		t.Fatalf("audit defaults wrong: %+v", cfg.Audit)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantSub: "port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantSub: "port",
		},
		{
			name:    "unknown qr mode",
			mutate:  func(c *Config) { c.QR.Mode = "ascii" },
			wantSub: "qr mode",
		},
		{
			name: "hosted without base url",
			mutate: func(c *Config) {
				c.QR.Mode = qr.ModeHosted
				c.QR.HostedBaseURL = ""
			},
			wantSub: "base url",
		},
		{
			name:    "qr size",
			mutate:  func(c *Config) { c.QR.Size = 0 },
			wantSub: "size",
		},
		{
			name:    "missing suffix",
			mutate:  func(c *Config) { c.Messaging.AddressSuffix = "" },
			wantSub: "suffix",
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.Session.PendingTTL = -time.Second },
			wantSub: "ttl",
		},
		{
			name: "ttl without sweep interval",
			mutate: func(c *Config) {
				c.Session.PendingTTL = time.Hour
				c.Session.SweepInterval = 0
			},
			wantSub: "sweep interval",
		},
		{
			name: "rate limit zero create budget",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.MaxCreatePerWindow = 0
			},
			wantSub: "create budget",
		},
		{
			name: "rate limit zero send window",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.SendWindow = 0
			},
			wantSub: "send budget",
		},
		{
			name:    "guard without secret",
			mutate:  func(c *Config) { c.Guard.Enabled = true },
			wantSub: "secret",
		},
		{
			name:    "negative audit buffer",
			mutate:  func(c *Config) { c.Audit.BufferSize = -1 },
			wantSub: "buffer",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestInlineModeNeedsNoBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QR.Mode = qr.ModeInline
	cfg.QR.HostedBaseURL = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("inline mode should not require a base url: %v", err)
	}
}

func TestBuilderRejectsMisuse(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error without a client factory")
	}

	cfg := DefaultConfig()
	cfg.RateLimit.Enabled = true
	_, err := New().WithConfig(cfg).WithClientFactory(nopFactory{}).Build()
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected redis requirement error, got %v", err)
	}

	b := New().WithClientFactory(nopFactory{})
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error on builder reuse")
	}
}
