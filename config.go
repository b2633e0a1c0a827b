package chatgate

import (
	"errors"
	"fmt"
	"time"

	"github.com/chatgate-io/chatgate/qr"
)

// Config defines a public type used by chatgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Server    ServerConfig
	QR        QRConfig
	Messaging MessagingConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Guard     GuardConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SERVER CONFIG
====================================
*/

// ServerConfig defines a public type used by chatgate APIs.
//
// ServerConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	EnableCORS      bool
}

/*
====================================
QR CONFIG
====================================
*/

// QRConfig defines a public type used by chatgate APIs.
//
// QRConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type QRConfig struct {
	Mode          string // "hosted" (default) or "inline"
	HostedBaseURL string
	Size          int
}

/*
====================================
MESSAGING CONFIG
====================================
*/

// MessagingConfig defines a public type used by chatgate APIs.
//
// MessagingConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MessagingConfig struct {
	// AddressSuffix is appended to outbound recipient numbers that do not
	// already contain it. Malformed addresses fail delivery silently on the
	// messaging network, so the suffix rule is applied on every send.
	AddressSuffix string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by chatgate APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// PendingTTL expires sessions that never authenticated. Zero disables
	// expiry: a session stuck awaiting a scan is then kept until an explicit
	// logout, matching the upstream gateway behavior.
	PendingTTL    time.Duration
	SweepInterval time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by chatgate APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled            bool
	RedisPrefix        string
	MaxCreatePerWindow int
	CreateWindow       time.Duration
	MaxSendPerWindow   int
	SendWindow         time.Duration
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig defines a public type used by chatgate APIs.
//
// GuardConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GuardConfig struct {
	// Enabled turns on bearer-token authentication for the HTTP API.
	// Disabled by default: the gateway API is an internal surface and ships
	// open, like the upstream implementation.
	Enabled bool
	Secret  string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by chatgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by chatgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableCORS:      true,
		},
		QR: QRConfig{
			Mode:          qr.ModeHosted,
			HostedBaseURL: "https://api.qrserver.com/v1/create-qr-code/",
			Size:          300,
		},
		Messaging: MessagingConfig{
			AddressSuffix: "@c.us",
		},
		RateLimit: RateLimitConfig{
			RedisPrefix:        "cg",
			MaxCreatePerWindow: 10,
			CreateWindow:       time.Minute,
			MaxSendPerWindow:   60,
			SendWindow:         time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	switch c.QR.Mode {
	case qr.ModeHosted, qr.ModeInline:
	default:
		return fmt.Errorf("unknown qr mode %q", c.QR.Mode)
	}
	if c.QR.Mode == qr.ModeHosted && c.QR.HostedBaseURL == "" {
		return errors.New("hosted qr mode requires a base url")
	}
	if c.QR.Size <= 0 {
		return errors.New("qr size must be positive")
	}

	if c.Messaging.AddressSuffix == "" {
		return errors.New("messaging address suffix required")
	}

	if c.Session.PendingTTL < 0 {
		return errors.New("session pending ttl cannot be negative")
	}
	if c.Session.PendingTTL > 0 && c.Session.SweepInterval <= 0 {
		return errors.New("session expiry requires a sweep interval")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.MaxCreatePerWindow <= 0 || c.RateLimit.CreateWindow <= 0 {
			return errors.New("rate limit create budget must be positive")
		}
		if c.RateLimit.MaxSendPerWindow <= 0 || c.RateLimit.SendWindow <= 0 {
			return errors.New("rate limit send budget must be positive")
		}
	}

	if c.Guard.Enabled && c.Guard.Secret == "" {
		return errors.New("guard requires a secret")
	}

	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size cannot be negative")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are values; a shallow copy is a deep copy.
	return cfg
}
