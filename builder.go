package chatgate

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chatgate-io/chatgate/client"
	"github.com/chatgate-io/chatgate/internal/lifecycle"
	"github.com/chatgate-io/chatgate/internal/rate"
	"github.com/chatgate-io/chatgate/qr"
	"github.com/chatgate-io/chatgate/registry"
)

// Builder defines a public type used by chatgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	factory   client.Factory
	renderer  qr.Renderer
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(rdb redis.UniversalClient) *Builder {
	b.redis = rdb
	return b
}

// WithClientFactory describes the withclientfactory operation and its observable behavior.
//
// WithClientFactory may return an error when input validation, dependency calls, or security checks fail.
// WithClientFactory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithClientFactory(f client.Factory) *Builder {
	b.factory = f
	return b
}

// WithQRRenderer describes the withqrrenderer operation and its observable behavior.
//
// WithQRRenderer may return an error when input validation, dependency calls, or security checks fail.
// WithQRRenderer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithQRRenderer(r qr.Renderer) *Builder {
	b.renderer = r
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.factory == nil {
		return nil, errors.New("client factory required")
	}

	if cfg.RateLimit.Enabled && b.redis == nil {
		return nil, errors.New("rate limiting requires redis client")
	}

	renderer := b.renderer
	if renderer == nil {
		r, err := qr.New(qr.Config{
			Mode:          cfg.QR.Mode,
			HostedBaseURL: cfg.QR.HostedBaseURL,
			Size:          cfg.QR.Size,
		})
		if err != nil {
			return nil, err
		}
		renderer = r
	}

	engine := &Engine{
		config:    cfg,
		store:     registry.NewStore(),
		factory:   b.factory,
		startedAt: time.Now(),
		closed:    make(chan struct{}),
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	if cfg.RateLimit.Enabled {
		engine.limiter = rate.New(b.redis, rate.Config{
			Prefix:             cfg.RateLimit.RedisPrefix,
			MaxCreatePerWindow: cfg.RateLimit.MaxCreatePerWindow,
			CreateWindow:       cfg.RateLimit.CreateWindow,
			MaxSendPerWindow:   cfg.RateLimit.MaxSendPerWindow,
			SendWindow:         cfg.RateLimit.SendWindow,
		})
	}

	engine.controller = lifecycle.New(lifecycle.Deps{
		Store:           engine.store,
		Render:          renderer,
		OnQR:            engine.onQR,
		OnAuthenticated: engine.onAuthenticated,
		OnDisconnected:  engine.onDisconnected,
		OnIgnored:       engine.onIgnored,
		OnRenderError:   engine.onRenderError,
		Destroy:         engine.destroyAsync,
	})

	if cfg.Session.PendingTTL > 0 {
		engine.startSweeper()
	}

	b.built = true
	return engine, nil
}
