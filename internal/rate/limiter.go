package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	Prefix             string
	MaxCreatePerWindow int
	CreateWindow       time.Duration
	MaxSendPerWindow   int
	SendWindow         time.Duration
}

// Limiter enforces per-IP fixed-window limits for session creation and
// message dispatch using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "cg"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// AllowCreate charges one session-creation attempt against the IP's budget.
// Returns ErrRateLimited when the budget is exhausted. An empty IP (no
// request context) is never limited.
func (l *Limiter) AllowCreate(ctx context.Context, ip string) error {
	if ip == "" {
		return nil
	}
	return l.allow(ctx, l.createKey(ip), l.config.MaxCreatePerWindow, l.config.CreateWindow)
}

// AllowSend charges one message-dispatch attempt against the IP's budget.
func (l *Limiter) AllowSend(ctx context.Context, ip string) error {
	if ip == "" {
		return nil
	}
	return l.allow(ctx, l.sendKey(ip), l.config.MaxSendPerWindow, l.config.SendWindow)
}

func (l *Limiter) allow(ctx context.Context, key string, max int, window time.Duration) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(max) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) createKey(ip string) string {
	return l.config.Prefix + ":rl:create:ip:" + ip
}

func (l *Limiter) sendKey(ip string) string {
	return l.config.Prefix + ":rl:send:ip:" + ip
}
