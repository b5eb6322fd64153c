package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript keeps one sorted-set member per admitted request scored by its time in ms.
// KEYS[1]=window key; ARGV = now_ms, window_ms, limit, member. Returns {admitted, remaining}.
var slidingWindowScript = redis.NewScript(`
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
	local used = redis.call('ZCARD', KEYS[1])
	if used >= limit then
		return {0, 0}
	end

	redis.call('ZADD', KEYS[1], now, ARGV[4])
	redis.call('PEXPIRE', KEYS[1], window)
	return {1, limit - used - 1}
`)

// RateLimiter implements sliding window rate limiting shared across processes
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	owner  string        // distinguishes processes sharing a window
	seq    atomic.Uint64 // distinguishes requests within one millisecond
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // e.g. "prices", "documents"
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client, owner: uuid.NewString()[:8]}
}

// Allow checks if a request is allowed under the rate limit.
// Returns (allowed, remaining, error); with Redis disabled everything is allowed.
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		return true, cfg.Limit, nil
	}

	now := time.Now().UnixMilli()
	window := cfg.Window.Milliseconds()
	member := fmt.Sprintf("%d-%s-%d", now, r.owner, r.seq.Add(1))

	result, err := slidingWindowScript.Run(ctx, r.client.Redis(),
		[]string{r.client.key("ratelimit", cfg.Key)},
		now, window, cfg.Limit, member,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", cfg.Key, err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("rate limit %s: unexpected reply %v", cfg.Key, result)
	}

	allowed := result[0] == 1
	remaining := int(result[1])

	return allowed, remaining, nil
}

// pollInterval is the average slot spacing, clamped to [50ms, 1s]
func (cfg RateLimitConfig) pollInterval() time.Duration {
	if cfg.Limit <= 0 {
		return time.Second
	}
	d := cfg.Window / time.Duration(cfg.Limit)
	switch {
	case d < 50*time.Millisecond:
		return 50 * time.Millisecond
	case d > time.Second:
		return time.Second
	}
	return d
}

// Wait blocks until a request is allowed or context is cancelled
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	interval := cfg.pollInterval()
	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Predefined rate limit configs for external APIs
var (
	// PriceRateLimit historical close lookups across all workers
	PriceRateLimit = RateLimitConfig{
		Key:    "prices",
		Limit:  30,
		Window: time.Minute,
	}

	// DocumentRateLimit document source fetches
	DocumentRateLimit = RateLimitConfig{
		Key:    "documents",
		Limit:  10,
		Window: time.Minute,
	}
)
