package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/themeradar/pkg/config"
)

// Client wraps the Redis client with additional utilities
// ⭐ SSOT: Redis 연결은 여기서만 관리
// A disabled client is valid: lock/cache/rate-limit helpers fall back to local behaviour.
type Client struct {
	rdb     *redis.Client
	enabled bool
	prefix  string
}

// New creates a new Redis client
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "themeradar"
	}

	if !cfg.Enabled {
		return Disabled(prefix), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb, enabled: true, prefix: prefix}, nil
}

// Disabled returns a client with Redis turned off
func Disabled(prefix string) *Client {
	return &Client{enabled: false, prefix: prefix}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Prefix returns the key namespace
func (c *Client) Prefix() string {
	return c.prefix
}

// Redis returns the underlying redis client for advanced usage
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// key builds a namespaced key: <prefix>:<kind>:<name>
func (c *Client) key(kind, name string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, kind, name)
}
