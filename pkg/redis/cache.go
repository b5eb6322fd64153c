package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLQuote     = 12 * time.Hour   // historical closes do not change
	TTLEmptyHit  = 1 * time.Hour    // no close yet, retry later
	TTLLatestRun = time.Duration(0) // pointer lives until overwritten
)

// Cache stores JSON values under <prefix>:cache:<key>
// ⭐ SSOT: 캐시 헬퍼는 여기서만
// A nil *Cache or a disabled client behaves as an always-missing cache.
type Cache struct {
	client *Client

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats counts lookups since the cache was created
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewCache creates a new cache helper
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) active() bool {
	return c != nil && c.client != nil && c.client.Enabled()
}

// Get decodes the cached value into dest. A miss returns (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.active() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.client.key("cache", key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// 손상된 엔트리는 미스로 취급하고 지운다
		c.misses.Add(1)
		_ = c.client.Redis().Del(ctx, c.client.key("cache", key)).Err()
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}

	c.hits.Add(1)
	return true, nil
}

// Set stores value with ttl (0 = no expiry)
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.active() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Redis().Set(ctx, c.client.key("cache", key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.active() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.client.key("cache", key)).Err()
}

// Stats returns lookup counters; disabled caches report zero
func (c *Cache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// QuoteKey identifies one historical close lookup
func QuoteKey(symbol, direction, date string, maxDays int) string {
	return fmt.Sprintf("quote:%s:%s:%s:%d", symbol, direction, date, maxDays)
}

// LatestRunKey points at the most recent completed run
func LatestRunKey() string {
	return "run:latest"
}
