package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when the caller still owns it
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Locker implements the global pipeline lock (SET NX PX + token-checked release)
// ⭐ SSOT: 파이프라인 전역 락은 여기서만
// With Redis disabled it degrades to an in-process lock with the same TTL semantics.
type Locker struct {
	client *Client

	mu    sync.Mutex
	local map[string]localLock
	now   func() time.Time
}

type localLock struct {
	token     string
	expiresAt time.Time
}

// NewLocker creates a new locker
func NewLocker(client *Client) *Locker {
	return &Locker{
		client: client,
		local:  make(map[string]localLock),
		now:    time.Now,
	}
}

// Acquire tries to take key for ttl. Returns false (no error) when someone else holds it.
func (l *Locker) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("lock ttl must be positive")
	}

	if !l.client.Enabled() {
		return l.acquireLocal(key, token, ttl), nil
	}

	ok, err := l.client.Redis().SetNX(ctx, l.client.key("lock", key), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lock acquire failed: %w", err)
	}
	return ok, nil
}

// Release drops key if token still owns it. Releasing a lock you do not own is a no-op.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if !l.client.Enabled() {
		l.releaseLocal(key, token)
		return nil
	}

	if err := releaseScript.Run(ctx, l.client.Redis(), []string{l.client.key("lock", key)}, token).Err(); err != nil {
		return fmt.Errorf("lock release failed: %w", err)
	}
	return nil
}

func (l *Locker) acquireLocal(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.local[key]; ok && now.Before(held.expiresAt) {
		return false
	}

	l.local[key] = localLock{token: token, expiresAt: now.Add(ttl)}
	return true
}

func (l *Locker) releaseLocal(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.local[key]; ok && held.token == token {
		delete(l.local, key)
	}
}
