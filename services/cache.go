package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Cache is the small key-value surface shared by rate limiting and refresh
// token revocation.
type Cache interface {
	// Incr bumps a counter that lives for window from its first increment
	// and returns the new count with the time left in the window.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

const (
	// Redis only has strings; "1" marks a flag as set.
	RedisTrue = "1"
)

type RedisCache struct {
	inner *redis.Client
}

// NewRedisCache connects with a redis:// or rediss:// URL and pings the server.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing REDIS_URL")
	}
	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &RedisCache{inner: client}, nil
}

func (r *RedisCache) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	n, err := r.inner.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := r.inner.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		return n, window, nil
	}
	ttl, err := r.inner.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// the expire after the first INCR never landed
		if err := r.inner.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return n, ttl, nil
}

func (r *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return r.inner.SetNX(ctx, key, value, ttl).Result()
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.inner.Exists(ctx, key).Result()
	return n > 0, err
}

func (r *RedisCache) Close() error {
	return r.inner.Close()
}

type memoryEntry struct {
	value     string
	counter   int64
	expiresAt time.Time
}

// MemoryCache is the single-process fallback when REDIS_URL is unset.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
	ops     int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

const memorySweepEvery = 1024

// live returns the unexpired entry for key. Callers hold mu.
func (m *MemoryCache) live(key string, now time.Time) *memoryEntry {
	m.ops++
	if m.ops%memorySweepEvery == 0 {
		for k, e := range m.entries {
			if !now.Before(e.expiresAt) {
				delete(m.entries, k)
			}
		}
	}
	entry, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !now.Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	return entry
}

func (m *MemoryCache) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	entry := m.live(key, now)
	if entry == nil {
		entry = &memoryEntry{expiresAt: now.Add(window)}
		m.entries[key] = entry
	}
	entry.counter++
	return entry.counter, entry.expiresAt.Sub(now), nil
}

func (m *MemoryCache) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if m.live(key, now) != nil {
		return false, nil
	}
	m.entries[key] = &memoryEntry{value: value, expiresAt: now.Add(ttl)}
	return true, nil
}

func (m *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(key, m.now()) != nil, nil
}

func (m *MemoryCache) Close() error {
	return nil
}
