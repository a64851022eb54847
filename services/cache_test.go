package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (fc *fakeClock) Now() time.Time {
	return fc.t
}

func (fc *fakeClock) Advance(d time.Duration) {
	fc.t = fc.t.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemoryCacheIncr(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache()
	cache.now = clock.Now
	ctx := context.Background()

	n, ttl, err := cache.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, ttl)

	clock.Advance(20 * time.Second)
	n, ttl, err = cache.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 40*time.Second, ttl)

	clock.Advance(time.Minute)
	n, _, err = cache.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "window resets after expiry")
}

func TestMemoryCacheSetNX(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache()
	cache.now = clock.Now
	ctx := context.Background()

	set, err := cache.SetNX(ctx, "revoked:abc", RedisTrue, time.Hour)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = cache.SetNX(ctx, "revoked:abc", RedisTrue, time.Hour)
	require.NoError(t, err)
	assert.False(t, set)

	exists, err := cache.Exists(ctx, "revoked:abc")
	require.NoError(t, err)
	assert.True(t, exists)

	clock.Advance(2 * time.Hour)
	exists, err = cache.Exists(ctx, "revoked:abc")
	require.NoError(t, err)
	assert.False(t, exists)
}
