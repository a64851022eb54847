package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowLimiter(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache()
	cache.now = clock.Now
	limiter := NewWindowLimiter(cache, "auth", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 3, decision.Limit)
		assert.Equal(t, 2-i, decision.Remaining)
	}

	clock.Advance(15 * time.Second)
	decision, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, 45*time.Second, decision.RetryAfter)

	decision, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "keys are independent")

	clock.Advance(time.Minute)
	decision, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestTokenBucketLimiter(t *testing.T) {
	clock := newFakeClock()
	limiter := NewTokenBucketLimiter(2, time.Minute)
	limiter.now = clock.Now
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := limiter.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}
	decision, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 30*time.Second, decision.RetryAfter)

	clock.Advance(30 * time.Second)
	decision, err = limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "one token refilled")
}
