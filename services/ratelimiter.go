package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// WindowLimiter allows max hits per key in a fixed window, counted in a
// Cache so every instance behind a load balancer shares the budget.
type WindowLimiter struct {
	cache  Cache
	name   string
	max    int
	window time.Duration
}

func NewWindowLimiter(cache Cache, name string, max int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{cache: cache, name: name, max: max, window: window}
}

func (wl *WindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	hits, ttl, err := wl.cache.Incr(ctx, fmt.Sprintf("ratelimit:%s:%s", wl.name, key), wl.window)
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{
		Allowed:   hits <= int64(wl.max),
		Limit:     wl.max,
		Remaining: wl.max - int(hits),
	}
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	if !decision.Allowed {
		decision.RetryAfter = ttl
	}
	return decision, nil
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter refills max tokens evenly over window per key. It is
// local to the process.
type TokenBucketLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	max     int
	window  time.Duration
	every   rate.Limit
	now     func() time.Time
	sweeps  int
}

func NewTokenBucketLimiter(max int, window time.Duration) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		buckets: make(map[string]*bucket),
		max:     max,
		window:  window,
		every:   rate.Every(window / time.Duration(max)),
		now:     time.Now,
	}
}

func (tbl *TokenBucketLimiter) Allow(_ context.Context, key string) (Decision, error) {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	now := tbl.now()
	tbl.sweep(now)

	b, ok := tbl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(tbl.every, tbl.max)}
		tbl.buckets[key] = b
	}
	b.lastSeen = now

	decision := Decision{Limit: tbl.max}
	if b.limiter.AllowN(now, 1) {
		decision.Allowed = true
	} else {
		reservation := b.limiter.ReserveN(now, 1)
		decision.RetryAfter = reservation.DelayFrom(now)
		reservation.CancelAt(now)
	}
	decision.Remaining = int(b.limiter.TokensAt(now))
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	return decision, nil
}

// sweep drops buckets idle for a whole window; they would be full again.
func (tbl *TokenBucketLimiter) sweep(now time.Time) {
	tbl.sweeps++
	if tbl.sweeps%memorySweepEvery != 0 {
		return
	}
	for key, b := range tbl.buckets {
		if now.Sub(b.lastSeen) > tbl.window {
			delete(tbl.buckets, key)
		}
	}
}
