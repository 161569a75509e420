package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/pkg/logger"
)

func newTestLimiter(t *testing.T, limit int) *SlidingWindowLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSlidingWindowLimiter(client, limit, logger.NewNop())
}

func TestSlidingWindowLimiter_AllowsUnderLimit(t *testing.T) {
	limiter := newTestLimiter(t, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d := limiter.Allow(ctx, "org-1")
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5-i-1, d.Remaining)
	}
}

func TestSlidingWindowLimiter_RejectsOverLimit(t *testing.T) {
	limiter := newTestLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow(ctx, "org-1").Allowed)
	}

	d := limiter.Allow(ctx, "org-1")
	assert.False(t, d.Allowed)
	assert.GreaterOrEqual(t, d.RetryAfter, time.Second)
}

func TestSlidingWindowLimiter_TenantsAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, 1)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "org-1").Allowed)
	assert.False(t, limiter.Allow(ctx, "org-1").Allowed)
	assert.True(t, limiter.Allow(ctx, "org-2").Allowed)
}

func TestSlidingWindowLimiter_FailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewSlidingWindowLimiter(client, 1, logger.NewNop())

	mr.Close()
	_ = client.Close()

	d := limiter.Allow(context.Background(), "org-1")
	assert.True(t, d.Allowed)
}
