// Package ratelimit implements a per-tenant sliding window rate limiter
// backed by Redis sorted sets.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// SlidingWindowLimiter counts requests per tenant in a rolling window. Each
// request is a sorted set member scored by its timestamp; expired members
// are trimmed before counting.
type SlidingWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    logger.Logger
}

// NewSlidingWindowLimiter creates a limiter allowing limit requests per the
// standard window.
func NewSlidingWindowLimiter(client *redis.Client, limit int, log logger.Logger) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client: client,
		limit:  limit,
		window: constants.RateLimitWindow,
		log:    log.WithComponent("rate_limiter"),
	}
}

// Allow records the request and decides whether it may proceed. On Redis
// failure the request is allowed: availability beats strict limiting here.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, tenantID string) Decision {
	key := "ratelimit:" + tenantID
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.New().String(),
	})
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warn(ctx, "rate limit check failed, allowing request", logger.ErrorField(err))
		return Decision{Allowed: true, Remaining: l.limit}
	}

	count := int(countCmd.Val())
	if count >= l.limit {
		retryAfter := l.window
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retryAfter = l.window - now.Sub(oldestAt)
			if retryAfter < time.Second {
				retryAfter = time.Second
			}
		}
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}

	return Decision{Allowed: true, Remaining: l.limit - count - 1}
}
