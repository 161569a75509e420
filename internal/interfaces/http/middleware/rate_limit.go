package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/infrastructure/monitoring"
	"github.com/elevate-edu/elevate/internal/infrastructure/ratelimit"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// RateLimit enforces the per-tenant sliding window limit. Rejected requests
// get a 429 with a Retry-After header.
func RateLimit(limiter *ratelimit.SlidingWindowLimiter, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := TenantID(c)
		if tenantID == "" {
			c.Next()
			return
		}

		decision := limiter.Allow(c.Request.Context(), tenantID)
		if !decision.Allowed {
			metrics.RateLimitRejections.Inc()
			retryAfter := int(decision.RetryAfter.Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortWithError(c, errors.ErrRateLimitExceeded(retryAfter))
			return
		}
		c.Next()
	}
}
