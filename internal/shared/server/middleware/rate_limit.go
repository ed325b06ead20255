package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/shared/metrics"
	"ai-resume-saas/internal/shared/server/respond"
)

// RateLimitMessage is the client-facing rejection message.
const RateLimitMessage = "Rate limit exceeded. Try again later."

// Limiter decides whether an identity may proceed.
type Limiter interface {
	Allow(ctx context.Context, identity string) (bool, time.Duration)
}

// RateLimit gates the route on the caller identity. It must run after Auth.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		identity := IdentityFromContext(c)
		if identity == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "Unauthorized", nil)
			return
		}

		allowed, retryAfter := limiter.Allow(c.Request.Context(), identity)
		if allowed {
			c.Next()
			return
		}

		metrics.IncRateLimited()
		retryAfterMs := int(retryAfter / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":        RateLimitMessage,
			"code":         "rate_limited",
			"retryAfterMs": retryAfterMs,
		})
	}
}
