package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/S-FX-com/Enque-Backend/internal/metrics"
)

// Middleware returns a Gin middleware enforcing policy for every
// request that passes through it. The identity key is the authenticated
// agent when one is bound to the context, else the client address.
func Middleware(limiter *Limiter, policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := limiter.Check(c.Request.Context(), identityKey(c), policy)

		c.Header("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			metrics.RateLimitHits.WithLabelValues(policy.Name).Inc()
			c.Header("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// identityKey prefers the authenticated agent id set by the auth layer
// and falls back to the origin address.
func identityKey(c *gin.Context) string {
	if agentID, exists := c.Get("agentID"); exists {
		if id, ok := agentID.(string); ok && id != "" {
			return "agent:" + id
		}
	}
	return "ip:" + c.ClientIP()
}
