package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/service"

	"github.com/gin-gonic/gin"
)

// RateLimit limits requests per user, or per client IP for anonymous
// callers. A nil limiter disables the check. Limiter errors fail open.
func RateLimit(limiter service.RateLimiter, requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit_ip:%s:%s", c.ClientIP(), c.FullPath())
		if user, err := GetUserFromContext(c.Request.Context()); err == nil {
			key = fmt.Sprintf("rate_limit:%d:%s", user.ID, c.FullPath())
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, requests, window)
		if err != nil {
			slog.Warn("Rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Code:    http.StatusTooManyRequests,
				Message: "Rate limit exceeded",
				Details: fmt.Sprintf("Too many requests. Limit: %d per %v", requests, window),
			})
			return
		}

		c.Next()
	}
}
