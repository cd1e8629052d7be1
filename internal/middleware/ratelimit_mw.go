package middleware

import (
	"log/slog"
	"time"

	"project_tracker/internal/apperror"
	"project_tracker/internal/cache"
	"project_tracker/internal/response"

	"github.com/gin-gonic/gin"
)

// RateLimit allows limit requests per client IP within window. If the counter
// store fails the request is let through.
func RateLimit(counter cache.Client, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rate-limit:" + name + ":" + c.ClientIP()
		count, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if count > int64(limit) {
			response.Error(c, apperror.TooManyRequests("Too Many Requests"))
			return
		}
		c.Next()
	}
}
