package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// LogApi writes one access-log line per request
func LogApi() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] | %s | %d | %s | %s | %s | %s | %s\n",
			param.TimeStamp.Format("2006-01-02 15:04:05"),
			param.ClientIP,
			param.StatusCode,
			param.Method,
			param.Path,
			param.Request.UserAgent(),
			param.ErrorMessage,
			param.Latency,
		)
	})
}

// Recovery logs panics through slog and answers 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("Panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatus(500)
	})
}

// RequestTimer logs slow requests
func RequestTimer(threshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if elapsed := time.Since(start); elapsed > threshold {
			slog.Warn("Slow request", "method", c.Request.Method, "path", c.FullPath(), "elapsed", elapsed)
		}
	}
}
