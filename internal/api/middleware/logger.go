package middleware

import (
	"strconv"
	"time"

	"heatpump-economics/internal/logger"
	"heatpump-economics/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Logger writes one structured line per request and records request metrics.
func Logger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		d := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		metrics.ObserveHTTP(route, strconv.Itoa(status), d)

		entry := log.WithFields(logger.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       route,
			"status":      status,
			"duration_ms": float64(d.Microseconds()) / 1000,
			"client_ip":   c.ClientIP(),
			"request_id":  c.GetString(RequestIDKey),
		})
		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
