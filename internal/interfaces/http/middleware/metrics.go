package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"astraldraw.backend/pkg/metrics"
)

// MetricsMiddleware records request counts and latencies per route.
// The route template is used as the path label so IDs do not blow up
// the cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
