package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storeline/storefront-api/metrics"
)

// Metrics records per-request counters and latency, labelled by route
// template rather than raw path to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path, status).
			Observe(time.Since(start).Seconds())
	}
}
