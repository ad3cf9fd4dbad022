package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/metrics"
)

// Metrics records request count, latency and in-flight requests. Paths are
// labelled by route template to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		metrics.HTTPInflight.Inc()
		start := time.Now()
		defer func() {
			metrics.HTTPInflight.Dec()
			metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		}()

		c.Next()
	}
}
