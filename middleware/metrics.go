package middleware

import (
	"strconv"
	"time"

	"github.com/civicconnect/civicconnect-be/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and duration per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
