package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"blog-cms/metrics"
)

// Metrics records every request against its route template so that path
// parameters do not explode label cardinality.
func Metrics(rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
