package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gonogo/observability"
)

// Metrics records request count and latency per matched route. Unmatched
// paths (static files) are grouped under "static".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "static"
		}
		m.RecordRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
