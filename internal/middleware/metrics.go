package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"stars-workflow-api/internal/metrics"
)

// unmatchedRoute labels requests no route claimed, so scanners hitting random
// paths land in one series
const unmatchedRoute = "unmatched"

// Metrics records every API call against its route pattern. Probe and docs
// endpoints are left out.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
