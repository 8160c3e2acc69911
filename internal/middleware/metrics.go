package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tenant-config-api/internal/service"
)

// unmatchedPath labels requests served outside the router (pages, assets, 404s) so that
// arbitrary SPA paths do not become metric labels.
const unmatchedPath = "<unmatched>"

// Metrics returns middleware that captures request metrics using the provided service.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
