package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/tenant-config-api/pkg/response"
)

// PageCacheHeader reports whether a page came from the per-host cache.
const PageCacheHeader = "X-Page-Cache"

var nonPagePrefixes = []string{"/api", "/docs", "/assets"}

// PageRenderer renders the SPA shell for a request host.
type PageRenderer interface {
	Render(ctx context.Context, host string) (string, bool, error)
}

// IsPageRequest reports whether path is an SPA route: outside the API, docs and asset
// trees and without a file extension.
func IsPageRequest(path string) bool {
	for _, prefix := range nonPagePrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return !strings.Contains(path, ".")
}

// StaticSite serves host-personalised pages for SPA routes. Render failures are logged
// and passed on to the next handler.
func StaticSite(pages PageRenderer, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		method := c.Request.Method
		if (method != http.MethodGet && method != http.MethodHead) || !IsPageRequest(c.Request.URL.Path) {
			c.Next()
			return
		}

		html, hit, err := pages.Render(c.Request.Context(), c.Request.Host)
		if err != nil {
			logger.Warn("page render failed",
				zap.String("host", c.Request.Host),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.Next()
			return
		}

		status := "MISS"
		if hit {
			status = "HIT"
		}
		c.Header(PageCacheHeader, status)
		response.HTML(c, http.StatusOK, html)
		c.Abort()
	}
}
