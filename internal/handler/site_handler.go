package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tenant-config-api/internal/middleware"
	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
	"github.com/noah-isme/tenant-config-api/pkg/response"
)

type siteFiles interface {
	Exists(name string) bool
	Path(name string) string
}

// SiteHandler serves the built frontend for requests the router does not match. It runs
// after the page middleware, so it only sees assets and pages that failed to render.
type SiteHandler struct {
	files siteFiles
	index string
}

// NewSiteHandler constructs a SiteHandler over the static directory.
func NewSiteHandler(files siteFiles, index string) *SiteHandler {
	if index == "" {
		index = "index.html"
	}
	return &SiteHandler{files: files, index: index}
}

// Fallback serves a matching static file, the raw index for SPA routes, or a JSON 404.
func (h *SiteHandler) Fallback(c *gin.Context) {
	method := c.Request.Method
	if h.files != nil && (method == http.MethodGet || method == http.MethodHead) {
		path := c.Request.URL.Path
		if name := strings.TrimPrefix(path, "/"); name != "" && h.files.Exists(name) {
			c.File(h.files.Path(name))
			return
		}
		if middleware.IsPageRequest(path) && h.files.Exists(h.index) {
			c.File(h.files.Path(h.index))
			return
		}
	}
	response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
}
