package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tenant-config-api/pkg/storage"
)

func newSiteRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>shell</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	router := gin.New()
	router.NoRoute(NewSiteHandler(storage.NewLocalStorage(dir), "").Fallback)
	return router
}

func TestSiteHandlerServesAsset(t *testing.T) {
	router := newSiteRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())
}

func TestSiteHandlerServesIndexForPageRoutes(t *testing.T) {
	router := newSiteRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/settings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>shell</html>", w.Body.String())
}

func TestSiteHandlerNotFound(t *testing.T) {
	router := newSiteRouter(t)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil),
		httptest.NewRequest(http.MethodGet, "/assets/missing.css", nil),
		httptest.NewRequest(http.MethodPost, "/dashboard", nil),
		httptest.NewRequest(http.MethodGet, "/../etc/passwd.txt", nil),
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, req.URL.Path)
		assert.Contains(t, w.Body.String(), "route not found")
	}
}
