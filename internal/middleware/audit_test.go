package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tenant-config-api/internal/models"
)

type auditWriterStub struct {
	logs []*models.AuditLog
}

func (a *auditWriterStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestAuditRecordsSuccessfulWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &auditWriterStub{}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin"})
		c.Next()
	})
	router.PUT("/users/:id", Audit(writer, "USER_SETTINGS_UPDATE", "user_settings", "id"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.POST("/fail", Audit(writer, "X", "y", ""), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/users/u7", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fail", nil))

	require.Len(t, writer.logs, 1)
	log := writer.logs[0]
	assert.Equal(t, "USER_SETTINGS_UPDATE", log.Action)
	assert.Equal(t, "u7", *log.ResourceID)
	assert.Equal(t, "admin", *log.UserID)
	assert.Contains(t, string(log.NewValues), `"path":"/users/:id"`)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())
	var meta map[string]interface{}
	router.GET("/", func(c *gin.Context) {
		SetMeta(c, "source", "user")
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "user", meta["source"])
	assert.Contains(t, meta, "processing_time_ms")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
}
