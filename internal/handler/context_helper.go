package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tenant-config-api/internal/middleware"
	"github.com/noah-isme/tenant-config-api/internal/models"
	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// ensureTenantAccess lets super admins through and everyone else only into their own tenant.
func ensureTenantAccess(claims *models.JWTClaims, tenantID string) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleSuperAdmin || claims.TenantID == tenantID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "tenant access denied")
}
