package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tenant-config-api/internal/dto"
	"github.com/noah-isme/tenant-config-api/internal/middleware"
	"github.com/noah-isme/tenant-config-api/internal/models"
	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
	"github.com/noah-isme/tenant-config-api/pkg/response"
)

type configResolutionService interface {
	GetTenantConfig(ctx context.Context, tenantID string) (*models.ConfigValue, error)
	GetUserOnlyConfig(ctx context.Context, userID string) (*models.ConfigValue, error)
	GetEffectiveConfig(ctx context.Context, userID, tenantID string) (*models.ConfigValue, error)
	GetMergedView(ctx context.Context, userID, tenantID string) (*dto.MergedConfigView, error)
	GetUserPermissions(ctx context.Context, tenantID string) (models.UserPermissions, error)
	SaveTenantSettings(ctx context.Context, tenantID string, settings models.AppSettings, actor *models.JWTClaims) (*models.SettingsRecord, error)
	SaveTenantPermissions(ctx context.Context, tenantID string, permissions models.UserPermissions, actor *models.JWTClaims) (*models.SettingsRecord, error)
	SaveUserSettings(ctx context.Context, userID string, settings models.AppSettings) (*models.SettingsRecord, error)
	DeleteUserSettings(ctx context.Context, userID string) bool
}

// ConfigHandler exposes tenant and user settings endpoints.
type ConfigHandler struct {
	service configResolutionService
}

// NewConfigHandler builds a new handler.
func NewConfigHandler(service configResolutionService) *ConfigHandler {
	return &ConfigHandler{service: service}
}

// GetTenant godoc
// @Summary Get tenant settings
// @Description Returns the tenant's stored settings, or null when none are stored.
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Success 200 {object} response.Envelope
// @Router /config/tenant/{tenantId} [get]
func (h *ConfigHandler) GetTenant(c *gin.Context) {
	tenantID, ok := h.tenantParam(c)
	if !ok {
		return
	}
	value, err := h.service.GetTenantConfig(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, value, middleware.ExtractMeta(c))
}

// SaveTenant godoc
// @Summary Save tenant settings
// @Tags Config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Param payload body models.AppSettings true "Settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /config/tenant/{tenantId} [post]
// @Router /config/tenant/{tenantId} [put]
func (h *ConfigHandler) SaveTenant(c *gin.Context) {
	tenantID, ok := h.tenantParam(c)
	if !ok {
		return
	}
	var settings models.AppSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	record, err := h.service.SaveTenantSettings(c.Request.Context(), tenantID, settings, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, middleware.ExtractMeta(c))
}

// GetPermissions godoc
// @Summary Get tenant user permissions
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Success 200 {object} response.Envelope
// @Router /config/tenant/{tenantId}/permissions [get]
func (h *ConfigHandler) GetPermissions(c *gin.Context) {
	tenantID, ok := h.tenantParam(c)
	if !ok {
		return
	}
	permissions, err := h.service.GetUserPermissions(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, permissions, middleware.ExtractMeta(c))
}

// SavePermissions godoc
// @Summary Save tenant user permissions
// @Tags Config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantId path string true "Tenant ID"
// @Param payload body models.UserPermissions true "Permissions"
// @Success 200 {object} response.Envelope
// @Router /config/tenant/{tenantId}/permissions [post]
// @Router /config/tenant/{tenantId}/permissions [put]
func (h *ConfigHandler) SavePermissions(c *gin.Context) {
	tenantID, ok := h.tenantParam(c)
	if !ok {
		return
	}
	var permissions models.UserPermissions
	if err := c.ShouldBindJSON(&permissions); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid permissions payload"))
		return
	}
	record, err := h.service.SaveTenantPermissions(c.Request.Context(), tenantID, permissions, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, middleware.ExtractMeta(c))
}

// GetEffective godoc
// @Summary Get the caller's effective settings
// @Description Tenant defaults merged with the caller's overrides, or null when neither exists.
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /config/user [get]
func (h *ConfigHandler) GetEffective(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	value, err := h.service.GetEffectiveConfig(c.Request.Context(), claims.UserID, claims.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, value, middleware.ExtractMeta(c))
}

// GetUserOnly godoc
// @Summary Get the caller's own settings
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /config/user/only [get]
func (h *ConfigHandler) GetUserOnly(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	value, err := h.service.GetUserOnlyConfig(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, value, middleware.ExtractMeta(c))
}

// GetMerged godoc
// @Summary Get merged settings and permissions
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /config/user/merged [get]
func (h *ConfigHandler) GetMerged(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.service.GetMergedView(c.Request.Context(), claims.UserID, claims.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, middleware.ExtractMeta(c))
}

// SaveOwn godoc
// @Summary Save the caller's settings
// @Tags Config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AppSettings true "Settings"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /config/user [post]
func (h *ConfigHandler) SaveOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.saveUser(c, claims.UserID)
}

// SaveForUser godoc
// Route RBAC lets a caller write its own id and lets ADMIN and SUPERADMIN write any id.
// Users are not stored here, so an ADMIN is not checked against the target user's
// tenant and can overwrite settings of users outside its own tenant.
// @Summary Save settings for a user
// @Description ADMIN callers are not restricted to users of their own tenant.
// @Tags Config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param payload body models.AppSettings true "Settings"
// @Success 200 {object} response.Envelope
// @Router /config/user/{id} [put]
func (h *ConfigHandler) SaveForUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user id is required"))
		return
	}
	h.saveUser(c, userID)
}

// DeleteOwn godoc
// @Summary Reset the caller's settings
// @Description Blanks the caller's settings so tenant defaults apply to every field.
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /config/user [delete]
func (h *ConfigHandler) DeleteOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	deleted := h.service.DeleteUserSettings(c.Request.Context(), claims.UserID)
	response.JSON(c, http.StatusOK, dto.DeleteResult{Deleted: deleted}, middleware.ExtractMeta(c))
}

func (h *ConfigHandler) saveUser(c *gin.Context, userID string) {
	var settings models.AppSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	record, err := h.service.SaveUserSettings(c.Request.Context(), userID, settings)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, middleware.ExtractMeta(c))
}

func (h *ConfigHandler) tenantParam(c *gin.Context) (string, bool) {
	tenantID := strings.TrimSpace(c.Param("tenantId"))
	if tenantID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "tenant id is required"))
		return "", false
	}
	if err := ensureTenantAccess(claimsFromContext(c), tenantID); err != nil {
		response.Error(c, err)
		return "", false
	}
	return tenantID, true
}
