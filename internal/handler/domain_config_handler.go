package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/tenant-config-api/internal/dto"
	"github.com/noah-isme/tenant-config-api/internal/middleware"
	"github.com/noah-isme/tenant-config-api/internal/models"
	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
	"github.com/noah-isme/tenant-config-api/pkg/response"
)

type domainConfigService interface {
	Get(ctx context.Context, domain string) (*models.TenantAppConfig, error)
	Upsert(ctx context.Context, domain, tenantID string, config json.RawMessage, actor *models.JWTClaims) (*models.TenantAppConfig, error)
	Delete(ctx context.Context, domain string, actor *models.JWTClaims) (bool, error)
}

// DomainConfigHandler exposes maintenance of per-domain page config.
type DomainConfigHandler struct {
	service   domainConfigService
	validator *validator.Validate
}

// NewDomainConfigHandler builds a new handler.
func NewDomainConfigHandler(service domainConfigService, validate *validator.Validate) *DomainConfigHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &DomainConfigHandler{service: service, validator: validate}
}

// Get godoc
// @Summary Get domain config
// @Tags Domains
// @Produce json
// @Security BearerAuth
// @Param domain path string true "Domain name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /config/domains/{domain} [get]
func (h *DomainConfigHandler) Get(c *gin.Context) {
	row, err := h.service.Get(c.Request.Context(), c.Param("domain"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := ensureTenantAccess(claimsFromContext(c), row.TenantID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, middleware.ExtractMeta(c))
}

// Put godoc
// @Summary Create or replace domain config
// @Description Stores the config injected into pages served for the domain and its subdomains.
// @Tags Domains
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param domain path string true "Domain name"
// @Param payload body dto.DomainConfigRequest true "Domain config"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /config/domains/{domain} [put]
func (h *DomainConfigHandler) Put(c *gin.Context) {
	var req dto.DomainConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid domain config payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid domain config payload"))
		return
	}
	tenantID := strings.TrimSpace(req.TenantID)
	if err := ensureTenantAccess(claimsFromContext(c), tenantID); err != nil {
		response.Error(c, err)
		return
	}
	row, err := h.service.Upsert(c.Request.Context(), c.Param("domain"), tenantID, req.Config, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, middleware.ExtractMeta(c))
}

// Delete godoc
// @Summary Delete domain config
// @Tags Domains
// @Produce json
// @Security BearerAuth
// @Param domain path string true "Domain name"
// @Success 200 {object} response.Envelope
// @Router /config/domains/{domain} [delete]
func (h *DomainConfigHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims != nil && claims.Role != models.RoleSuperAdmin {
		row, err := h.service.Get(c.Request.Context(), c.Param("domain"))
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := ensureTenantAccess(claims, row.TenantID); err != nil {
			response.Error(c, err)
			return
		}
	}
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("domain"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeleteResult{Deleted: deleted}, middleware.ExtractMeta(c))
}
