package dto

import (
	"encoding/json"

	"github.com/noah-isme/tenant-config-api/internal/models"
)

// MergedConfigView bundles the caller's effective settings with tenant permissions.
type MergedConfigView struct {
	Settings    models.AppSettings     `json:"settings"`
	Permissions models.UserPermissions `json:"permissions"`
}

// DeleteResult reports the outcome of a settings reset.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// DomainConfigRequest is the payload for creating or replacing a domain configuration.
type DomainConfigRequest struct {
	TenantID string          `json:"tenantId" validate:"required,max=128"`
	Config   json.RawMessage `json:"config" validate:"required"`
}
