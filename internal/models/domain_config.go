package models

import (
	"encoding/json"
	"time"
)

// TenantAppConfig is the per-domain configuration injected into the SPA shell.
type TenantAppConfig struct {
	ID         string          `db:"id" json:"id"`
	TenantID   string          `db:"tenant_id" json:"tenantId"`
	DomainName string          `db:"domain_name" json:"domainName"`
	Config     json.RawMessage `db:"config" json:"config"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}
