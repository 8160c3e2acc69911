package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tenant-config-api/internal/models"
)

// DomainConfigRepository persists per-domain frontend configuration.
type DomainConfigRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewDomainConfigRepository constructs the repository.
func NewDomainConfigRepository(db *sqlx.DB) *DomainConfigRepository {
	return &DomainConfigRepository{db: db}
}

// WithObserver attaches a query timing observer.
func (r *DomainConfigRepository) WithObserver(observer QueryObserver) *DomainConfigRepository {
	r.observer = observer
	return r
}

// FindForDomain returns the row for domain, or for rootDomain when no exact row exists.
func (r *DomainConfigRepository) FindForDomain(ctx context.Context, domain, rootDomain string) (*models.TenantAppConfig, error) {
	defer observe(r.observer, "tenant_app_config.find", time.Now())
	if rootDomain == "" {
		rootDomain = domain
	}
	const query = `SELECT id, tenant_id, domain_name, config, created_at, updated_at
FROM tenant_app_config
WHERE domain_name = $1 OR domain_name = $2
ORDER BY CASE WHEN domain_name = $1 THEN 0 ELSE 1 END
LIMIT 1`
	var cfg models.TenantAppConfig
	if err := r.db.GetContext(ctx, &cfg, query, domain, rootDomain); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert inserts or replaces the configuration of cfg.DomainName.
func (r *DomainConfigRepository) Upsert(ctx context.Context, cfg *models.TenantAppConfig) error {
	defer observe(r.observer, "tenant_app_config.upsert", time.Now())
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `INSERT INTO tenant_app_config (id, tenant_id, domain_name, config, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (domain_name)
DO UPDATE SET tenant_id = EXCLUDED.tenant_id, config = EXCLUDED.config, updated_at = EXCLUDED.updated_at
RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, cfg.ID, cfg.TenantID, cfg.DomainName, []byte(cfg.Config), now, now)
	if err := row.Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return fmt.Errorf("upsert domain config: %w", err)
	}
	return nil
}

// Delete removes the row for domain and reports whether one existed.
func (r *DomainConfigRepository) Delete(ctx context.Context, domain string) (bool, error) {
	defer observe(r.observer, "tenant_app_config.delete", time.Now())
	res, err := r.db.ExecContext(ctx, `DELETE FROM tenant_app_config WHERE domain_name = $1`, domain)
	if err != nil {
		return false, fmt.Errorf("delete domain config: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete domain config rows: %w", err)
	}
	return affected > 0, nil
}
