package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tenant-config-api/internal/models"
	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
	"github.com/noah-isme/tenant-config-api/pkg/hostname"
)

// JobKindPageWarmup is the queue job kind that re-renders a host's page.
const JobKindPageWarmup = "page.warmup"

const domainConfigCachePrefix = "domaincfg:"

var emptyConfig = json.RawMessage(`{}`)

type domainConfigStore interface {
	FindForDomain(ctx context.Context, domain, rootDomain string) (*models.TenantAppConfig, error)
	Upsert(ctx context.Context, cfg *models.TenantAppConfig) error
	Delete(ctx context.Context, domain string) (bool, error)
}

type domainConfigCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Evict(ctx context.Context, keys ...string) error
	Invalidate(ctx context.Context, pattern string) error
}

type pageInvalidator interface {
	Invalidate(domain string) int
}

type warmupEnqueuer interface {
	Enqueue(kind, key string) error
}

// DomainConfigServiceConfig tunes DomainConfigService.
type DomainConfigServiceConfig struct {
	CacheTTL time.Duration
}

// DomainConfigService resolves and maintains the per-domain config injected into pages.
type DomainConfigService struct {
	store    domainConfigStore
	cache    domainConfigCache
	pages    pageInvalidator
	warmup   warmupEnqueuer
	audit    settingsAuditLogger
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDomainConfigService constructs the service. cache, pages, warmup and audit are optional.
func NewDomainConfigService(store domainConfigStore, cache domainConfigCache, pages pageInvalidator, warmup warmupEnqueuer, audit settingsAuditLogger, metrics *MetricsService, logger *zap.Logger, cfg DomainConfigServiceConfig) *DomainConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &DomainConfigService{
		store:    store,
		cache:    cache,
		pages:    pages,
		warmup:   warmup,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		cacheTTL: cfg.CacheTTL,
	}
}

// Lookup returns the config object for domain, trying the exact domain before its
// registrable root. Unknown domains resolve to {}.
func (s *DomainConfigService) Lookup(ctx context.Context, domain string) (json.RawMessage, error) {
	domain = hostname.ExtractDomainWithSubdomain(domain)
	key := domainConfigCachePrefix + domain
	if s.cache != nil {
		var cached json.RawMessage
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit && len(cached) > 0 {
			return cached, nil
		}
	}

	config := emptyConfig
	row, err := s.store.FindForDomain(ctx, domain, hostname.ExtractRootDomain(domain))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, appErrors.Internal(err, "failed to load domain config")
	case len(row.Config) > 0:
		config = row.Config
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, config, s.cacheTTL)
	}
	return config, nil
}

// Get returns the stored row for exactly domain.
func (s *DomainConfigService) Get(ctx context.Context, domain string) (*models.TenantAppConfig, error) {
	domain = hostname.ExtractDomainWithSubdomain(domain)
	row, err := s.store.FindForDomain(ctx, domain, domain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "domain config not found")
		}
		return nil, appErrors.Internal(err, "failed to load domain config")
	}
	return row, nil
}

// Upsert stores config for domain and refreshes every cache derived from it.
func (s *DomainConfigService) Upsert(ctx context.Context, domain, tenantID string, config json.RawMessage, actor *models.JWTClaims) (*models.TenantAppConfig, error) {
	domain = hostname.ExtractDomainWithSubdomain(domain)
	if domain == "" || strings.TrimSpace(tenantID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "domain and tenantId are required")
	}
	if !isJSONObject(config) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "config must be a JSON object")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, config); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "config must be a JSON object")
	}
	row := &models.TenantAppConfig{TenantID: strings.TrimSpace(tenantID), DomainName: domain, Config: json.RawMessage(compact.Bytes())}
	if err := s.store.Upsert(ctx, row); err != nil {
		return nil, appErrors.Internal(err, "failed to save domain config")
	}

	s.refresh(ctx, domain)
	s.emitAudit(ctx, actor, models.AuditActionDomainConfigUpdate, domain, row.Config)
	return row, nil
}

// Delete removes the config for domain. Pages fall back to the root domain or to {}.
func (s *DomainConfigService) Delete(ctx context.Context, domain string, actor *models.JWTClaims) (bool, error) {
	domain = hostname.ExtractDomainWithSubdomain(domain)
	deleted, err := s.store.Delete(ctx, domain)
	if err != nil {
		return false, appErrors.Internal(err, "failed to delete domain config")
	}
	if deleted {
		s.refresh(ctx, domain)
		s.emitAudit(ctx, actor, models.AuditActionDomainConfigDelete, domain, nil)
	}
	return deleted, nil
}

func (s *DomainConfigService) refresh(ctx context.Context, domain string) {
	if s.cache != nil {
		_ = s.cache.Evict(ctx, domainConfigCachePrefix+domain)
		_ = s.cache.Invalidate(ctx, domainConfigCachePrefix+"*."+domain)
	}
	if s.pages != nil {
		s.metrics.RecordPageEvictions(s.pages.Invalidate(domain))
	}
	if s.warmup != nil {
		if err := s.warmup.Enqueue(JobKindPageWarmup, domain); err != nil {
			s.logger.Warn("failed to enqueue page warm-up", zap.String("domain", domain), zap.Error(err))
		}
	}
}

func (s *DomainConfigService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, domain string, newValue json.RawMessage) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     action,
		Resource:   "domain_config",
		ResourceID: &domain,
		NewValues:  []byte(newValue),
		IPAddress:  "system",
		UserAgent:  "domain-config-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record domain config audit", zap.String("domain", domain), zap.Error(err))
	}
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed))
}
