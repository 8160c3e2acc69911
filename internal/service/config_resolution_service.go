package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tenant-config-api/internal/dto"
	"github.com/noah-isme/tenant-config-api/internal/models"
	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
)

type settingsStore interface {
	GetConfigByKey(ctx context.Context, ownerID, section, key string) (*models.SettingsRecord, error)
	SaveOrUpdateConfigByKey(ctx context.Context, record *models.SettingsRecord) (*models.SettingsRecord, error)
}

type settingsAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ConfigResolutionService resolves tenant defaults and user overrides into an effective
// settings value. It holds no state between calls; the stores are the source of truth.
type ConfigResolutionService struct {
	tenants   settingsStore
	users     settingsStore
	audit     settingsAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConfigResolutionService constructs a ConfigResolutionService.
func NewConfigResolutionService(tenants, users settingsStore, audit settingsAuditLogger, validate *validator.Validate, logger *zap.Logger) *ConfigResolutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigResolutionService{
		tenants:   tenants,
		users:     users,
		audit:     audit,
		validator: validate,
		logger:    logger,
	}
}

// GetTenantConfig returns the tenant's stored settings or nil when none exist.
func (s *ConfigResolutionService) GetTenantConfig(ctx context.Context, tenantID string) (*models.ConfigValue, error) {
	record, err := s.load(ctx, s.tenants, tenantID, models.SettingsKey)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load tenant settings")
	}
	if record == nil {
		return nil, nil
	}
	return &models.ConfigValue{Value: DecodeSettings(record.MetaValue), Source: models.ConfigSourceTenant}, nil
}

// GetUserOnlyConfig returns the user's own stored settings, without tenant defaults.
func (s *ConfigResolutionService) GetUserOnlyConfig(ctx context.Context, userID string) (*models.ConfigValue, error) {
	record, err := s.load(ctx, s.users, userID, models.SettingsKey)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load user settings")
	}
	if record == nil {
		return nil, nil
	}
	return &models.ConfigValue{Value: DecodeSettings(record.MetaValue), Source: models.ConfigSourceUser}, nil
}

// GetEffectiveConfig resolves what the user actually sees. With user settings present the
// result is the merge of tenant and user values, sourced from the user and flagged as an
// override when tenant settings exist too. Otherwise the tenant result is returned as is.
func (s *ConfigResolutionService) GetEffectiveConfig(ctx context.Context, userID, tenantID string) (*models.ConfigValue, error) {
	tenant, err := s.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	user, err := s.GetUserOnlyConfig(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return tenant, nil
	}

	var base models.AppSettings
	if tenant != nil {
		base = tenant.Value
	}
	return &models.ConfigValue{
		Value:        MergeSettings(base, user.Value),
		Source:       models.ConfigSourceUser,
		IsOverridden: tenant != nil,
	}, nil
}

// GetMergedView returns effective settings, with both sections always present, together
// with the tenant's user permissions.
func (s *ConfigResolutionService) GetMergedView(ctx context.Context, userID, tenantID string) (*dto.MergedConfigView, error) {
	effective, err := s.GetEffectiveConfig(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	permissions, err := s.GetUserPermissions(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var settings models.AppSettings
	if effective != nil {
		settings = effective.Value
	}
	return &dto.MergedConfigView{
		Settings:    MergeSettings(models.AppSettings{}, settings),
		Permissions: permissions,
	}, nil
}

// GetUserPermissions returns the tenant-wide user permissions, empty when unset.
func (s *ConfigResolutionService) GetUserPermissions(ctx context.Context, tenantID string) (models.UserPermissions, error) {
	record, err := s.load(ctx, s.tenants, tenantID, models.PermissionsKey)
	if err != nil {
		return models.UserPermissions{}, appErrors.Internal(err, "failed to load user permissions")
	}
	if record == nil {
		return models.UserPermissions{}, nil
	}
	return DecodePermissions(record.MetaValue), nil
}

// SaveTenantSettings replaces the tenant's settings.
func (s *ConfigResolutionService) SaveTenantSettings(ctx context.Context, tenantID string, settings models.AppSettings, actor *models.JWTClaims) (*models.SettingsRecord, error) {
	if err := s.validate(settings); err != nil {
		return nil, err
	}
	raw, err := EncodeSettings(settings)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode settings")
	}
	prev := s.previousValue(ctx, s.tenants, tenantID, models.SettingsKey)
	stored, err := s.save(ctx, s.tenants, tenantID, models.SettingsKey, raw)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save tenant settings")
	}
	s.emitAudit(ctx, actor, models.AuditActionTenantSettingsUpdate, "tenant_settings", tenantID, prev, raw)
	return stored, nil
}

// SaveTenantPermissions replaces the tenant-wide user permissions.
func (s *ConfigResolutionService) SaveTenantPermissions(ctx context.Context, tenantID string, permissions models.UserPermissions, actor *models.JWTClaims) (*models.SettingsRecord, error) {
	raw, err := EncodePermissions(permissions)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode permissions")
	}
	prev := s.previousValue(ctx, s.tenants, tenantID, models.PermissionsKey)
	stored, err := s.save(ctx, s.tenants, tenantID, models.PermissionsKey, raw)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save tenant permissions")
	}
	s.emitAudit(ctx, actor, models.AuditActionTenantPermissionsUpdate, "tenant_permissions", tenantID, prev, raw)
	return stored, nil
}

// SaveUserSettings replaces the user's own settings.
func (s *ConfigResolutionService) SaveUserSettings(ctx context.Context, userID string, settings models.AppSettings) (*models.SettingsRecord, error) {
	if err := s.validate(settings); err != nil {
		return nil, err
	}
	raw, err := EncodeSettings(settings)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode settings")
	}
	stored, err := s.save(ctx, s.users, userID, models.SettingsKey, raw)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save user settings")
	}
	return stored, nil
}

// DeleteUserSettings blanks the user's settings to {}. The record itself is kept, so the
// user still resolves as the source afterwards, with tenant values filling every field.
// It reports false instead of an error when the store rejects the write.
func (s *ConfigResolutionService) DeleteUserSettings(ctx context.Context, userID string) bool {
	if _, err := s.save(ctx, s.users, userID, models.SettingsKey, "{}"); err != nil {
		s.logger.Warn("failed to reset user settings", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return true
}

func (s *ConfigResolutionService) load(ctx context.Context, store settingsStore, ownerID, key string) (*models.SettingsRecord, error) {
	record, err := store.GetConfigByKey(ctx, ownerID, models.SettingsSection, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (s *ConfigResolutionService) save(ctx context.Context, store settingsStore, ownerID, key, raw string) (*models.SettingsRecord, error) {
	return store.SaveOrUpdateConfigByKey(ctx, &models.SettingsRecord{
		OwnerID:   ownerID,
		Section:   models.SettingsSection,
		MetaKey:   key,
		MetaValue: raw,
	})
}

func (s *ConfigResolutionService) validate(settings models.AppSettings) error {
	if err := s.validator.Struct(settings); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	return nil
}

// previousValue is best effort; it only feeds the audit trail.
func (s *ConfigResolutionService) previousValue(ctx context.Context, store settingsStore, ownerID, key string) string {
	if s.audit == nil {
		return ""
	}
	record, err := s.load(ctx, store, ownerID, key)
	if err != nil || record == nil {
		return ""
	}
	return record.MetaValue
}

func (s *ConfigResolutionService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resource, ownerID, oldValue, newValue string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     action,
		Resource:   resource,
		ResourceID: &ownerID,
		OldValues:  jsonOrNil(oldValue),
		NewValues:  jsonOrNil(newValue),
		IPAddress:  "system",
		UserAgent:  "config-resolution-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record settings audit", zap.String("action", action), zap.Error(err))
	}
}

func userIDPtr(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	id := actor.UserID
	return &id
}

// jsonOrNil keeps audit columns valid JSONB; stored values that are not JSON are dropped.
func jsonOrNil(raw string) []byte {
	if raw == "" || !json.Valid([]byte(raw)) {
		return nil
	}
	return []byte(raw)
}
