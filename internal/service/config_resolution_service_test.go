package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tenant-config-api/internal/models"
	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
)

type settingsStoreStub struct {
	records map[string]models.SettingsRecord
	getErr  error
	saveErr error
	saves   int
}

func newSettingsStoreStub() *settingsStoreStub {
	return &settingsStoreStub{records: map[string]models.SettingsRecord{}}
}

func (s *settingsStoreStub) put(ownerID, key, raw string) {
	s.records[ownerID+"/"+key] = models.SettingsRecord{ID: "id-" + ownerID, OwnerID: ownerID, Section: models.SettingsSection, MetaKey: key, MetaValue: raw}
}

func (s *settingsStoreStub) GetConfigByKey(ctx context.Context, ownerID, section, key string) (*models.SettingsRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	record, ok := s.records[ownerID+"/"+key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &record, nil
}

func (s *settingsStoreStub) SaveOrUpdateConfigByKey(ctx context.Context, record *models.SettingsRecord) (*models.SettingsRecord, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.saves++
	s.put(record.OwnerID, record.MetaKey, record.MetaValue)
	stored := s.records[record.OwnerID+"/"+record.MetaKey]
	return &stored, nil
}

type auditLoggerStub struct {
	logs []*models.AuditLog
	err  error
}

func (a *auditLoggerStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return a.err
}

func newResolutionService() (*ConfigResolutionService, *settingsStoreStub, *settingsStoreStub, *auditLoggerStub) {
	tenants := newSettingsStoreStub()
	users := newSettingsStoreStub()
	audit := &auditLoggerStub{}
	return NewConfigResolutionService(tenants, users, audit, nil, nil), tenants, users, audit
}

func TestEffectiveConfigNullWhenNothingStored(t *testing.T) {
	svc, _, _, _ := newResolutionService()
	value, err := svc.GetEffectiveConfig(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestEffectiveConfigTenantOnly(t *testing.T) {
	svc, tenants, _, _ := newResolutionService()
	tenants.put("t1", models.SettingsKey, `{"theme":{"fontSize":"large"}}`)

	value, err := svc.GetEffectiveConfig(context.Background(), "u1", "t1")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, models.ConfigSourceTenant, value.Source)
	assert.False(t, value.IsOverridden)
	assert.Equal(t, models.AppSettings{Theme: &models.ThemeSettings{FontSize: models.String("large")}}, value.Value)
}

func TestEffectiveConfigUserOverridesTenant(t *testing.T) {
	svc, tenants, users, _ := newResolutionService()
	tenants.put("t1", models.SettingsKey, `{"theme":{"fontSize":"large"}}`)
	users.put("u1", models.SettingsKey, `{"theme":{"colorScheme":"dark"}}`)

	value, err := svc.GetEffectiveConfig(context.Background(), "u1", "t1")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, models.ConfigSourceUser, value.Source)
	assert.True(t, value.IsOverridden)
	assert.Equal(t, models.AppSettings{
		Layout: &models.LayoutSettings{},
		Theme:  &models.ThemeSettings{FontSize: models.String("large"), ColorScheme: models.String("dark")},
	}, value.Value)
}

func TestEffectiveConfigUserOnly(t *testing.T) {
	svc, _, users, _ := newResolutionService()
	users.put("u1", models.SettingsKey, `{"layout":{"headerFixed":false}}`)

	value, err := svc.GetEffectiveConfig(context.Background(), "u1", "t1")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, models.ConfigSourceUser, value.Source)
	assert.False(t, value.IsOverridden)
	assert.False(t, *value.Value.Layout.HeaderFixed)
	assert.Equal(t, &models.ThemeSettings{}, value.Value.Theme)
}

func TestEffectiveConfigMalformedRecordCountsAsPresent(t *testing.T) {
	svc, tenants, _, _ := newResolutionService()
	tenants.put("t1", models.SettingsKey, `not json`)

	value, err := svc.GetTenantConfig(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, models.AppSettings{}, value.Value)
}

func TestGetUserOnlyConfig(t *testing.T) {
	svc, tenants, users, _ := newResolutionService()
	tenants.put("t1", models.SettingsKey, `{"theme":{"fontSize":"large"}}`)
	users.put("u1", models.SettingsKey, `{"theme":{"colorScheme":"dark"}}`)

	value, err := svc.GetUserOnlyConfig(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &models.ConfigValue{
		Value:  models.AppSettings{Theme: &models.ThemeSettings{ColorScheme: models.String("dark")}},
		Source: models.ConfigSourceUser,
	}, value)

	value, err = svc.GetUserOnlyConfig(context.Background(), "u2")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestReadErrorsPropagate(t *testing.T) {
	svc, tenants, _, _ := newResolutionService()
	tenants.getErr = errors.New("connection refused")

	_, err := svc.GetEffectiveConfig(context.Background(), "u1", "t1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = svc.GetUserPermissions(context.Background(), "t1")
	require.Error(t, err)
}

func TestDeleteUserSettingsBlanksRecord(t *testing.T) {
	svc, tenants, users, _ := newResolutionService()
	tenants.put("t1", models.SettingsKey, `{"layout":{"sidebarPosition":"left"}}`)
	users.put("u1", models.SettingsKey, `{"layout":{"sidebarPosition":"right"}}`)

	assert.True(t, svc.DeleteUserSettings(context.Background(), "u1"))
	assert.Equal(t, "{}", users.records["u1/"+models.SettingsKey].MetaValue)

	value, err := svc.GetEffectiveConfig(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, models.ConfigSourceUser, value.Source)
	assert.True(t, value.IsOverridden)
	assert.Equal(t, "left", *value.Value.Layout.SidebarPosition)
}

func TestDeleteUserSettingsReportsFailure(t *testing.T) {
	svc, _, users, _ := newResolutionService()
	users.saveErr = errors.New("read only")
	assert.False(t, svc.DeleteUserSettings(context.Background(), "u1"))
}

func TestGetUserPermissions(t *testing.T) {
	svc, tenants, _, _ := newResolutionService()

	perms, err := svc.GetUserPermissions(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.UserPermissions{}, perms)

	tenants.put("t1", models.PermissionsKey, `{"canChangeTheme":false}`)
	perms, err = svc.GetUserPermissions(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.UserPermissions{CanChangeTheme: models.Bool(false)}, perms)
}

func TestSaveTenantSettingsAudits(t *testing.T) {
	svc, tenants, _, audit := newResolutionService()
	tenants.put("t1", models.SettingsKey, `{"theme":{"fontSize":"small"}}`)

	stored, err := svc.SaveTenantSettings(context.Background(), "t1",
		models.AppSettings{Theme: &models.ThemeSettings{FontSize: models.String("large")}},
		&models.JWTClaims{UserID: "admin-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":{"fontSize":"large"}}`, stored.MetaValue)
	assert.Equal(t, models.SettingsKey, stored.MetaKey)

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	assert.Equal(t, models.AuditActionTenantSettingsUpdate, log.Action)
	assert.Equal(t, "admin-1", *log.UserID)
	assert.Equal(t, "t1", *log.ResourceID)
	assert.JSONEq(t, `{"theme":{"fontSize":"small"}}`, string(log.OldValues))
	assert.JSONEq(t, `{"theme":{"fontSize":"large"}}`, string(log.NewValues))
}

func TestSaveTenantSettingsIgnoresAuditFailure(t *testing.T) {
	svc, _, _, audit := newResolutionService()
	audit.err = errors.New("audit down")

	_, err := svc.SaveTenantSettings(context.Background(), "t1", models.AppSettings{}, nil)
	require.NoError(t, err)
	require.Len(t, audit.logs, 1)
	assert.Nil(t, audit.logs[0].UserID)
	assert.Nil(t, audit.logs[0].OldValues)
}

func TestSaveSettingsValidatesEnums(t *testing.T) {
	svc, tenants, users, _ := newResolutionService()

	_, err := svc.SaveUserSettings(context.Background(), "u1",
		models.AppSettings{Layout: &models.LayoutSettings{SidebarPosition: models.String("top")}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.SaveTenantSettings(context.Background(), "t1",
		models.AppSettings{Theme: &models.ThemeSettings{ColorScheme: models.String("sepia")}}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	assert.Zero(t, users.saves)
	assert.Zero(t, tenants.saves)
}

func TestSaveTenantPermissions(t *testing.T) {
	svc, tenants, _, audit := newResolutionService()

	stored, err := svc.SaveTenantPermissions(context.Background(), "t1",
		models.UserPermissions{CanChangeLayout: models.Bool(true)}, &models.JWTClaims{UserID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, models.PermissionsKey, stored.MetaKey)
	assert.JSONEq(t, `{"canChangeLayout":true}`, tenants.records["t1/"+models.PermissionsKey].MetaValue)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionTenantPermissionsUpdate, audit.logs[0].Action)
}

func TestSaveUserSettingsStoreError(t *testing.T) {
	svc, _, users, _ := newResolutionService()
	users.saveErr = errors.New("disk full")

	_, err := svc.SaveUserSettings(context.Background(), "u1", models.AppSettings{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestGetMergedView(t *testing.T) {
	svc, tenants, _, _ := newResolutionService()

	view, err := svc.GetMergedView(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, &models.LayoutSettings{}, view.Settings.Layout)
	assert.Equal(t, &models.ThemeSettings{}, view.Settings.Theme)
	assert.Equal(t, models.UserPermissions{}, view.Permissions)

	tenants.put("t1", models.SettingsKey, `{"theme":{"fontSize":"large"}}`)
	tenants.put("t1", models.PermissionsKey, `{"canChangeTheme":true}`)
	view, err = svc.GetMergedView(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "large", *view.Settings.Theme.FontSize)
	assert.Equal(t, &models.LayoutSettings{}, view.Settings.Layout)
	assert.True(t, *view.Permissions.CanChangeTheme)
}
