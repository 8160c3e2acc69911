package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tenant-config-api/internal/models"
)

func TestMergeSettingsEmpty(t *testing.T) {
	got := MergeSettings(models.AppSettings{}, models.AppSettings{})
	assert.Equal(t, models.AppSettings{Layout: &models.LayoutSettings{}, Theme: &models.ThemeSettings{}}, got)

	raw, err := EncodeSettings(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"layout":{},"theme":{}}`, raw)
}

func TestMergeSettingsFieldLevelOverride(t *testing.T) {
	tenant := models.AppSettings{Theme: &models.ThemeSettings{FontSize: models.String("large")}}
	user := models.AppSettings{Theme: &models.ThemeSettings{ColorScheme: models.String("dark")}}

	got := MergeSettings(tenant, user)
	assert.Equal(t, &models.ThemeSettings{
		FontSize:    models.String("large"),
		ColorScheme: models.String("dark"),
	}, got.Theme)
	assert.Equal(t, &models.LayoutSettings{}, got.Layout)
}

func TestMergeSettingsUserWinsIncludingFalse(t *testing.T) {
	tenant := models.AppSettings{Layout: &models.LayoutSettings{
		SidebarCollapsed: models.Bool(true),
		SidebarPosition:  models.String("left"),
		HeaderFixed:      models.Bool(true),
	}}
	user := models.AppSettings{Layout: &models.LayoutSettings{
		SidebarCollapsed: models.Bool(false),
		FooterVisible:    models.Bool(true),
	}}

	got := MergeSettings(tenant, user)
	require.NotNil(t, got.Layout)
	// every user key carries the user value
	assert.False(t, *got.Layout.SidebarCollapsed)
	assert.True(t, *got.Layout.FooterVisible)
	// tenant-only keys carry the tenant value
	assert.Equal(t, "left", *got.Layout.SidebarPosition)
	assert.True(t, *got.Layout.HeaderFixed)
}

func TestMergeSettingsDoesNotAliasInputs(t *testing.T) {
	tenant := models.AppSettings{Theme: &models.ThemeSettings{PrimaryColor: models.String("#111")}}
	user := models.AppSettings{Layout: &models.LayoutSettings{HeaderFixed: models.Bool(true)}}

	got := MergeSettings(tenant, user)
	*got.Theme.PrimaryColor = "#fff"
	*got.Layout.HeaderFixed = false

	assert.Equal(t, "#111", *tenant.Theme.PrimaryColor)
	assert.True(t, *user.Layout.HeaderFixed)
	assert.Nil(t, tenant.Layout)
	assert.Nil(t, user.Theme)
}
