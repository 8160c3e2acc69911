package models

import "time"

// Settings storage coordinates. Every settings record lives in one section and is keyed
// by either SettingsKey or PermissionsKey.
const (
	SettingsSection = "app_settings"
	SettingsKey     = "settings"
	PermissionsKey  = "permissions"
)

// SidebarPosition values.
const (
	SidebarLeft  = "left"
	SidebarRight = "right"
)

// ColorScheme values.
const (
	ColorSchemeLight = "light"
	ColorSchemeDark  = "dark"
)

// FontSize values.
const (
	FontSizeSmall  = "small"
	FontSizeMedium = "medium"
	FontSizeLarge  = "large"
)

// LayoutSettings holds layout preferences. A nil field means "not set" so that merges can
// tell an explicit false apart from an absent value.
type LayoutSettings struct {
	SidebarCollapsed *bool   `json:"sidebarCollapsed,omitempty"`
	SidebarPosition  *string `json:"sidebarPosition,omitempty" validate:"omitempty,oneof=left right"`
	HeaderFixed      *bool   `json:"headerFixed,omitempty"`
	FooterVisible    *bool   `json:"footerVisible,omitempty"`
}

// ThemeSettings holds theme preferences.
type ThemeSettings struct {
	ColorScheme  *string `json:"colorScheme,omitempty" validate:"omitempty,oneof=light dark"`
	PrimaryColor *string `json:"primaryColor,omitempty" validate:"omitempty,max=64"`
	FontSize     *string `json:"fontSize,omitempty" validate:"omitempty,oneof=small medium large"`
}

// AppSettings is the persisted settings document for a tenant or a user.
type AppSettings struct {
	Layout *LayoutSettings `json:"layout,omitempty"`
	Theme  *ThemeSettings  `json:"theme,omitempty"`
}

// UserPermissions controls which settings users of a tenant may change.
type UserPermissions struct {
	CanChangeLayout *bool `json:"canChangeLayout,omitempty"`
	CanChangeTheme  *bool `json:"canChangeTheme,omitempty"`
}

// ConfigSource names the owner a resolved config came from.
type ConfigSource string

const (
	ConfigSourceTenant ConfigSource = "tenant"
	ConfigSourceUser   ConfigSource = "user"
)

// ConfigValue is the result of a settings resolution.
type ConfigValue struct {
	Value        AppSettings  `json:"value"`
	Source       ConfigSource `json:"source"`
	IsOverridden bool         `json:"isOverridden"`
}

// SettingsScope selects the tenant or user meta table.
type SettingsScope string

const (
	ScopeTenant SettingsScope = "tenant"
	ScopeUser   SettingsScope = "user"
)

// SettingsRecord is one stored (owner, section, key) -> JSON text row.
type SettingsRecord struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	Section   string    `db:"section" json:"section"`
	MetaKey   string    `db:"meta_key" json:"metaKey"`
	MetaValue string    `db:"meta_value" json:"metaValue"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
