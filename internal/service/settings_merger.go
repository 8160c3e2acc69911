package service

import "github.com/noah-isme/tenant-config-api/internal/models"

// MergeSettings overlays user settings on tenant defaults. Layout and theme merge
// independently and field by field: a field set by the user wins, any other field keeps
// the tenant value. Both sections are always present in the result, possibly empty.
// Neither input is modified and the result shares no pointers with them.
func MergeSettings(tenant, user models.AppSettings) models.AppSettings {
	return models.AppSettings{
		Layout: mergeLayout(tenant.Layout, user.Layout),
		Theme:  mergeTheme(tenant.Theme, user.Theme),
	}
}

func mergeLayout(base, over *models.LayoutSettings) *models.LayoutSettings {
	if base == nil {
		base = &models.LayoutSettings{}
	}
	if over == nil {
		over = &models.LayoutSettings{}
	}
	return &models.LayoutSettings{
		SidebarCollapsed: pick(base.SidebarCollapsed, over.SidebarCollapsed),
		SidebarPosition:  pick(base.SidebarPosition, over.SidebarPosition),
		HeaderFixed:      pick(base.HeaderFixed, over.HeaderFixed),
		FooterVisible:    pick(base.FooterVisible, over.FooterVisible),
	}
}

func mergeTheme(base, over *models.ThemeSettings) *models.ThemeSettings {
	if base == nil {
		base = &models.ThemeSettings{}
	}
	if over == nil {
		over = &models.ThemeSettings{}
	}
	return &models.ThemeSettings{
		ColorScheme:  pick(base.ColorScheme, over.ColorScheme),
		PrimaryColor: pick(base.PrimaryColor, over.PrimaryColor),
		FontSize:     pick(base.FontSize, over.FontSize),
	}
}

// pick returns a copy of over when set, else a copy of base.
func pick[T any](base, over *T) *T {
	src := base
	if over != nil {
		src = over
	}
	if src == nil {
		return nil
	}
	v := *src
	return &v
}
