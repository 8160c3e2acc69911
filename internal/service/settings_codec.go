package service

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/noah-isme/tenant-config-api/internal/models"
)

// DecodeSettings parses a stored settings document. Stored values come from older clients
// as well, so anything unreadable is treated as "no settings": empty, null, non-object and
// invalid JSON all decode to the zero AppSettings. Sections decode independently; a broken
// theme does not cost the user their layout.
func DecodeSettings(raw string) models.AppSettings {
	var out models.AppSettings
	root, ok := parseObject(raw)
	if !ok {
		return out
	}

	if section := root.Get("layout"); section.IsObject() {
		var layout models.LayoutSettings
		if err := json.Unmarshal([]byte(section.Raw), &layout); err == nil {
			out.Layout = &layout
		}
	}
	if section := root.Get("theme"); section.IsObject() {
		var theme models.ThemeSettings
		if err := json.Unmarshal([]byte(section.Raw), &theme); err == nil {
			out.Theme = &theme
		}
	}
	return out
}

// DecodePermissions parses a stored permissions document with the same leniency as
// DecodeSettings.
func DecodePermissions(raw string) models.UserPermissions {
	var out models.UserPermissions
	root, ok := parseObject(raw)
	if !ok {
		return out
	}
	if err := json.Unmarshal([]byte(root.Raw), &out); err != nil {
		return models.UserPermissions{}
	}
	return out
}

// EncodeSettings serialises settings for storage.
func EncodeSettings(settings models.AppSettings) (string, error) {
	return encode(settings)
}

// EncodePermissions serialises permissions for storage.
func EncodePermissions(permissions models.UserPermissions) (string, error) {
	return encode(permissions)
}

func encode(v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func parseObject(raw string) (gjson.Result, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return gjson.Result{}, false
	}
	root := gjson.Parse(raw)
	return root, root.IsObject()
}
