package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper(t *testing.T, env map[string]string) *viper.Viper {
	t.Helper()
	for key, value := range env {
		t.Setenv(key, value)
	}
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := fromViper(newTestViper(t, nil))

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 20*time.Minute, cfg.Static.HostCacheTTL)
	assert.Equal(t, time.Hour, cfg.Static.TemplateCacheTTL)
	assert.Equal(t, HostKeySubdomain, cfg.Static.HostKeyMode)
	assert.True(t, cfg.Static.Enabled)
	assert.Equal(t, 5.0, cfg.Settings.WriteRPS)
	assert.Equal(t, 10, cfg.Settings.WriteBurst)
	assert.False(t, cfg.DomainConfig.CacheEnabled)
}

func TestFromViperOverrides(t *testing.T) {
	cfg := fromViper(newTestViper(t, map[string]string{
		"API_PREFIX":          "/api/",
		"HOST_CACHE_TTL":      "90s",
		"TEMPLATE_CACHE_TTL":  "garbage",
		"HOST_CACHE_KEY_MODE": "ROOT",
		"ALLOWED_ORIGINS":     "https://a.example.com, ,https://b.example.com",
	}))

	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 90*time.Second, cfg.Static.HostCacheTTL)
	assert.Equal(t, time.Hour, cfg.Static.TemplateCacheTTL)
	assert.Equal(t, HostKeyRoot, cfg.Static.HostKeyMode)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestFromViperUnknownKeyModeFallsBack(t *testing.T) {
	cfg := fromViper(newTestViper(t, map[string]string{"HOST_CACHE_KEY_MODE": "apex"}))
	assert.Equal(t, HostKeySubdomain, cfg.Static.HostKeyMode)
}
