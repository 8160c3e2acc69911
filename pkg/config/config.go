package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Host cache key modes.
const (
	HostKeySubdomain = "subdomain"
	HostKeyRoot      = "root"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Settings     SettingsConfig
	Static       StaticConfig
	DomainConfig DomainConfigCacheConfig
	Warmup       WarmupConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SettingsConfig tunes the tenant/user settings API.
type SettingsConfig struct {
	WriteRPS   float64
	WriteBurst int
}

// StaticConfig controls the per-host index.html rendering.
type StaticConfig struct {
	Enabled          bool
	Dir              string
	Index            string
	HostCacheTTL     time.Duration
	TemplateCacheTTL time.Duration
	HostKeyMode      string
	Debug            bool
}

// DomainConfigCacheConfig toggles the shared Redis cache in front of domain config lookups.
type DomainConfigCacheConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// WarmupConfig sizes the page warm-up queue.
type WarmupConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = strings.TrimRight(v.GetString("API_PREFIX"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	writeRPS := v.GetFloat64("SETTINGS_WRITE_RPS")
	if writeRPS <= 0 {
		writeRPS = 5
	}
	writeBurst := v.GetInt("SETTINGS_WRITE_BURST")
	if writeBurst <= 0 {
		writeBurst = 10
	}
	cfg.Settings = SettingsConfig{WriteRPS: writeRPS, WriteBurst: writeBurst}

	keyMode := strings.ToLower(strings.TrimSpace(v.GetString("HOST_CACHE_KEY_MODE")))
	if keyMode != HostKeyRoot {
		keyMode = HostKeySubdomain
	}
	cfg.Static = StaticConfig{
		Enabled:          v.GetBool("STATIC_ENABLED"),
		Dir:              v.GetString("STATIC_DIR"),
		Index:            v.GetString("STATIC_INDEX"),
		HostCacheTTL:     parseDuration(v.GetString("HOST_CACHE_TTL"), 20*time.Minute),
		TemplateCacheTTL: parseDuration(v.GetString("TEMPLATE_CACHE_TTL"), time.Hour),
		HostKeyMode:      keyMode,
		Debug:            v.GetBool("STATIC_DEBUG"),
	}

	cfg.DomainConfig = DomainConfigCacheConfig{
		CacheEnabled: v.GetBool("DOMAIN_CONFIG_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("DOMAIN_CONFIG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Warmup = WarmupConfig{
		Workers:    v.GetInt("WARMUP_WORKERS"),
		MaxRetries: v.GetInt("WARMUP_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("WARMUP_RETRY_DELAY"), 2*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tenant_config")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SETTINGS_WRITE_RPS", 5)
	v.SetDefault("SETTINGS_WRITE_BURST", 10)

	v.SetDefault("STATIC_ENABLED", true)
	v.SetDefault("STATIC_DIR", "./public")
	v.SetDefault("STATIC_INDEX", "index.html")
	v.SetDefault("HOST_CACHE_TTL", "20m")
	v.SetDefault("TEMPLATE_CACHE_TTL", "1h")
	v.SetDefault("HOST_CACHE_KEY_MODE", HostKeySubdomain)
	v.SetDefault("STATIC_DEBUG", false)

	v.SetDefault("DOMAIN_CONFIG_CACHE_ENABLED", false)
	v.SetDefault("DOMAIN_CONFIG_CACHE_TTL", "5m")

	v.SetDefault("WARMUP_WORKERS", 1)
	v.SetDefault("WARMUP_MAX_RETRIES", 2)
	v.SetDefault("WARMUP_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
