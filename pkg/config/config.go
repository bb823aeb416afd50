package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Portal Portal
	Store  StoreConfig
	Redis  RedisConfig
	Poller PollerConfig
	Notify NotifyConfig
	Home   HomeConfig
	CORS   CORSConfig
	Log    LogConfig
}

// Portal points the client at the university web API.
type Portal struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig selects and tunes the persistent key-value backend.
type StoreConfig struct {
	// Backend is "file" or "redis".
	Backend string
	// FilePath is the JSON store location for the file backend.
	FilePath string
	// Secret keys the at-rest encryption of stored credentials.
	Secret string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PollerConfig drives the background grade check.
type PollerConfig struct {
	Enabled    bool
	Cron       string
	MaxRetries int
	RetryDelay time.Duration
}

// NotifyConfig configures the webhook notification sink.
type NotifyConfig struct {
	WebhookURL     string
	WebhookTimeout time.Duration
}

// HomeConfig tunes the TTL cache in front of home-screen data.
type HomeConfig struct {
	CacheTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Portal = Portal{
		BaseURL: strings.TrimRight(v.GetString("PORTAL_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("PORTAL_TIMEOUT"), 30*time.Second),
	}

	cfg.Store = StoreConfig{
		Backend:  v.GetString("STORE_BACKEND"),
		FilePath: v.GetString("STORE_FILE_PATH"),
		Secret:   v.GetString("STORE_SECRET"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Poller = PollerConfig{
		Enabled:    v.GetBool("POLLER_ENABLED"),
		Cron:       v.GetString("POLLER_CRON"),
		MaxRetries: v.GetInt("POLLER_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("POLLER_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Notify = NotifyConfig{
		WebhookURL:     v.GetString("NOTIFY_WEBHOOK_URL"),
		WebhookTimeout: parseDuration(v.GetString("NOTIFY_WEBHOOK_TIMEOUT"), 10*time.Second),
	}

	cfg.Home = HomeConfig{
		CacheTTL: parseDuration(v.GetString("HOME_CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("PORTAL_BASE_URL", "https://ruppinet.ruppin.ac.il/Portals")
	v.SetDefault("PORTAL_TIMEOUT", "30s")

	v.SetDefault("STORE_BACKEND", "file")
	v.SetDefault("STORE_FILE_PATH", "./data/store.json")
	v.SetDefault("STORE_SECRET", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("POLLER_ENABLED", true)
	v.SetDefault("POLLER_CRON", "*/15 * * * *")
	v.SetDefault("POLLER_MAX_RETRIES", 3)
	v.SetDefault("POLLER_RETRY_DELAY", "30s")

	v.SetDefault("NOTIFY_WEBHOOK_URL", "")
	v.SetDefault("NOTIFY_WEBHOOK_TIMEOUT", "10s")

	v.SetDefault("HOME_CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
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
