package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	CMS       CMSConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	WhatsApp  WhatsAppConfig
	OTEL      OTELConfig
	Directory DirectoryConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	AllowedOrigins []string
	TrustedProxies []string
}

// CMSConfig holds headless CMS configuration. When BaseURL is empty the
// service runs against the JSON fixture at FixturePath.
type CMSConfig struct {
	BaseURL         string
	APIKey          string
	SiteID          string
	FixturePath     string
	Timeout         time.Duration
	CacheTTLSeconds int
	WebhookSecret   string
}

// DatabaseConfig holds database configuration for the lead store
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// WhatsAppConfig holds lead notification configuration
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	NotifyTo      string
	TemplateName  string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// DirectoryConfig tunes the in-memory directory dataset
type DirectoryConfig struct {
	RefreshInterval time.Duration
	RefreshDebounce time.Duration
	MaxPageSize     int
}

// Load reads configuration from the environment, with an optional .env
// file in the working directory filling in anything unset.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("CMS_BASE_URL", "")
	v.SetDefault("CMS_API_KEY", "")
	v.SetDefault("CMS_SITE_ID", "")
	v.SetDefault("CMS_FIXTURE_PATH", "")
	v.SetDefault("CMS_TIMEOUT", "10s")
	v.SetDefault("CMS_CACHE_TTL_SECONDS", 300)
	v.SetDefault("CMS_WEBHOOK_SECRET", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "hospital_directory")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("TYPESENSE_URL", "")
	v.SetDefault("TYPESENSE_API_KEY", "")

	v.SetDefault("WHATSAPP_ACCESS_TOKEN", "")
	v.SetDefault("WHATSAPP_PHONE_NUMBER_ID", "")
	v.SetDefault("WHATSAPP_NOTIFY_TO", "")
	v.SetDefault("WHATSAPP_LEAD_TEMPLATE", "new_patient_lead")

	v.SetDefault("OTEL_SERVICE_NAME", "hospital-directory")
	v.SetDefault("OTEL_SERVICE_VERSION", "1.0.0")
	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("OTEL_ENABLED", false)

	v.SetDefault("DIRECTORY_REFRESH_INTERVAL", "5m")
	v.SetDefault("DIRECTORY_REFRESH_DEBOUNCE", "2s")
	v.SetDefault("DIRECTORY_MAX_PAGE_SIZE", 50)

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			Env:            v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		CMS: CMSConfig{
			BaseURL:         strings.TrimRight(v.GetString("CMS_BASE_URL"), "/"),
			APIKey:          v.GetString("CMS_API_KEY"),
			SiteID:          v.GetString("CMS_SITE_ID"),
			FixturePath:     v.GetString("CMS_FIXTURE_PATH"),
			Timeout:         v.GetDuration("CMS_TIMEOUT"),
			CacheTTLSeconds: v.GetInt("CMS_CACHE_TTL_SECONDS"),
			WebhookSecret:   v.GetString("CMS_WEBHOOK_SECRET"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Typesense: TypesenseConfig{
			URL:    v.GetString("TYPESENSE_URL"),
			APIKey: v.GetString("TYPESENSE_API_KEY"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   v.GetString("WHATSAPP_ACCESS_TOKEN"),
			PhoneNumberID: v.GetString("WHATSAPP_PHONE_NUMBER_ID"),
			NotifyTo:      v.GetString("WHATSAPP_NOTIFY_TO"),
			TemplateName:  v.GetString("WHATSAPP_LEAD_TEMPLATE"),
		},
		OTEL: OTELConfig{
			ServiceName:    v.GetString("OTEL_SERVICE_NAME"),
			ServiceVersion: v.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:       v.GetString("OTEL_ENDPOINT"),
			Enabled:        v.GetBool("OTEL_ENABLED"),
		},
		Directory: DirectoryConfig{
			RefreshInterval: v.GetDuration("DIRECTORY_REFRESH_INTERVAL"),
			RefreshDebounce: v.GetDuration("DIRECTORY_REFRESH_DEBOUNCE"),
			MaxPageSize:     v.GetInt("DIRECTORY_MAX_PAGE_SIZE"),
		},
	}

	if cfg.CMS.BaseURL == "" && cfg.CMS.FixturePath == "" {
		return nil, fmt.Errorf("either CMS_BASE_URL or CMS_FIXTURE_PATH must be set")
	}
	if cfg.Directory.MaxPageSize <= 0 {
		cfg.Directory.MaxPageSize = 50
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Typesense endpoint was configured
func (c *TypesenseConfig) Enabled() bool {
	return c.URL != "" && c.APIKey != ""
}

// Enabled reports whether lead notifications can be sent
func (c *WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.NotifyTo != ""
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
