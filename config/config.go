package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	ObjectStorage ObjectStorageConfig
	Telegram      TelegramConfig
	AdminSession  AdminSessionConfig
	Payments      PaymentsConfig
	EventTriggers EventTriggerConfig
	Wizard        WizardConfig
	Cache         CacheConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type ObjectStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

type TelegramConfig struct {
	BotToken        string
	AdminChatID     int64
	RequireInitData bool
}

type AdminSessionConfig struct {
	JWTSecret       string
	JWTIssuer       string
	SessionTTLHours int
	CookieDomain    string
	CookieSecure    bool
	StaffEmail      string
	StaffName       string
	StaffPassword   string
}

type PaymentsConfig struct {
	GatewayBaseURL string
}

type EventTriggerConfig struct {
	ApplicationCreatedTriggerURL string
	ClientNotifyTriggerURL       string
}

type WizardConfig struct {
	DraftTTLHours    int
	MaxFiles         int
	MaxFileSizeBytes int64
}

type CacheConfig struct {
	CategoryTTLSeconds int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	CollectorEndpoint string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8082")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://app.lexpravo.ru")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://app.lexpravo.ru")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("TELEGRAM_REQUIRE_INIT_DATA", false)
	v.SetDefault("DRAFT_TTL_HOURS", 24)
	v.SetDefault("MAX_ATTACHMENTS", 5)
	v.SetDefault("MAX_ATTACHMENT_SIZE_BYTES", 10*1024*1024)
	v.SetDefault("CATEGORY_CACHE_TTL", 600)
	v.SetDefault("JWT_ISSUER", "lexpravo-intake-api")
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "lexpravo-intake-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "lexpravo")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("PROFILING_ENABLED", false)
	v.SetDefault("PROFILING_APP_NAME", "lexpravo-intake-api")
	v.SetDefault("PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			MinConns: v.GetInt32("DB_MIN_CONNS"),
		},
		ObjectStorage: ObjectStorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
		},
		Telegram: TelegramConfig{
			BotToken:        v.GetString("TELEGRAM_BOT_TOKEN"),
			AdminChatID:     v.GetInt64("TELEGRAM_ADMIN_CHAT_ID"),
			RequireInitData: v.GetBool("TELEGRAM_REQUIRE_INIT_DATA"),
		},
		AdminSession: AdminSessionConfig{
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTIssuer:       v.GetString("JWT_ISSUER"),
			SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
			StaffEmail:      v.GetString("ADMIN_STAFF_EMAIL"),
			StaffName:       v.GetString("ADMIN_STAFF_NAME"),
			StaffPassword:   v.GetString("ADMIN_STAFF_PASSWORD"),
		},
		Payments: PaymentsConfig{
			GatewayBaseURL: v.GetString("PAYMENT_GATEWAY_BASE_URL"),
		},
		EventTriggers: EventTriggerConfig{
			ApplicationCreatedTriggerURL: v.GetString("APPLICATION_CREATED_TRIGGER_URL"),
			ClientNotifyTriggerURL:       v.GetString("CLIENT_NOTIFY_TRIGGER_URL"),
		},
		Wizard: WizardConfig{
			DraftTTLHours:    v.GetInt("DRAFT_TTL_HOURS"),
			MaxFiles:         v.GetInt("MAX_ATTACHMENTS"),
			MaxFileSizeBytes: v.GetInt64("MAX_ATTACHMENT_SIZE_BYTES"),
		},
		Cache: CacheConfig{
			CategoryTTLSeconds: v.GetInt("CATEGORY_CACHE_TTL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			CollectorEndpoint: v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("PROFILING_ENABLED"),
			Endpoint:              v.GetString("PROFILING_ENDPOINT"),
			AppName:               v.GetString("PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	// The wizard works without Telegram, but requiring init-data auth
	// without a bot token to check it against can never succeed
	if c.Telegram.RequireInitData && c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required when TELEGRAM_REQUIRE_INIT_DATA is set")
	}

	if c.AdminSession.JWTSecret != "" && c.AdminSession.StaffPassword == "" {
		return fmt.Errorf("ADMIN_STAFF_PASSWORD is required when JWT_SECRET is set")
	}

	if c.Wizard.DraftTTLHours <= 0 {
		return fmt.Errorf("DRAFT_TTL_HOURS must be positive")
	}
	if c.Wizard.MaxFiles <= 0 {
		return fmt.Errorf("MAX_ATTACHMENTS must be positive")
	}
	if c.Wizard.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("MAX_ATTACHMENT_SIZE_BYTES must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
