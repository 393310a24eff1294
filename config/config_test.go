package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: true,
		},
		{
			name: "debug gin mode",
			config: &Config{
				Server: ServerConfig{GinMode: "debug"},
			},
			expected: true,
		},
		{
			name: "production environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "production"},
			},
			expected: false,
		},
		{
			name: "release mode",
			config: &Config{
				Server: ServerConfig{GinMode: "release", AppEnv: "production"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.IsDevelopment()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{
				Port:           "8082",
				BaseURL:        "https://app.lexpravo.ru",
				AllowedOrigins: []string{"https://app.lexpravo.ru"},
			},
			Database: DatabaseConfig{URL: "postgres://localhost/intake"},
			Wizard: WizardConfig{
				DraftTTLHours:    24,
				MaxFiles:         5,
				MaxFileSizeBytes: 10 * 1024 * 1024,
			},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing database url",
			mutate:      func(c *Config) { c.Database.URL = "" },
			expectError: true,
			errorMsg:    "DATABASE_URL is required",
		},
		{
			name:        "missing cors origins",
			mutate:      func(c *Config) { c.Server.AllowedOrigins = nil },
			expectError: true,
			errorMsg:    "ALLOWED_CORS_ORIGINS is required",
		},
		{
			name:        "init data required without bot token",
			mutate:      func(c *Config) { c.Telegram.RequireInitData = true },
			expectError: true,
			errorMsg:    "TELEGRAM_BOT_TOKEN is required",
		},
		{
			name:        "jwt secret without staff password",
			mutate:      func(c *Config) { c.AdminSession.JWTSecret = "secret" },
			expectError: true,
			errorMsg:    "ADMIN_STAFF_PASSWORD is required",
		},
		{
			name:        "non-positive draft ttl",
			mutate:      func(c *Config) { c.Wizard.DraftTTLHours = 0 },
			expectError: true,
			errorMsg:    "DRAFT_TTL_HOURS must be positive",
		},
		{
			name:        "non-positive attachment limit",
			mutate:      func(c *Config) { c.Wizard.MaxFiles = 0 },
			expectError: true,
			errorMsg:    "MAX_ATTACHMENTS must be positive",
		},
		{
			name:        "profiling enabled without endpoint",
			mutate:      func(c *Config) { c.Profiling.Enabled = true },
			expectError: true,
			errorMsg:    "PROFILING_ENDPOINT is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("DATABASE_URL", "postgres://localhost/intake")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "8082", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "production", cfg.Server.AppEnv)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 24, cfg.Wizard.DraftTTLHours)
	assert.Equal(t, 5, cfg.Wizard.MaxFiles)
	assert.Equal(t, int64(10*1024*1024), cfg.Wizard.MaxFileSizeBytes)
	assert.Equal(t, []string{"https://app.lexpravo.ru"}, cfg.Server.AllowedOrigins)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("DATABASE_URL", "postgres://db.internal/intake")
	os.Setenv("PORT", "9000")
	os.Setenv("APP_ENV", "development")
	os.Setenv("ALLOWED_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	os.Setenv("DRAFT_TTL_HOURS", "48")
	os.Setenv("TELEGRAM_BOT_TOKEN", "12345:token")
	os.Setenv("TELEGRAM_REQUIRE_INIT_DATA", "true")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 48, cfg.Wizard.DraftTTLHours)
	assert.True(t, cfg.Telegram.RequireInitData)
}
