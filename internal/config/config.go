// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the client.
type Config struct {
	// Environment: "debug" or "release". Controls logger encoding defaults.
	AppEnv string `mapstructure:"APP_ENV"`

	// API Configuration
	APIBaseURL    string        `mapstructure:"API_BASE_URL"`
	HTTPTimeout   time.Duration `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	HTTPUserAgent string        `mapstructure:"HTTP_USER_AGENT"`

	// Local store Configuration
	LocalDBPath string `mapstructure:"LOCAL_DB_PATH"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Jobs
	NotificationRefreshSchedule string `mapstructure:"NOTIFICATION_REFRESH_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("APP_ENV", "debug")
	v.SetDefault("API_BASE_URL", "https://sipalingpreloved.my.id/api")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("HTTP_USER_AGENT", "SiPalingPreloved-Client/1.0")
	v.SetDefault("LOCAL_DB_PATH", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	// Every 5 minutes keeps the unread badge warm without hammering the backend.
	v.SetDefault("NOTIFICATION_REFRESH_SCHEDULE", "@every 5m")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.HTTPTimeout = time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second

	// Resolve a per-user local database path when none is configured.
	if strings.TrimSpace(cfg.LocalDBPath) == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		cfg.LocalDBPath = filepath.Join(base, "sipalingpreloved", "client.db")
	}

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("FATAL: API_BASE_URL is not set. The client cannot reach the backend without it")
	}

	return &cfg, nil
}
