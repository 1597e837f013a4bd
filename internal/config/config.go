// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Storage provider selectors.
const (
	// StorageLocal stores artifacts on local disk, served via /files.
	StorageLocal = "local"
	// StorageS3 stores artifacts in an S3 bucket with public-read visibility.
	StorageS3 = "s3"
)

// ErrInvalidStorageProvider is returned when STORAGE_PROVIDER is not a
// recognized selector.
var ErrInvalidStorageProvider = errors.New("config: STORAGE_PROVIDER must be \"local\" or \"s3\"")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// AuthToken is the shared secret for bearer auth. Empty disables auth.
	AuthToken string `env:"API_AUTH_TOKEN" json:"-"` // Masked in JSON

	// Provider settings. An empty API key enables simulation mode.
	VeoAPIKey  string `env:"VEO_API_KEY" json:"-"` // Masked in JSON
	VeoBaseURL string `env:"VEO_BASE_URL" json:"veo_base_url,omitempty"`

	// CallbackURL is the global default callback target for job outcomes.
	CallbackURL string `env:"CALLBACK_URL" json:"callback_url,omitempty"`

	// Storage settings
	StorageProvider string `env:"STORAGE_PROVIDER, default=local" json:"storage_provider"`
	LocalStorageDir string `env:"LOCAL_STORAGE_DIR, default=/tmp/videogen" json:"local_storage_dir"`
	// PublicBaseURL is the externally reachable base for local file links.
	// Defaults to http://localhost:<port>.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" json:"public_base_url"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// SimulationEnabled returns true when no provider credential is configured.
// Jobs then complete with a placeholder artifact instead of calling out.
func (c *Config) SimulationEnabled() bool {
	return c.VeoAPIKey == ""
}

// S3Enabled returns true if the S3 storage backend is selected.
func (c *Config) S3Enabled() bool {
	return c.StorageProvider == StorageS3
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	if c.StorageProvider != StorageLocal && c.StorageProvider != StorageS3 {
		return ErrInvalidStorageProvider
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, StorageProvider: %s, LocalStorageDir: %s, PublicBaseURL: %s, S3Bucket: %s, S3Region: %s, Simulation: %t, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.StorageProvider,
		c.LocalStorageDir,
		c.PublicBaseURL,
		c.S3Bucket,
		c.S3Region,
		c.SimulationEnabled(),
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
