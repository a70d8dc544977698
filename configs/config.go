package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileConfig defines the structure loaded from the YAML configuration file.
type FileConfig struct {
	API struct {
		Title       string `yaml:"title"`
		Version     string `yaml:"version"`
		Description string `yaml:"description,omitempty"`
	} `yaml:"api"`
	BaseURL  string `yaml:"base_url"`
	Internal struct {
		BaseURL  string `yaml:"base_url"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"internal"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Fields are loaded from environment variables with
// the prefix "OASBRIDGE_", overriding file settings.
type Config struct {
	// Config file path (loaded first from env).
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	// External surface.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	BaseURL    string `envconfig:"BASE_URL" default:"http://localhost:8080/api"`

	// Internal router the translated requests are forwarded to.
	InternalBaseURL  string `envconfig:"INTERNAL_BASE_URL" default:"http://localhost:3000"`
	InternalEndpoint string `envconfig:"INTERNAL_ENDPOINT" default:"/internal"`

	// Document info.
	APITitle       string `envconfig:"API_TITLE" default:"oasbridge"`
	APIVersion     string `envconfig:"API_VERSION" default:"0.1.0"`
	APIDescription string `envconfig:"API_DESCRIPTION"`

	HTTPClientTimeout  time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	ServerReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	ServerWriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	ServerIdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`

	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string `envconfig:"LOG_LEVEL" default:"info"`
}

// ParsedLogLevel returns the slog.Level for the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration first from environment variables (to get the
// file path), then merges in the YAML file when one is configured.
// Explicitly set environment variables win over file settings.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("oasbridge", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if cfg.ConfigFilePath != "" {
		raw, err := os.ReadFile(cfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", cfg.ConfigFilePath, err)
		}
		var fileCfg FileConfig
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", cfg.ConfigFilePath, err)
		}
		slog.Info("Loaded configuration from file.", "path", cfg.ConfigFilePath)

		// File settings fill in anything the environment did not set
		// explicitly; env vars always win.
		applyFile := func(envKey, fileValue string, dst *string) {
			if fileValue == "" {
				return
			}
			if _, set := os.LookupEnv("OASBRIDGE_" + envKey); set {
				return
			}
			*dst = fileValue
		}
		applyFile("API_TITLE", fileCfg.API.Title, &cfg.APITitle)
		applyFile("API_VERSION", fileCfg.API.Version, &cfg.APIVersion)
		applyFile("API_DESCRIPTION", fileCfg.API.Description, &cfg.APIDescription)
		applyFile("BASE_URL", fileCfg.BaseURL, &cfg.BaseURL)
		applyFile("INTERNAL_BASE_URL", fileCfg.Internal.BaseURL, &cfg.InternalBaseURL)
		applyFile("INTERNAL_ENDPOINT", fileCfg.Internal.Endpoint, &cfg.InternalEndpoint)
	}

	return &cfg, nil
}
