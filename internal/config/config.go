package config

import (
	"fmt"
	"os"
	"path/filepath"

	"genre-schedule/internal/service"

	"gopkg.in/yaml.v3"
)

// DefaultFallbackPath is used when no input path is given on the command line.
const DefaultFallbackPath = "data/TV_show_data.csv"

// Config holds all analyzer configuration.
type Config struct {
	// Input used when the CLI gets no path argument
	FallbackPath string `yaml:"fallback_path"`

	Logging  LoggingConfig            `yaml:"logging"`
	Server   ServerConfig             `yaml:"server"`
	Database service.DataSourceConfig `yaml:"database"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int64    `yaml:"max_upload_mb"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		FallbackPath: DefaultFallbackPath,
		Logging: LoggingConfig{
			Level: "warn",
		},
		Server: ServerConfig{
			Port: 8001,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
			MaxUploadMB: 10,
		},
		Database: service.DataSourceConfig{
			Type:    "postgres",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
	}
}

// Load loads configuration from a YAML file. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration for obviously wrong values.
func (c *Config) Validate() error {
	if c.FallbackPath == "" {
		return fmt.Errorf("fallback_path must not be empty")
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP API.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
