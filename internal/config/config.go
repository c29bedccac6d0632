// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	APIKey         string `yaml:"-"` // Loaded from environment
}

type BookingConfig struct {
	// UTCOffset is the fixed regional offset applied to booking
	// timestamps, e.g. "-03:00". The system targets a single timezone
	// region; the offset is configuration, never derived from slot data.
	UTCOffset string `yaml:"utc_offset"`
}

type SyncConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CronExpr string `yaml:"cron_expr"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
	} `yaml:"app"`

	Backend  BackendConfig  `yaml:"backend"`
	Booking  BookingConfig  `yaml:"booking"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`

	// TemplateSource selects what backs the reconciler's fallback:
	// "local" (the SQLite store) or "remote" (the backend template API).
	TemplateSource string `yaml:"template_source"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.Backend.APIKey = os.Getenv("BACKEND_API_KEY")

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Booking.UTCOffset == "" {
		cfg.Booking.UTCOffset = "-03:00"
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 10
	}
	if cfg.TemplateSource == "" {
		cfg.TemplateSource = "remote"
	}
	if cfg.Sync.CronExpr == "" {
		cfg.Sync.CronExpr = "0 */6 * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required")
	}
	if _, err := c.Region(); err != nil {
		return err
	}

	switch c.TemplateSource {
	case "remote":
	case "local":
		if c.Database.Driver != "sqlite" {
			return fmt.Errorf("local template source requires the sqlite database driver, got %q", c.Database.Driver)
		}
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported template source: %s", c.TemplateSource)
	}

	if c.Sync.Enabled && c.TemplateSource != "local" {
		return fmt.Errorf("template sync requires the local template source")
	}
	return nil
}

// Region resolves the configured fixed UTC offset into a time.Location.
func (c *Config) Region() (*time.Location, error) {
	raw := c.Booking.UTCOffset
	parsed, err := time.Parse("-07:00", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid utc_offset %q: expected ±HH:MM", raw)
	}
	_, offset := parsed.Zone()
	return time.FixedZone("UTC"+raw, offset), nil
}

// BackendTimeout returns the HTTP timeout for backend calls.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}
