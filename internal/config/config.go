// Package config loads the scheduler's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Backup      BackupConfig      `yaml:"backup"`
	Redis       RedisConfig       `yaml:"redis"`
	Optimizer   OptimizerConfig   `yaml:"optimizer"`
	BusinessDay BusinessDayConfig `yaml:"business_day"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// APIKey, when set, is required in the x-api-key header of /api/ routes.
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	StoragePath   string        `yaml:"storage_path"`
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// OptimizerConfig points at the external solver. Mode "preview" uses the
// local greedy assigner instead of calling BaseURL.
type OptimizerConfig struct {
	Mode            string        `yaml:"mode"`
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	Timeout         time.Duration `yaml:"timeout"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	RatePerSecond   float64       `yaml:"rate_per_second"`
	RateBurst       int           `yaml:"rate_burst"`
}

type BusinessDayConfig struct {
	StartHour int    `yaml:"start_hour"`
	EndHour   int    `yaml:"end_hour"`
	Timezone  string `yaml:"timezone"`
}

type MonitoringConfig struct {
	HealthCheckPort   int  `yaml:"health_check_port"`
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

const (
	OptimizerModeRemote  = "remote"
	OptimizerModePreview = "preview"
)

// Load reads path, expands ${ENV_VAR} placeholders, applies defaults and validates.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes the same way Load does.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8000"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 90 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/beauty_scheduler.db"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Backup.Interval <= 0 {
		c.Backup.Interval = 24 * time.Hour
	}
	if c.Optimizer.Mode == "" {
		c.Optimizer.Mode = OptimizerModeRemote
	}
	if c.Optimizer.Timeout <= 0 {
		c.Optimizer.Timeout = 60 * time.Second
	}
	if c.BusinessDay.StartHour == 0 && c.BusinessDay.EndHour == 0 {
		c.BusinessDay.StartHour, c.BusinessDay.EndHour = 9, 20
	}
	if c.BusinessDay.Timezone == "" {
		c.BusinessDay.Timezone = "Local"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	var errs []string

	if err := c.BusinessDay.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	switch c.Optimizer.Mode {
	case OptimizerModeRemote:
		if c.Optimizer.BaseURL == "" {
			errs = append(errs, "optimizer.base_url is required in remote mode")
		}
	case OptimizerModePreview:
	default:
		errs = append(errs, fmt.Sprintf("optimizer.mode: unknown value %q", c.Optimizer.Mode))
	}
	if c.Optimizer.RatePerSecond < 0 {
		errs = append(errs, "optimizer.rate_per_second cannot be negative")
	}
	if c.Backup.RetentionDays < 0 {
		errs = append(errs, "backup.retention_days cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Validate checks the business day bounds and time zone.
func (b BusinessDayConfig) Validate() error {
	if b.StartHour < 0 || b.EndHour > 24 || b.StartHour >= b.EndHour {
		return fmt.Errorf("business_day: need 0 <= start_hour < end_hour <= 24, got %d-%d", b.StartHour, b.EndHour)
	}
	if _, err := b.Location(); err != nil {
		return fmt.Errorf("business_day.timezone: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (b BusinessDayConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

// CacheTTL returns the optimizer cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.Optimizer.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Optimizer.CacheTTLSeconds) * time.Second
}
