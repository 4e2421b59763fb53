// Package config loads the application configuration from YAML with
// defaults, validation, and environment variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	DataDir string `yaml:"data_dir" default:"work" validate:"required"`

	AlphaVantage struct {
		APIKey     string        `yaml:"api_key"`
		BaseURL    string        `yaml:"base_url" default:"https://www.alphavantage.co/query" validate:"required,url"`
		DaysBack   int           `yaml:"days_back" default:"365" validate:"gt=0"`
		OutputSize string        `yaml:"output_size" default:"full" validate:"oneof=compact full"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"alpha_vantage"`

	Storage struct {
		Backend       string `yaml:"backend" default:"jsonl" validate:"oneof=memory jsonl postgres"`
		Dir           string `yaml:"dir" default:"state"`
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickhouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"storage"`

	Monitor struct {
		MinR2        float64 `yaml:"min_r2" default:"0.75" validate:"gt=0,lte=1"`
		RelTolerance float64 `yaml:"rel_tolerance" default:"0.1" validate:"gt=0"`
		Variant      string  `yaml:"variant" default:"without_outliers" validate:"oneof=with_outliers without_outliers"`
	} `yaml:"monitor"`

	Train struct {
		TestSize float64 `yaml:"test_size" default:"0.2" validate:"gt=0,lt=1"`
	} `yaml:"train"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr" default:":9091"`
	} `yaml:"metrics"`

	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"logging"`
}

// Default returns a config with all defaults applied and no file read.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	applyEnv(&c)
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Load reads a YAML config file, applies defaults for unset fields, then
// environment overrides, then validates.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	applyEnv(&c)

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// applyEnv overrides secrets and deployment-specific settings from the
// environment.
func applyEnv(c *Config) {
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.Storage.ClickhouseDSN = v
	}
}
