// Package config loads sessionkit configuration.
//
// Sources, in decreasing priority:
//  1. an explicit path passed to Load;
//  2. SESSIONKIT_CONFIG;
//  3. ./local.yaml;
//  4. environment variables only.
//
// A .env file in the working directory is applied to the environment
// first, when present.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the full sessionkit configuration.
type Config struct {
	// BaseURL is the root of the business API. Required.
	BaseURL string `yaml:"base_url" env:"SESSIONKIT_BASE_URL"`

	// RefreshPath is the token renewal endpoint, relative to BaseURL.
	RefreshPath string `yaml:"refresh_path" env:"SESSIONKIT_REFRESH_PATH" env-default:"/auth/refresh"`

	// RequestTimeout bounds every outbound call, renewal included.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SESSIONKIT_REQUEST_TIMEOUT" env-default:"30s"`

	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig selects and configures the credential store backend.
type StorageConfig struct {
	// Backend is one of "memory", "file", "redis".
	Backend string `yaml:"backend" env:"SESSIONKIT_STORAGE_BACKEND" env-default:"memory"`

	// Path is the credential file location for the file backend.
	Path string `yaml:"path" env:"SESSIONKIT_STORAGE_PATH" env-default:"credentials.json"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"SESSIONKIT_REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"SESSIONKIT_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"SESSIONKIT_REDIS_DB" env-default:"0"`
	Key      string        `yaml:"key" env:"SESSIONKIT_REDIS_KEY" env-default:"sessionkit:credentials"`
	TTL      time.Duration `yaml:"ttl" env:"SESSIONKIT_REDIS_TTL" env-default:"0"`
}

// ObservabilityConfig configures the telemetry stack.
type ObservabilityConfig struct {
	ServiceName     string  `yaml:"service_name" env:"SESSIONKIT_SERVICE_NAME" env-default:"sessionkit"`
	TracingEnabled  bool    `yaml:"tracing_enabled" env:"SESSIONKIT_TRACING_ENABLED" env-default:"false"`
	TracingExporter string  `yaml:"tracing_exporter" env:"SESSIONKIT_TRACING_EXPORTER" env-default:"none"`
	SamplePct       float64 `yaml:"sample_pct" env:"SESSIONKIT_SAMPLE_PCT" env-default:"1.0"`
	MetricsEnabled  bool    `yaml:"metrics_enabled" env:"SESSIONKIT_METRICS_ENABLED" env-default:"false"`
	MetricsExporter string  `yaml:"metrics_exporter" env:"SESSIONKIT_METRICS_EXPORTER" env-default:"none"`
	LogLevel        string  `yaml:"log_level" env:"SESSIONKIT_LOG_LEVEL" env-default:"info"`
}

const (
	envConfigPath    = "SESSIONKIT_CONFIG"
	defaultLocalPath = "local.yaml"
)

// Load reads configuration with the documented source priority. path may
// be empty.
func Load(path string) (*Config, error) {
	// Best-effort: a missing .env is the common case.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		if _, err := os.Stat(defaultLocalPath); err == nil {
			path = defaultLocalPath
		}
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read environment: %w", err)
		}
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expand resolves ${VAR} references in values that commonly carry them.
func (c *Config) expand() error {
	for _, field := range []*string{&c.BaseURL, &c.Storage.Path, &c.Storage.Redis.Addr, &c.Storage.Redis.Password} {
		expanded, err := ExpandEnvStrict(*field)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		*field = expanded
	}
	return nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: base_url %q is not an absolute URL", c.BaseURL)
	}
	switch c.Storage.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
