package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the storefront client.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := core.NewConfig(
//	    core.WithBaseURL("https://api.verdemarket.example/api"),
//	    core.WithRequestTimeout(15*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	// API contains backend connectivity settings
	API APIConfig `json:"api" yaml:"api"`

	// Storage contains persisted state settings
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Telemetry configuration (optional HTTP instrumentation)
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// APIConfig contains backend REST API settings.
// The base URL covers the whole surface consumed by the client:
// /auth, /productos and /ventas.
type APIConfig struct {
	BaseURL        string        `json:"base_url" yaml:"base_url"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	UserAgent      string        `json:"user_agent" yaml:"user_agent"`
}

// UnmarshalYAML implements yaml.Unmarshaler so config files can write the
// timeout as a duration string ("30s"), which yaml.v3 does not decode into
// time.Duration on its own. Absent fields leave the existing values alone,
// so a file only overrides what it mentions.
func (a *APIConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BaseURL        string `yaml:"base_url"`
		RequestTimeout string `yaml:"request_timeout"`
		UserAgent      string `yaml:"user_agent"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.BaseURL != "" {
		a.BaseURL = raw.BaseURL
	}
	if raw.UserAgent != "" {
		a.UserAgent = raw.UserAgent
	}
	if raw.RequestTimeout != "" {
		d, err := time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", raw.RequestTimeout, ErrInvalidConfiguration)
		}
		a.RequestTimeout = d
	}

	return nil
}

// StorageConfig contains persisted state configuration.
// Supports file storage (default, localStorage analog), in-memory storage
// for tests and ephemeral sessions, or Redis for shared deployments.
type StorageConfig struct {
	Provider  string `json:"provider" yaml:"provider"` // "file", "inmemory" or "redis"
	FilePath  string `json:"file_path" yaml:"file_path"`
	RedisURL  string `json:"redis_url" yaml:"redis_url"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// TelemetryConfig enables OpenTelemetry instrumentation of outbound
// HTTP requests. Disabled by default; when enabled the request pipeline
// wraps its transport with otelhttp.
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"service_name" yaml:"service_name"`
}

// Option is a functional option for configuring the client.
// Options are applied in order and can return an error if the
// configuration is invalid.
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults.
// The defaults mirror the web client: a local backend at port 3000 under
// /api, a 10 second overall request timeout, and file storage under the
// user's home directory.
func DefaultConfig() *Config {
	cfg := &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:3000/api",
			RequestTimeout: 10 * time.Second,
			UserAgent:      "storefront-go/" + Version,
		},
		Storage: StorageConfig{
			Provider:  "file",
			Namespace: "storefront",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "storefront",
		},
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.Storage.FilePath = filepath.Join(home, ".storefront", "state.json")
	}

	return cfg
}

// NewConfig creates a configuration by layering defaults, environment
// variables and the given options, then validating the result.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables take precedence over defaults but are overridden
// by functional options.
//
// Variable naming convention: STOREFRONT_<SETTING>. The standard REDIS_URL
// variable is also honored for the Redis storage provider.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("STOREFRONT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("STOREFRONT_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STOREFRONT_REQUEST_TIMEOUT %q: %w", v, ErrInvalidConfiguration)
		}
		c.API.RequestTimeout = d
	}
	if v := os.Getenv("STOREFRONT_STORAGE_PROVIDER"); v != "" {
		c.Storage.Provider = v
	}
	if v := os.Getenv("STOREFRONT_STATE_FILE"); v != "" {
		c.Storage.FilePath = v
	}
	if v := os.Getenv("STOREFRONT_REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	} else if v := os.Getenv("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STOREFRONT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("STOREFRONT_TELEMETRY_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid STOREFRONT_TELEMETRY_ENABLED %q: %w", v, ErrInvalidConfiguration)
		}
		c.Telemetry.Enabled = enabled
	}

	return nil
}

// LoadFromFile merges settings from a YAML config file into the config.
// Values present in the file override whatever is already set; callers
// apply functional options afterwards to override the file.
func (c *Config) LoadFromFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, ErrInvalidConfiguration)
	}

	return nil
}

// Validate checks the configuration for invalid combinations
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required: %w", ErrMissingConfiguration)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive: %w", ErrInvalidConfiguration)
	}

	switch c.Storage.Provider {
	case "file":
		if c.Storage.FilePath == "" {
			return fmt.Errorf("file storage requires a state file path: %w", ErrMissingConfiguration)
		}
	case "redis":
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis storage requires a Redis URL: %w", ErrMissingConfiguration)
		}
	case "inmemory":
	default:
		return fmt.Errorf("unknown storage provider %q: %w", c.Storage.Provider, ErrInvalidConfiguration)
	}

	return nil
}

// WithBaseURL sets the backend API base URL
func WithBaseURL(url string) Option {
	return func(c *Config) error {
		if url == "" {
			return fmt.Errorf("base URL cannot be empty: %w", ErrInvalidConfiguration)
		}
		c.API.BaseURL = url
		return nil
	}
}

// WithRequestTimeout sets the overall per-request timeout
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("request timeout must be positive: %w", ErrInvalidConfiguration)
		}
		c.API.RequestTimeout = timeout
		return nil
	}
}

// WithStorageProvider selects the persisted storage backend
func WithStorageProvider(provider string) Option {
	return func(c *Config) error {
		c.Storage.Provider = provider
		return nil
	}
}

// WithStateFile sets the file storage path
func WithStateFile(path string) Option {
	return func(c *Config) error {
		c.Storage.FilePath = path
		return nil
	}
}

// WithRedisURL sets the Redis URL for the redis storage provider
func WithRedisURL(url string) Option {
	return func(c *Config) error {
		c.Storage.RedisURL = url
		return nil
	}
}

// WithLogLevel sets the logging level
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = level
		return nil
	}
}

// WithTelemetry enables OpenTelemetry HTTP instrumentation
func WithTelemetry(serviceName string) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = true
		if serviceName != "" {
			c.Telemetry.ServiceName = serviceName
		}
		return nil
	}
}

// WithConfigFile loads a YAML config file. Position matters: settings from
// the file override earlier options and are overridden by later ones.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}
