package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-site-router/pkg/logging"
)

// EnvPrefix is the prefix for environment variable overrides (SITE_SERVER_PORT, ...)
const EnvPrefix = "SITE"

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Logging     logging.Config    `yaml:"logging" envconfig:"LOGGING"`
	CORS        CORSConfig        `yaml:"cors" envconfig:"CORS"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Metrics     MetricsConfig     `yaml:"metrics" envconfig:"METRICS"`
	Compression CompressionConfig `yaml:"compression" envconfig:"COMPRESSION"`
	Ops         OpsConfig         `yaml:"ops" envconfig:"OPS"`

	// Routing keys live at the top level of the document so that an
	// existing phpconfig.json can be loaded unchanged.
	Routing RoutingConfig `yaml:",inline" envconfig:"ROUTING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"HOST"`
	Port         int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
}

// RoutingConfig contains the directories and rewrite rules used to resolve requests
type RoutingConfig struct {
	APIDir   string `yaml:"apiPathsDirectory" envconfig:"API_DIR"`
	SSRDir   string `yaml:"ssrPathsDirectory" envconfig:"SSR_DIR"`
	BuildDir string `yaml:"buildFilesDirectory" envconfig:"BUILD_DIR"`

	// Rewrites are tried in document order
	Rewrites Rewrites `yaml:"rewrites" ignored:"true"`
}

// CORSConfig contains cross-origin settings for gin-contrib/cors
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled" envconfig:"ENABLED"`
	AllowedOrigins   []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods" envconfig:"ALLOWED_METHODS"`
	AllowedHeaders   []string `yaml:"allowed_headers" envconfig:"ALLOWED_HEADERS"`
	ExposedHeaders   []string `yaml:"exposed_headers" envconfig:"EXPOSED_HEADERS"`
	AllowCredentials bool     `yaml:"allow_credentials" envconfig:"ALLOW_CREDENTIALS"`
	MaxAge           int      `yaml:"max_age" envconfig:"MAX_AGE"` // seconds
}

// RateLimitConfig contains per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`

	// RequestsPerMinute is the sustained rate allowed per client IP
	RequestsPerMinute int `yaml:"requests_per_minute" envconfig:"REQUESTS_PER_MINUTE"`

	// BurstMultiplier allows bursts of this multiple of the per-second rate
	BurstMultiplier int `yaml:"burst_multiplier" envconfig:"BURST_MULTIPLIER"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" envconfig:"ENABLED"`
	Namespace string `yaml:"namespace" envconfig:"NAMESPACE"`
}

// CompressionConfig contains response compression configuration
type CompressionConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	Level   string `yaml:"level" envconfig:"LEVEL"`       // fastest, default, best
	MinSize int    `yaml:"min_size" envconfig:"MIN_SIZE"` // bytes
}

// OpsConfig controls where the health, status and metrics endpoints are mounted.
// Site pages under the prefix are shadowed by these endpoints.
type OpsConfig struct {
	Prefix string `yaml:"prefix" envconfig:"PREFIX"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Load from YAML (or JSON) file if provided (overrides defaults)
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, that's ok - we'll use defaults and env vars
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Logging: logging.DefaultConfig(),
		CORS: CORSConfig{
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         12 * 60 * 60,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 600,
			BurstMultiplier:   3,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "site",
		},
		Compression: CompressionConfig{
			Level:   "default",
			MinSize: 1024,
		},
		Ops: OpsConfig{
			Prefix: "/_site",
		},
		Routing: RoutingConfig{
			APIDir:   "src/api",
			SSRDir:   "src/ssr",
			BuildDir: "dist",
		},
	}
}

// Validate validates the configuration and compiles the rewrite rules
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if err := c.Routing.Validate(); err != nil {
		return err
	}

	if c.CORS.Enabled && len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("cors allowed_origins is required when cors is enabled")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute < 1 {
			return fmt.Errorf("rate limit requests_per_minute must be positive")
		}
		if c.RateLimit.BurstMultiplier < 1 {
			return fmt.Errorf("rate limit burst_multiplier must be positive")
		}
	}

	switch c.Compression.Level {
	case "", "fastest", "default", "best":
	default:
		return fmt.Errorf("invalid compression level: %s (must be fastest, default, or best)", c.Compression.Level)
	}

	if !strings.HasPrefix(c.Ops.Prefix, "/") || strings.TrimRight(c.Ops.Prefix, "/") == "" {
		return fmt.Errorf("ops prefix must be an absolute path other than /: %q", c.Ops.Prefix)
	}

	return nil
}

// Validate checks the routing directories and compiles every rewrite rule
func (r *RoutingConfig) Validate() error {
	if r.APIDir == "" {
		return fmt.Errorf("apiPathsDirectory is required")
	}
	if r.SSRDir == "" {
		return fmt.Errorf("ssrPathsDirectory is required")
	}
	if r.BuildDir == "" {
		return fmt.Errorf("buildFilesDirectory is required")
	}
	if err := r.Rewrites.Compile(); err != nil {
		return fmt.Errorf("invalid rewrites: %w", err)
	}
	return nil
}

// Address returns the server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// OpsPath joins the ops prefix and an endpoint name
func (c *OpsConfig) OpsPath(name string) string {
	return strings.TrimRight(c.Prefix, "/") + "/" + name
}
