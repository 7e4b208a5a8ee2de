package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Oracle    OracleConfig
	Terminal  TerminalConfig
	Catalog   CatalogConfig
	Notify    NotifyConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// AllowOrigins lists the browser origins allowed by CORS
	AllowOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// OracleConfig holds generative AI backend configuration.
type OracleConfig struct {
	BaseURL           string        `envconfig:"ORACLE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	APIKey            string        `envconfig:"ORACLE_API_KEY"`
	Model             string        `envconfig:"ORACLE_MODEL" default:"gemini-2.5-flash"`
	Timeout           time.Duration `envconfig:"ORACLE_TIMEOUT" default:"60s"`
	RequestsPerSecond float64       `envconfig:"ORACLE_RPS" default:"5"`
	Enabled           bool          `envconfig:"ORACLE_ENABLED" default:"true"`
}

// TerminalConfig holds simulation pacing.
type TerminalConfig struct {
	BannerPause  time.Duration `envconfig:"TERMINAL_BANNER_PAUSE" default:"1s"`
	TypeInterval time.Duration `envconfig:"TERMINAL_TYPE_INTERVAL" default:"20ms"`
	DefaultDelay time.Duration `envconfig:"TERMINAL_DEFAULT_DELAY" default:"500ms"`
	ExitGrace    time.Duration `envconfig:"TERMINAL_EXIT_GRACE" default:"1s"`
}

// Timings converts the configuration to session pacing
func (t TerminalConfig) Timings() terminal.Timings {
	return terminal.Timings{
		BannerPause:  t.BannerPause,
		TypeInterval: t.TypeInterval,
		DefaultDelay: t.DefaultDelay,
		ExitGrace:    t.ExitGrace,
	}
}

// CatalogConfig holds simulation catalog configuration.
type CatalogConfig struct {
	Dir string `envconfig:"CATALOG_DIR"`

	// Watch reloads changed files under Dir while the server runs
	Watch         bool          `envconfig:"CATALOG_WATCH" default:"false"`
	WatchDebounce time.Duration `envconfig:"CATALOG_WATCH_DEBOUNCE" default:"500ms"`
}

// NotifyConfig holds notification banner configuration.
type NotifyConfig struct {
	DefaultDuration time.Duration `envconfig:"NOTIFY_DURATION" default:"5s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the hub cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("invalid config: empty port")
	}
	t := c.Terminal
	if t.BannerPause < 0 || t.TypeInterval < 0 || t.DefaultDelay < 0 || t.ExitGrace < 0 {
		return fmt.Errorf("invalid config: negative terminal timing")
	}
	if c.Catalog.Watch && c.Catalog.Dir == "" {
		return fmt.Errorf("invalid config: catalog watch needs a catalog dir")
	}
	if c.Oracle.RequestsPerSecond <= 0 {
		return fmt.Errorf("invalid config: oracle rps must be positive")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	timings := terminal.DefaultTimings()
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			AllowOrigins:    []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Oracle: OracleConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			Model:             "gemini-2.5-flash",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 5,
			Enabled:           true,
		},
		Terminal: TerminalConfig{
			BannerPause:  timings.BannerPause,
			TypeInterval: timings.TypeInterval,
			DefaultDelay: timings.DefaultDelay,
			ExitGrace:    timings.ExitGrace,
		},
		Catalog: CatalogConfig{
			WatchDebounce: 500 * time.Millisecond,
		},
		Notify: NotifyConfig{
			DefaultDuration: 5 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
