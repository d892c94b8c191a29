package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides applied by Load.
const (
	EnvAPIURL = "STAKEDASH_API_URL"
	EnvAPIKey = "STAKEDASH_API_KEY"
)

// Config represents the complete stakedash configuration
type Config struct {
	API       APIConfig       `yaml:"api"`
	PriceFeed PriceFeedConfig `yaml:"price_feed"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
	Session   SessionConfig   `yaml:"session"`
}

// APIConfig contains staking backend settings
type APIConfig struct {
	BaseURL    string `yaml:"base_url"`
	PathSuffix string `yaml:"path_suffix"` // appended to every endpoint path, e.g. ".php"
	APIKey     string `yaml:"api_key"`     // sent as "Authorization: Bearer <api_key>"

	TimeoutSecs int `yaml:"timeout_secs"` // HTTP client timeout (default: 30)

	// Client-side pacing of outbound requests
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"` // 0 disables pacing
	RateLimitBurst  int     `yaml:"rate_limit_burst"`

	// Retries apply to read endpoints only
	ReadRetries      int `yaml:"read_retries"`
	RetryBaseDelayMs int `yaml:"retry_base_delay_ms"`
}

// Timeout returns the HTTP client timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// RetryBaseDelay returns the initial backoff between read retries.
func (a APIConfig) RetryBaseDelay() time.Duration {
	return time.Duration(a.RetryBaseDelayMs) * time.Millisecond
}

// PriceFeedConfig contains ETH/USD quote settings
type PriceFeedConfig struct {
	URL         string  `yaml:"url"`
	TimeoutSecs int     `yaml:"timeout_secs"` // hard cap per lookup (default: 5)
	FallbackUSD float64 `yaml:"fallback_usd"` // used when no quote has ever succeeded
}

// Timeout returns the per-lookup deadline.
func (p PriceFeedConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// DashboardConfig contains refresh and display settings
type DashboardConfig struct {
	RefreshIntervalSecs int    `yaml:"refresh_interval_secs"` // default: 300
	ReferralBaseURL     string `yaml:"referral_base_url"`     // referral link is <base>?ref=<code>
	MetricsAddr         string `yaml:"metrics_addr"`          // empty disables /metrics
}

// RefreshInterval returns the periodic refresh interval.
func (d DashboardConfig) RefreshInterval() time.Duration {
	return time.Duration(d.RefreshIntervalSecs) * time.Second
}

// HistoryConfig contains local snapshot history settings
type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	RetainDays int    `yaml:"retain_days"` // 0 keeps everything
}

// LoggingConfig contains diagnostic log settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
	File   string `yaml:"file"`   // empty writes to stderr
}

// SessionConfig contains credential storage settings
type SessionConfig struct {
	// Backend is one of "auto", "keyring", "keyctl", "file" or "memory".
	Backend  string `yaml:"backend"`
	Service  string `yaml:"service"`   // keyring service name
	FilePath string `yaml:"file_path"` // used by the "file" backend
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:          "https://app.starkord.com/api",
			PathSuffix:       ".php",
			TimeoutSecs:      30,
			RateLimitPerSec:  5,
			RateLimitBurst:   5,
			ReadRetries:      2,
			RetryBaseDelayMs: 250,
		},
		PriceFeed: PriceFeedConfig{
			URL:         "https://api.coingecko.com/api/v3/simple/price?ids=ethereum&vs_currencies=usd",
			TimeoutSecs: 5,
			FallbackUSD: 1800,
		},
		Dashboard: DashboardConfig{
			RefreshIntervalSecs: 300,
			ReferralBaseURL:     "https://app.starkord.com",
		},
		History: HistoryConfig{
			Enabled:    true,
			Path:       "~/.stakedash/history.db",
			RetainDays: 90,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Session: SessionConfig{
			Backend:  "auto",
			Service:  "stakedash",
			FilePath: "~/.stakedash/session",
		},
	}
}

// Load loads configuration from file. A missing file yields the defaults.
// Environment overrides are applied after the file is read.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	path = expandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// May hold the API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if err := validateURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	if c.API.TimeoutSecs < 1 {
		return fmt.Errorf("api.timeout_secs must be at least 1, got %d", c.API.TimeoutSecs)
	}
	if c.API.RateLimitPerSec < 0 {
		return fmt.Errorf("api.rate_limit_per_sec must not be negative")
	}
	if c.API.RateLimitPerSec > 0 && c.API.RateLimitBurst < 1 {
		return fmt.Errorf("api.rate_limit_burst must be at least 1 when rate limiting is enabled")
	}
	if c.API.ReadRetries < 0 || c.API.ReadRetries > 10 {
		return fmt.Errorf("api.read_retries must be between 0 and 10, got %d", c.API.ReadRetries)
	}

	if err := validateURL("price_feed.url", c.PriceFeed.URL); err != nil {
		return err
	}
	if c.PriceFeed.TimeoutSecs < 1 {
		return fmt.Errorf("price_feed.timeout_secs must be at least 1, got %d", c.PriceFeed.TimeoutSecs)
	}
	if c.PriceFeed.FallbackUSD <= 0 {
		return fmt.Errorf("price_feed.fallback_usd must be positive")
	}

	if c.Dashboard.RefreshIntervalSecs < 10 {
		return fmt.Errorf("dashboard.refresh_interval_secs must be at least 10, got %d", c.Dashboard.RefreshIntervalSecs)
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	if c.History.RetainDays < 0 {
		return fmt.Errorf("history.retain_days must not be negative")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Session.Backend {
	case "auto", "keyring", "keyctl", "memory":
	case "file":
		if c.Session.FilePath == "" {
			return fmt.Errorf("session.file_path is required for the file backend")
		}
	default:
		return fmt.Errorf("invalid session.backend: %s", c.Session.Backend)
	}

	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.API.APIKey = v
	}
}

// expandPaths expands ~ in path fields
func (c *Config) expandPaths() {
	c.History.Path = expandPath(c.History.Path)
	c.Logging.File = expandPath(c.Logging.File)
	c.Session.FilePath = expandPath(c.Session.FilePath)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".stakedash", "config.yaml")
}
