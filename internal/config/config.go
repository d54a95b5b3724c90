package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	Host                   string        `mapstructure:"host"`
	Port                   int           `mapstructure:"port"`
	APIKey                 string        `mapstructure:"api_key"`
	AllowedOrigins         string        `mapstructure:"allowed_origins"`
	ShutdownTimeoutSeconds int64         `mapstructure:"shutdown_timeout_seconds"`
	ShutdownTimeout        time.Duration `mapstructure:"-"`

	AnthropicAPIKey        string        `mapstructure:"anthropic_api_key"`
	AnthropicModel         string        `mapstructure:"anthropic_model"`
	AnthropicBaseURL       string        `mapstructure:"anthropic_base_url"`
	AnthropicMaxTokens     int64         `mapstructure:"anthropic_max_tokens"`
	AnalysisTimeoutSeconds int64         `mapstructure:"analysis_timeout_seconds"`
	AnalysisTimeout        time.Duration `mapstructure:"-"`

	DevMode bool `mapstructure:"dev_mode"`

	CacheEnabled bool   `mapstructure:"cache_enabled"`
	CacheType    string `mapstructure:"cache_type"`
	CacheDir     string `mapstructure:"cache_dir"`
	BBoltPath    string `mapstructure:"bbolt_path"`

	FetchTimeoutSeconds int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout        time.Duration `mapstructure:"-"`
	UserAgent           string        `mapstructure:"user_agent"`

	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	_ = godotenv.Load(".env")

	v := viper.New()

	v.SetDefault("app_name", "position-parser")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8001)
	v.SetDefault("api_key", "")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("shutdown_timeout_seconds", 10)
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic_base_url", "")
	v.SetDefault("anthropic_max_tokens", 8192)
	v.SetDefault("analysis_timeout_seconds", 120)
	v.SetDefault("dev_mode", false)
	v.SetDefault("cache_enabled", true)
	v.SetDefault("cache_type", "file")
	v.SetDefault("cache_dir", "./cache")
	v.SetDefault("bbolt_path", "./data/cache.db")
	v.SetDefault("fetch_timeout_seconds", 30)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates raw values and derives durations.
func (c *Config) finalize() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	if c.AnalysisTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid analysis_timeout_seconds (must be positive seconds)")
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid shutdown_timeout_seconds (must be positive seconds)")
	}
	if c.AnthropicMaxTokens <= 0 {
		return fmt.Errorf("invalid anthropic_max_tokens (must be positive)")
	}

	c.CacheType = strings.ToLower(strings.TrimSpace(c.CacheType))
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}

	c.FetchTimeout = time.Duration(c.FetchTimeoutSeconds) * time.Second
	c.AnalysisTimeout = time.Duration(c.AnalysisTimeoutSeconds) * time.Second
	c.ShutdownTimeout = time.Duration(c.ShutdownTimeoutSeconds) * time.Second
	return nil
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
