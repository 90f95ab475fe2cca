package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration
type Config struct {
	// Metadata provider
	TMDb TMDbConfig `yaml:"tmdb"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Frontends
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Signup/login forms
	Account AccountConfig `yaml:"account"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds TMDb API configuration
type TMDbConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty"`
	Language          string  `yaml:"language,omitempty"`
	TimeoutSeconds    int     `yaml:"timeout_seconds,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// AccountConfig holds settings for the simulated signup/login submission
type AccountConfig struct {
	SubmitDelaySeconds int `yaml:"submit_delay_seconds"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// Defaults applied by Validate.
const (
	DefaultBaseURL           = "https://api.themoviedb.org/3"
	DefaultLanguage          = "en-US"
	DefaultTimeoutSeconds    = 10
	DefaultRequestsPerSecond = 20
	DefaultPort              = 8080
	DefaultSubmitDelay       = 5
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Load loads configuration from a YAML file with .env and environment variable overrides.
// A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Read YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides overrides config values with MOVIEDECK_* environment variables
func (c *Config) applyEnvOverrides() error {
	// TMDb
	if v := os.Getenv("MOVIEDECK_TMDB_API_KEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := os.Getenv("MOVIEDECK_TMDB_BASE_URL"); v != "" {
		c.TMDb.BaseURL = v
	}
	if v := os.Getenv("MOVIEDECK_TMDB_LANGUAGE"); v != "" {
		c.TMDb.Language = v
	}

	// Server
	if v := os.Getenv("MOVIEDECK_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MOVIEDECK_SERVER_PORT must be a number: %w", err)
		}
		c.Server.Port = port
	}

	// Telegram
	if v := os.Getenv("MOVIEDECK_TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}

	// App
	if v := os.Getenv("MOVIEDECK_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	return nil
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.TMDb.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required")
	}
	if c.TMDb.BaseURL == "" {
		c.TMDb.BaseURL = DefaultBaseURL
	}
	if err := validateURL("tmdb.base_url", c.TMDb.BaseURL); err != nil {
		return err
	}
	if c.TMDb.Language == "" {
		c.TMDb.Language = DefaultLanguage
	}
	if c.TMDb.TimeoutSeconds < 0 {
		return fmt.Errorf("tmdb.timeout_seconds must not be negative")
	}
	if c.TMDb.TimeoutSeconds == 0 {
		c.TMDb.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.TMDb.RequestsPerSecond < 0 {
		return fmt.Errorf("tmdb.requests_per_second must not be negative")
	}
	if c.TMDb.RequestsPerSecond == 0 {
		c.TMDb.RequestsPerSecond = DefaultRequestsPerSecond
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	if c.Account.SubmitDelaySeconds < 0 {
		return fmt.Errorf("account.submit_delay_seconds must not be negative")
	}
	if c.Account.SubmitDelaySeconds == 0 {
		c.Account.SubmitDelaySeconds = DefaultSubmitDelay
	}

	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error")
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL
func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host", field)
	}
	return nil
}
