// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Platform  PlatformConfig  `toml:"platform"`
	Downloads DownloadsConfig `toml:"downloads"`
	Retry     RetryConfig     `toml:"retry"`
	History   HistoryConfig   `toml:"history"`
	LogLevel  string          `toml:"log_level"`
}

// PlatformConfig describes the course platform to fetch from.
type PlatformConfig struct {
	BaseURL        string        `toml:"base_url"`
	Session        SessionConfig `toml:"session"`
	RateLimitDelay time.Duration `toml:"rate_limit_delay"`
}

// SessionConfig carries an established platform session. Values typically
// reference environment variables.
type SessionConfig struct {
	CSRFToken string            `toml:"csrf_token"`
	Cookies   map[string]string `toml:"cookies"`
}

// DownloadsConfig controls where and how video files are written.
type DownloadsConfig struct {
	OutputDir         string   `toml:"output_dir"`
	Concurrent        int      `toml:"concurrent"`
	QualityPreference []string `toml:"quality_preference"`
	Resume            bool     `toml:"resume"`
	MaxBandwidth      int64    `toml:"max_bandwidth"`
	ChunkSize         int      `toml:"chunk_size"`
}

// RetryConfig controls the backoff applied to failed downloads.
type RetryConfig struct {
	Attempts      int           `toml:"attempts"`
	BaseDelay     time.Duration `toml:"base_delay"`
	BackoffFactor float64       `toml:"backoff_factor"`
	MaxDelay      time.Duration `toml:"max_delay"`
}

// HistoryConfig locates the download history database.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// Load reads and parses the configuration file. Unresolved environment
// variables and validation failures are returned together in a
// *ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	cfg.Downloads.Resume = true
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Platform.BaseURL == "" {
		c.Platform.BaseURL = "https://courses.edx.org"
	}
	if c.Downloads.OutputDir == "" {
		c.Downloads.OutputDir = "./downloads"
	}
	if c.Downloads.Concurrent == 0 {
		c.Downloads.Concurrent = 3
	}
	if len(c.Downloads.QualityPreference) == 0 {
		c.Downloads.QualityPreference = []string{"1080p", "720p", "480p", "360p", "240p"}
	}
	if c.Downloads.ChunkSize == 0 {
		c.Downloads.ChunkSize = 8192
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = time.Second
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = 2.0
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 60 * time.Second
	}
	if c.History.Path == "" {
		c.History.Path = "./data/coursarr.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
// and reports the names it could not resolve.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		missing = append(missing, varName)
		return match
	})
	return out, missing
}
