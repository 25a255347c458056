package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validQualities = map[string]bool{
	"2160p": true, "1440p": true, "1080p": true, "720p": true,
	"480p": true, "360p": true, "240p": true, "144p": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Platform.BaseURL != "" {
		u, err := url.Parse(c.Platform.BaseURL)
		if err != nil || !strings.HasPrefix(u.Scheme, "http") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("platform.base_url: must be an http(s) URL, got %q", c.Platform.BaseURL))
		}
	}
	if c.Platform.RateLimitDelay < 0 {
		errs = append(errs, "platform.rate_limit_delay: must not be negative")
	}

	if c.Downloads.Concurrent < 1 || c.Downloads.Concurrent > 20 {
		errs = append(errs, fmt.Sprintf("downloads.concurrent: must be between 1 and 20, got %d", c.Downloads.Concurrent))
	}
	if c.Downloads.ChunkSize < 1 {
		errs = append(errs, fmt.Sprintf("downloads.chunk_size: must be positive, got %d", c.Downloads.ChunkSize))
	}
	if c.Downloads.MaxBandwidth < 0 {
		errs = append(errs, "downloads.max_bandwidth: must not be negative, use 0 for unlimited")
	}
	for _, q := range c.Downloads.QualityPreference {
		if !validQualities[q] {
			errs = append(errs, fmt.Sprintf("downloads.quality_preference: unknown quality %q", q))
		}
	}

	if c.Retry.Attempts < 0 || c.Retry.Attempts > 10 {
		errs = append(errs, fmt.Sprintf("retry.attempts: must be between 0 and 10, got %d", c.Retry.Attempts))
	}
	if c.Retry.BackoffFactor < 1 {
		errs = append(errs, fmt.Sprintf("retry.backoff_factor: must be at least 1, got %g", c.Retry.BackoffFactor))
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		errs = append(errs, "retry.max_delay: must not be less than retry.base_delay")
	}

	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("log_level: must be one of debug, info, warn, error; got %q", c.LogLevel))
	}

	return errs
}
