package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	t.Setenv("TEST_CSRF", "tok-abc")
	t.Setenv("TEST_SESSION", "sess-xyz")

	path := writeConfig(t, `
log_level = "debug"

[platform]
base_url = "https://courses.example.org"
rate_limit_delay = "500ms"

[platform.session]
csrf_token = "${TEST_CSRF}"
cookies = { sessionid = "${TEST_SESSION}" }

[downloads]
output_dir = "/srv/videos"
concurrent = 5
quality_preference = ["720p", "480p"]
resume = false
max_bandwidth = 1048576
chunk_size = 16384

[retry]
attempts = 5
base_delay = "2s"
backoff_factor = 3.0
max_delay = "30s"

[history]
path = "/var/lib/coursarr/history.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://courses.example.org", cfg.Platform.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Platform.RateLimitDelay)
	assert.Equal(t, "tok-abc", cfg.Platform.Session.CSRFToken)
	assert.Equal(t, "sess-xyz", cfg.Platform.Session.Cookies["sessionid"])

	assert.Equal(t, "/srv/videos", cfg.Downloads.OutputDir)
	assert.Equal(t, 5, cfg.Downloads.Concurrent)
	assert.Equal(t, []string{"720p", "480p"}, cfg.Downloads.QualityPreference)
	assert.False(t, cfg.Downloads.Resume)
	assert.Equal(t, int64(1048576), cfg.Downloads.MaxBandwidth)
	assert.Equal(t, 16384, cfg.Downloads.ChunkSize)

	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 3.0, cfg.Retry.BackoffFactor)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)

	assert.Equal(t, "/var/lib/coursarr/history.db", cfg.History.Path)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "https://courses.edx.org", cfg.Platform.BaseURL)
	assert.Equal(t, "./downloads", cfg.Downloads.OutputDir)
	assert.Equal(t, 3, cfg.Downloads.Concurrent)
	assert.Equal(t, []string{"1080p", "720p", "480p", "360p", "240p"}, cfg.Downloads.QualityPreference)
	assert.True(t, cfg.Downloads.Resume, "resume defaults on")
	assert.Equal(t, 8192, cfg.Downloads.ChunkSize)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 2.0, cfg.Retry.BackoffFactor)
	assert.Equal(t, 60*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, "./data/coursarr.db", cfg.History.Path)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadMissingEnvVars(t *testing.T) {
	path := writeConfig(t, `
[platform.session]
csrf_token = "${DEFINITELY_NOT_SET_1}"
cookies = { sessionid = "${DEFINITELY_NOT_SET_2}" }
`)

	_, err := Load(path)
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.ElementsMatch(t, []string{"DEFINITELY_NOT_SET_1", "DEFINITELY_NOT_SET_2"}, cerr.Missing)
	assert.Contains(t, err.Error(), "missing environment variables")
}

func TestLoadValidationErrors(t *testing.T) {
	path := writeConfig(t, `
log_level = "verbose"

[platform]
base_url = "not a url"

[downloads]
concurrent = 50
quality_preference = ["4k"]
`)

	_, err := Load(path)
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Empty(t, cerr.Missing)

	joined := strings.Join(cerr.Errors, "\n")
	assert.Contains(t, joined, "platform.base_url")
	assert.Contains(t, joined, "downloads.concurrent")
	assert.Contains(t, joined, `unknown quality "4k"`)
	assert.Contains(t, joined, "log_level")
}

func TestValidateRetryBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative attempts", func(c *Config) { c.Retry.Attempts = -1 }, "retry.attempts"},
		{"too many attempts", func(c *Config) { c.Retry.Attempts = 11 }, "retry.attempts"},
		{"factor below one", func(c *Config) { c.Retry.BackoffFactor = 0.5 }, "retry.backoff_factor"},
		{"max below base", func(c *Config) { c.Retry.MaxDelay = time.Millisecond }, "retry.max_delay"},
		{"negative rate limit", func(c *Config) { c.Platform.RateLimitDelay = -time.Second }, "platform.rate_limit_delay"},
		{"negative bandwidth", func(c *Config) { c.Downloads.MaxBandwidth = -1 }, "downloads.max_bandwidth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.applyDefaults()
			tt.mutate(&cfg)

			errs := cfg.Validate()
			require.NotEmpty(t, errs)
			assert.Contains(t, strings.Join(errs, "\n"), tt.wantErr)
		})
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("COURSARR_TEST_VALUE", "hello")

	out, missing := substituteEnvVars(`a = "${COURSARR_TEST_VALUE}"` + "\n" + `b = "${COURSARR_TEST_GONE}"`)
	assert.Contains(t, out, `a = "hello"`)
	assert.Contains(t, out, `b = "${COURSARR_TEST_GONE}"`, "unresolved vars left in place")
	assert.Equal(t, []string{"COURSARR_TEST_GONE"}, missing)
}

func TestDiscoverEnvOverride(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("COURSARR_CONFIG", path)

	found, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestDiscoverEnvOverrideMissing(t *testing.T) {
	t.Setenv("COURSARR_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	_, err := Discover()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "COURSARR_CONFIG")
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	t.Setenv("COURSARR_CSRF", "tok")
	t.Setenv("COURSARR_SESSIONID", "sess")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Platform.Session.CSRFToken)
	assert.Equal(t, "sess", cfg.Platform.Session.Cookies["sessionid"])
}

func TestWriteRoundTrip(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	cfg.Downloads.OutputDir = "/srv/videos"
	cfg.Platform.Session.Cookies = map[string]string{"sessionid": "sess"}

	path := filepath.Join(t.TempDir(), "out", "config.toml")
	require.NoError(t, cfg.Write(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/videos", loaded.Downloads.OutputDir)
	assert.Equal(t, cfg.Downloads.QualityPreference, loaded.Downloads.QualityPreference)
}
