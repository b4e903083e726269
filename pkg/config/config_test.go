package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 8*time.Second, config.Pacing.BaseDelay)
	assert.Equal(t, 3*time.Second, config.Pacing.Jitter)
	assert.Equal(t, 2.5, config.Pacing.StoryMultiplier)
	assert.Equal(t, 30*time.Minute, config.Pacing.CriticalWait)
	assert.Equal(t, 5, config.Pacing.LongPauseEvery)
	assert.Equal(t, 3, config.Pacing.MaxRetries)
	assert.Equal(t, 60, config.RateLimit.RequestsPerMinute)
	assert.Equal(t, "./downloads", config.Output.BaseDirectory)
	assert.True(t, config.Output.SkipExisting)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGLOADER_SESSION_ID", "test-session-id")
	t.Setenv("IGLOADER_CSRF_TOKEN", "test-csrf-token")
	t.Setenv("IGLOADER_BASE_DELAY", "12s")
	t.Setenv("IGLOADER_CRITICAL_WAIT", "45m")
	t.Setenv("IGLOADER_STORY_MULTIPLIER", "3.0")
	t.Setenv("IGLOADER_REQUESTS_PER_MINUTE", "30")
	t.Setenv("IGLOADER_OUTPUT_DIR", "/tmp/test-downloads")
	t.Setenv("IGLOADER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "test-session-id", config.Instagram.SessionID)
	assert.Equal(t, "test-csrf-token", config.Instagram.CSRFToken)
	assert.Equal(t, 12*time.Second, config.Pacing.BaseDelay)
	assert.Equal(t, 45*time.Minute, config.Pacing.CriticalWait)
	assert.Equal(t, 3.0, config.Pacing.StoryMultiplier)
	assert.Equal(t, 30, config.RateLimit.RequestsPerMinute)
	assert.Equal(t, "/tmp/test-downloads", config.Output.BaseDirectory)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("IGLOADER_BASE_DELAY", "not-a-duration")
	t.Setenv("IGLOADER_STORY_MULTIPLIER", "0.5")
	t.Setenv("IGLOADER_REQUESTS_PER_MINUTE", "-3")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, 8*time.Second, config.Pacing.BaseDelay)
	assert.Equal(t, 2.5, config.Pacing.StoryMultiplier)
	assert.Equal(t, 60, config.RateLimit.RequestsPerMinute)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
pacing:
  base_delay: 4s
  jitter: 1s
  story_multiplier: 2.0
  long_pause_every: 10
  critical_wait: 15m
output:
  base_directory: /data/media
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, 4*time.Second, config.Pacing.BaseDelay)
	assert.Equal(t, time.Second, config.Pacing.Jitter)
	assert.Equal(t, 2.0, config.Pacing.StoryMultiplier)
	assert.Equal(t, 10, config.Pacing.LongPauseEvery)
	assert.Equal(t, 15*time.Minute, config.Pacing.CriticalWait)
	assert.Equal(t, "/data/media", config.Output.BaseDirectory)
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	assert.NoError(t, config.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative base delay", func(c *Config) { c.Pacing.BaseDelay = -time.Second }},
		{"story multiplier below one", func(c *Config) { c.Pacing.StoryMultiplier = 0.9 }},
		{"zero requests per minute", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }},
		{"empty output directory", func(c *Config) { c.Output.BaseDirectory = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"zero sink workers", func(c *Config) { c.Download.SinkWorkers = 0 }},
		{"too many sink workers", func(c *Config) { c.Download.SinkWorkers = 50 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig()
			test.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestSaveCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	config := DefaultConfig()
	require.NoError(t, config.Save(path))

	config.Logging.Level = "debug"
	require.NoError(t, config.Save(path))

	_, err := os.Stat(path + ".bak")
	assert.NoError(t, err, "saving over an existing file should keep a backup")

	reloaded := DefaultConfig()
	require.NoError(t, reloaded.LoadFromFile(path))
	assert.Equal(t, "debug", reloaded.Logging.Level)
}

func TestPolicyConversion(t *testing.T) {
	config := DefaultConfig()
	config.Pacing.BaseDelay = 2 * time.Second
	config.Pacing.MaxRetries = 7

	policy := config.Policy()
	assert.Equal(t, 2*time.Second, policy.BaseDelay)
	assert.Equal(t, 7, policy.MaxRetriesPerItem)
	assert.NoError(t, policy.Validate())
}
