package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"igloader/pkg/pacing"
)

// Config holds all configuration options for the downloader.
type Config struct {
	// Instagram session credentials
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Pacing holds the human-mimicking timing parameters
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`

	// Rate limiting for raw API request rate
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds provider session credentials. Login and 2FA flows
// live with the credential stores; the engine only ever reads these.
type InstagramConfig struct {
	SessionID string `yaml:"session_id" json:"session_id"`
	CSRFToken string `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// PacingConfig holds the delay parameters between provider requests.
type PacingConfig struct {
	BaseDelay       time.Duration `yaml:"base_delay" json:"base_delay"`
	Jitter          time.Duration `yaml:"jitter" json:"jitter"`
	StoryMultiplier float64       `yaml:"story_multiplier" json:"story_multiplier"`
	LongPauseMin    time.Duration `yaml:"long_pause_min" json:"long_pause_min"`
	LongPauseMax    time.Duration `yaml:"long_pause_max" json:"long_pause_max"`
	LongPauseEvery  int           `yaml:"long_pause_every" json:"long_pause_every"`
	CriticalWait    time.Duration `yaml:"critical_wait" json:"critical_wait"`
	MaxRetries      int           `yaml:"max_retries" json:"max_retries"`
}

// RateLimitConfig caps the absolute API request rate, independent of pacing.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// OutputConfig holds output directory configuration.
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	CreateUserFolders bool   `yaml:"create_user_folders" json:"create_user_folders"`
	SkipExisting      bool   `yaml:"skip_existing" json:"skip_existing"`
}

// DownloadConfig holds fetch and persistence settings.
type DownloadConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	SinkWorkers    int           `yaml:"sink_workers" json:"sink_workers"`
	MaxPosts       int           `yaml:"max_posts" json:"max_posts"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a Config instance with sensible defaults.
// Timing defaults match the pacing package.
func DefaultConfig() *Config {
	p := pacing.Default()
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Pacing: PacingConfig{
			BaseDelay:       p.BaseDelay,
			Jitter:          p.Jitter,
			StoryMultiplier: p.StoryMultiplier,
			LongPauseMin:    p.LongPauseMin,
			LongPauseMax:    p.LongPauseMax,
			LongPauseEvery:  p.LongPauseEvery,
			CriticalWait:    p.CriticalWait,
			MaxRetries:      p.MaxRetriesPerItem,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Output: OutputConfig{
			BaseDirectory:     "./downloads",
			CreateUserFolders: true,
			SkipExisting:      true,
		},
		Download: DownloadConfig{
			RequestTimeout: 5 * time.Minute,
			SinkWorkers:    3,
			MaxPosts:       0, // 0 means no limit
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// Policy converts the pacing section into the engine's policy value.
func (c *Config) Policy() pacing.Policy {
	return pacing.Policy{
		BaseDelay:         c.Pacing.BaseDelay,
		Jitter:            c.Pacing.Jitter,
		StoryMultiplier:   c.Pacing.StoryMultiplier,
		LongPauseMin:      c.Pacing.LongPauseMin,
		LongPauseMax:      c.Pacing.LongPauseMax,
		LongPauseEvery:    c.Pacing.LongPauseEvery,
		CriticalWait:      c.Pacing.CriticalWait,
		MaxRetriesPerItem: c.Pacing.MaxRetries,
	}
}

// LoadFromEnv loads configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if sessionID := os.Getenv("IGLOADER_SESSION_ID"); sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if csrfToken := os.Getenv("IGLOADER_CSRF_TOKEN"); csrfToken != "" {
		c.Instagram.CSRFToken = csrfToken
	}
	if userAgent := os.Getenv("IGLOADER_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}

	if base := os.Getenv("IGLOADER_BASE_DELAY"); base != "" {
		if d, err := time.ParseDuration(base); err == nil {
			c.Pacing.BaseDelay = d
		}
	}
	if jitter := os.Getenv("IGLOADER_JITTER"); jitter != "" {
		if d, err := time.ParseDuration(jitter); err == nil {
			c.Pacing.Jitter = d
		}
	}
	if wait := os.Getenv("IGLOADER_CRITICAL_WAIT"); wait != "" {
		if d, err := time.ParseDuration(wait); err == nil {
			c.Pacing.CriticalWait = d
		}
	}
	if mult := os.Getenv("IGLOADER_STORY_MULTIPLIER"); mult != "" {
		if v, err := strconv.ParseFloat(mult, 64); err == nil && v >= 1.0 {
			c.Pacing.StoryMultiplier = v
		}
	}

	if rpm := os.Getenv("IGLOADER_REQUESTS_PER_MINUTE"); rpm != "" {
		if v, err := strconv.Atoi(rpm); err == nil && v > 0 {
			c.RateLimit.RequestsPerMinute = v
		}
	}

	if outputDir := os.Getenv("IGLOADER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if logLevel := os.Getenv("IGLOADER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations.
func (c *Config) findConfigFile() string {
	locations := []string{
		".igloader.yaml",
		".igloader.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igloader", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igloader", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igloader.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igloader.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Policy().Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Download.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Download.SinkWorkers <= 0 {
		errs = append(errs, errors.New("sink workers must be positive"))
	}
	if c.Download.SinkWorkers > 10 {
		errs = append(errs, errors.New("sink workers should not exceed 10"))
	}
	if c.Download.MaxPosts < 0 {
		errs = append(errs, errors.New("max posts cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file, backing up any previous copy.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Keep the previous settings recoverable
	if prev, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(path+".bak", prev, 0600)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igloader.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
