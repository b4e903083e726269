package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igloader/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igloader configuration files.

Configuration is loaded from (highest priority first):
  - Command line flags
  - Environment variables (IGLOADER_*)
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as 'igloader.yaml' unless
a different path is given with the --config flag.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.
Sensitive values like credentials are masked.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

Checks YAML syntax, value ranges and path accessibility.`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# igloader configuration file
#
# Every option here can also be set with an IGLOADER_* environment
# variable, e.g. IGLOADER_SESSION_ID, IGLOADER_RATE_LIMIT.

# Instagram session credentials. Prefer 'igloader auth login' over
# putting credentials in this file.
instagram:
  # Session ID from the sessionid browser cookie
  session_id: ""

  # CSRF token from the csrftoken browser cookie
  csrf_token: ""

  # User agent string. Leave empty to use the default.
  user_agent: ""

# Human-mimicking pacing between provider requests.
pacing:
  # Base delay before each item
  base_delay: 8s

  # Random jitter added on top of the base delay
  jitter: 3s

  # Multiplier applied to story and highlight fetches
  story_multiplier: 2.5

  # Occasional long pause bounds and cadence
  long_pause_min: 20s
  long_pause_max: 30s
  long_pause_every: 5

  # Cooldown after a provider rate-limit response
  critical_wait: 30m

  # Transient retry budget per item
  max_retries: 3

# Absolute API request rate cap, independent of pacing.
rate_limit:
  # Range: 1-120
  requests_per_minute: 60

# Output settings.
output:
  base_directory: "./downloads"
  create_user_folders: true
  skip_existing: true

# Fetch and persistence settings.
download:
  request_timeout: 5m

  # Concurrent file writers. Range: 1-10
  sink_workers: 3

  # Stop after this many posts per profile. 0 means no limit.
  max_posts: 0

# Logging configuration.
logging:
  # debug, info, warn, error
  level: "info"

  # Log file path. Empty logs to stderr only.
  file: ""

  # Rotation settings for the log file, sizes in MB, age in days.
  max_size: 100
  max_backups: 3
  max_age: 7
  compress: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "igloader.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("creating configuration file: %w", err)
	}

	fmt.Println("Configuration file created:", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'igloader auth login' to store your credentials")
	fmt.Println("2. Run 'igloader config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'igloader fetch <username>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	display := *cfg
	display.Instagram.SessionID = maskSecret(display.Instagram.SessionID)
	display.Instagram.CSRFToken = maskSecret(display.Instagram.CSRFToken)

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("formatting configuration: %w", err)
	}

	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (IGLOADER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		for _, candidate := range []string{
			"igloader.yaml",
			"igloader.yml",
			".igloader.yaml",
			filepath.Join(os.Getenv("HOME"), ".igloader.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "igloader", "config.yaml"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return fmt.Errorf("no configuration file found, specify one with --config")
		}
	}

	fmt.Println("Validating configuration:", path)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	var warnings []string
	if cfg.Instagram.SessionID == "" {
		warnings = append(warnings, "Instagram session ID not configured")
	}
	if cfg.Instagram.CSRFToken == "" {
		warnings = append(warnings, "Instagram CSRF token not configured")
	}

	if cfg.Output.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
	}

	fmt.Println("\nConfiguration is valid.")
	fmt.Println("\nSummary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Base delay: %s (+%s jitter)\n", cfg.Pacing.BaseDelay, cfg.Pacing.Jitter)
	fmt.Printf("  Sink workers: %d\n", cfg.Download.SinkWorkers)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}
