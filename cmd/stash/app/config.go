package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/stash/internal/config"
	"github.com/agentstation/stash/pkg/constants"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Inventory sources
	ProfilePath     string
	DefinitionsPath string

	// Refresh scheduling
	PollInterval           time.Duration
	BackgroundPollInterval time.Duration
	AutoRefresh            bool

	// HTTP API
	ListenAddr string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (STASH_ prefixed)
// 3. .env files
// 4. Config file (~/.stash.yaml or ./.stash.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("stash")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config is fine; an explicit one must exist.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configFile != "" {
			return nil, err
		}
	}

	src := config.New(v)
	return &Config{
		ConfigFile: v.ConfigFileUsed(),

		ProfilePath:     v.GetString("profile_path"),
		DefinitionsPath: v.GetString("definitions_path"),

		PollInterval:           src.Duration("poll_interval", constants.DefaultPollInterval),
		BackgroundPollInterval: src.Duration("background_poll_interval", constants.DefaultBackgroundPollInterval),
		AutoRefresh:            src.Bool("auto_refresh", false),

		ListenAddr: src.StringOr("listen_addr", constants.DefaultListenAddr),

		LogLevel:  src.StringOr("LOG_LEVEL", ""),
		LogFormat: src.StringOr("LOG_FORMAT", "auto"),
		LogOutput: src.StringOr("LOG_OUTPUT", "stderr"),
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, profilePath, definitionsPath string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if profilePath != "" {
		c.ProfilePath = profilePath
	}
	if definitionsPath != "" {
		c.DefinitionsPath = definitionsPath
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so its values win over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
