package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TMDB_RESOLVER"

// Load loads the configuration from file and environment. The file is optional.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tmdb-resolver"))
		}

		// Check /etc
		v.AddConfigPath("/etc/tmdb-resolver/")
	}

	// Environment: TMDB_RESOLVER_TMDB_API_TOKEN etc., plus the bare names used by deployments
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("tmdb.api_token", envPrefix+"_TMDB_API_TOKEN", "TMDB_API_TOKEN"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}
	if err := v.BindEnv("app_version", envPrefix+"_APP_VERSION", "APP_VERSION"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}
	if err := v.BindEnv("sentry_dsn", envPrefix+"_SENTRY_DSN", "SENTRY_DSN"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_version", "dev")
	v.SetDefault("sentry_dsn", "")

	// TMDB defaults
	v.SetDefault("tmdb.api_token", "")
	v.SetDefault("tmdb.api_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.web_url", "https://www.themoviedb.org")
	v.SetDefault("tmdb.timeout", "10s")
	v.SetDefault("tmdb.cover_width", 500)
	v.SetDefault("tmdb.canonical_cache_size", 1024)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.APIToken == "" || cfg.TMDB.APIToken == "your-api-token-here" {
		return fmt.Errorf("tmdb.api_token must be set to a valid API read access token")
	}

	if cfg.TMDB.APIURL == "" {
		return fmt.Errorf("tmdb.api_url is required")
	}

	if cfg.TMDB.WebURL == "" {
		return fmt.Errorf("tmdb.web_url is required")
	}

	if cfg.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}

	if cfg.TMDB.CoverWidth <= 0 {
		return fmt.Errorf("tmdb.cover_width must be positive")
	}

	if cfg.TMDB.CanonicalCacheSize < 0 {
		return fmt.Errorf("tmdb.canonical_cache_size must not be negative")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", cfg.Server.Port)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
