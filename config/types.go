package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	AppVersion string        `mapstructure:"app_version"`
	SentryDSN  string        `mapstructure:"sentry_dsn"`
	TMDB       TMDBConfig    `mapstructure:"tmdb"`
	Server     ServerConfig  `mapstructure:"server"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds TMDB API connection details
type TMDBConfig struct {
	APIToken           string        `mapstructure:"api_token"`
	APIURL             string        `mapstructure:"api_url"`
	WebURL             string        `mapstructure:"web_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	CoverWidth         int           `mapstructure:"cover_width"`
	CanonicalCacheSize int           `mapstructure:"canonical_cache_size"`
}

// ServerConfig contains the HTTP listener settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
