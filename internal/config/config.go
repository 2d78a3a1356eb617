// Package config provides configuration management for the job finder
// application. It handles loading, validation, and access to configuration
// values from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/greg-randall/job-finder/internal/logger"
)

// Default configuration values.
const (
	// DefaultCacheDir is the default directory for downloaded job postings.
	DefaultCacheDir = "cache"
	// DefaultSummaryDir is the default directory for run summary files.
	DefaultSummaryDir = "logs"
	// DefaultSourcesFile is the default path to the sources catalog.
	DefaultSourcesFile = "sources.yml"
	// DefaultDiagnosticsDir is the default directory for failure dumps.
	DefaultDiagnosticsDir = "error_pages"
	// DefaultNavigationRetries is the default number of navigation attempts.
	DefaultNavigationRetries = 3
	// DefaultRetryDelay is the default delay between navigation attempts.
	DefaultRetryDelay = 5 * time.Second
	// DefaultMaxConsecutiveErrors is the default download breaker ceiling.
	DefaultMaxConsecutiveErrors = 8
	// DefaultSourceTimeout is the default wall-clock budget per source.
	DefaultSourceTimeout = 30 * time.Minute
	// DefaultPageLoadWait is the default settle time after navigation.
	DefaultPageLoadWait = 2 * time.Second
)

// Interface defines the interface for configuration management.
type Interface interface {
	// GetAppConfig returns the application configuration.
	GetAppConfig() *AppConfig
	// GetCrawlConfig returns the crawl configuration.
	GetCrawlConfig() *CrawlConfig
	// GetPathsConfig returns the paths configuration.
	GetPathsConfig() *PathsConfig
	// GetLoggerConfig returns the logger configuration.
	GetLoggerConfig() *logger.Config
	// Validate validates the configuration.
	Validate() error
}

// Ensure Config implements Interface.
var _ Interface = (*Config)(nil)

// AppConfig represents application-level settings.
type AppConfig struct {
	// Name is the name of the application.
	Name string `mapstructure:"name" yaml:"name"`
	// Environment is the application environment.
	Environment string `mapstructure:"environment" yaml:"environment"`
	// Debug indicates whether debug mode is enabled.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// CrawlConfig represents crawl behavior settings shared by all sources.
type CrawlConfig struct {
	// NavigationRetries is the maximum number of attempts per navigation.
	NavigationRetries int `mapstructure:"navigation_retries" yaml:"navigation_retries"`
	// RetryDelay is the fixed delay between navigation attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	// MaxConsecutiveErrors is the download circuit breaker ceiling.
	MaxConsecutiveErrors int `mapstructure:"max_consecutive_errors" yaml:"max_consecutive_errors"`
	// SourceTimeout is the wall-clock budget for one source crawl.
	SourceTimeout time.Duration `mapstructure:"source_timeout" yaml:"source_timeout"`
	// PageLoadWait is how long to let a page settle after navigation.
	PageLoadWait time.Duration `mapstructure:"page_load_wait" yaml:"page_load_wait"`
	// UserAgent is the user agent sent by the fallback HTTP fetcher.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// PathsConfig represents filesystem locations used by the application.
type PathsConfig struct {
	// CacheDir is where downloaded job postings are stored.
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`
	// SummaryDir is where run summary files are written.
	SummaryDir string `mapstructure:"summary_dir" yaml:"summary_dir"`
	// DiagnosticsDir is where selector failure dumps are written.
	DiagnosticsDir string `mapstructure:"diagnostics_dir" yaml:"diagnostics_dir"`
	// SourcesFile is the path to the sources catalog.
	SourcesFile string `mapstructure:"sources_file" yaml:"sources_file"`
}

// Config represents the application configuration.
type Config struct {
	// App holds application-level settings.
	App AppConfig `mapstructure:"app" yaml:"app"`
	// Crawl holds crawl behavior settings.
	Crawl CrawlConfig `mapstructure:"crawl" yaml:"crawl"`
	// Paths holds filesystem locations.
	Paths PathsConfig `mapstructure:"paths" yaml:"paths"`
	// Logger holds logging configuration.
	Logger logger.Config `mapstructure:"logger" yaml:"logger"`
}

// GetAppConfig returns the application configuration.
func (c *Config) GetAppConfig() *AppConfig {
	return &c.App
}

// GetCrawlConfig returns the crawl configuration.
func (c *Config) GetCrawlConfig() *CrawlConfig {
	return &c.Crawl
}

// GetPathsConfig returns the paths configuration.
func (c *Config) GetPathsConfig() *PathsConfig {
	return &c.Paths
}

// GetLoggerConfig returns the logger configuration.
func (c *Config) GetLoggerConfig() *logger.Config {
	return &c.Logger
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must not be empty")
	}
	if c.Paths.SourcesFile == "" {
		return errors.New("paths.sources_file must not be empty")
	}
	if c.Crawl.NavigationRetries <= 0 {
		return fmt.Errorf("crawl.navigation_retries must be positive, got %d",
			c.Crawl.NavigationRetries)
	}
	if c.Crawl.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("crawl.max_consecutive_errors must be positive, got %d",
			c.Crawl.MaxConsecutiveErrors)
	}
	if c.Crawl.SourceTimeout <= 0 {
		return errors.New("crawl.source_timeout must be positive")
	}
	return nil
}

// setDefaults registers default values with viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "job-finder")
	v.SetDefault("app.environment", "development")
	v.SetDefault("crawl.navigation_retries", DefaultNavigationRetries)
	v.SetDefault("crawl.retry_delay", DefaultRetryDelay)
	v.SetDefault("crawl.max_consecutive_errors", DefaultMaxConsecutiveErrors)
	v.SetDefault("crawl.source_timeout", DefaultSourceTimeout)
	v.SetDefault("crawl.page_load_wait", DefaultPageLoadWait)
	v.SetDefault("paths.cache_dir", DefaultCacheDir)
	v.SetDefault("paths.summary_dir", DefaultSummaryDir)
	v.SetDefault("paths.diagnostics_dir", DefaultDiagnosticsDir)
	v.SetDefault("paths.sources_file", DefaultSourcesFile)
	v.SetDefault("logger.level", string(logger.DefaultLevel))
	v.SetDefault("logger.encoding", logger.DefaultEncoding)
}

// Load loads configuration from the specified path. An empty path falls
// back to config.yaml in the working directory; a missing config file is
// not an error because every value has a default.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
