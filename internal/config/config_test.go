package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greg-randall/job-finder/internal/config"
	"github.com/greg-randall/job-finder/internal/logger"
)

func TestLoadDefaults(t *testing.T) {
	// Missing config file is not an error: every value has a default.
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	crawl := cfg.GetCrawlConfig()
	assert.Equal(t, config.DefaultNavigationRetries, crawl.NavigationRetries)
	assert.Equal(t, config.DefaultRetryDelay, crawl.RetryDelay)
	assert.Equal(t, config.DefaultMaxConsecutiveErrors, crawl.MaxConsecutiveErrors)
	assert.Equal(t, config.DefaultSourceTimeout, crawl.SourceTimeout)

	paths := cfg.GetPathsConfig()
	assert.Equal(t, config.DefaultCacheDir, paths.CacheDir)
	assert.Equal(t, config.DefaultSummaryDir, paths.SummaryDir)
	assert.Equal(t, config.DefaultSourcesFile, paths.SourcesFile)
	assert.Equal(t, config.DefaultDiagnosticsDir, paths.DiagnosticsDir)

	assert.Equal(t, logger.DefaultLevel, cfg.GetLoggerConfig().Level)
}

func TestLoadFile(t *testing.T) {
	content := `
app:
  name: job-finder
  environment: production

crawl:
  navigation_retries: 5
  retry_delay: 10s
  max_consecutive_errors: 4
  source_timeout: 15m

paths:
  cache_dir: /tmp/jobs/cache
  sources_file: /tmp/jobs/sources.yml

logger:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.GetAppConfig().Environment)

	crawl := cfg.GetCrawlConfig()
	assert.Equal(t, 5, crawl.NavigationRetries)
	assert.Equal(t, 10*time.Second, crawl.RetryDelay)
	assert.Equal(t, 4, crawl.MaxConsecutiveErrors)
	assert.Equal(t, 15*time.Minute, crawl.SourceTimeout)

	// Unset keys still get defaults.
	assert.Equal(t, config.DefaultPageLoadWait, crawl.PageLoadWait)
	assert.Equal(t, config.DefaultSummaryDir, cfg.GetPathsConfig().SummaryDir)

	assert.Equal(t, "/tmp/jobs/cache", cfg.GetPathsConfig().CacheDir)
	assert.Equal(t, logger.WarnLevel, cfg.GetLoggerConfig().Level)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		errText string
	}{
		{
			name:    "empty cache dir",
			mutate:  func(c *config.Config) { c.Paths.CacheDir = "" },
			errText: "cache_dir",
		},
		{
			name:    "empty sources file",
			mutate:  func(c *config.Config) { c.Paths.SourcesFile = "" },
			errText: "sources_file",
		},
		{
			name:    "zero retries",
			mutate:  func(c *config.Config) { c.Crawl.NavigationRetries = 0 },
			errText: "navigation_retries",
		},
		{
			name:    "zero breaker ceiling",
			mutate:  func(c *config.Config) { c.Crawl.MaxConsecutiveErrors = 0 },
			errText: "max_consecutive_errors",
		},
		{
			name:    "zero source timeout",
			mutate:  func(c *config.Config) { c.Crawl.SourceTimeout = 0 },
			errText: "source_timeout",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func validConfig() *config.Config {
	return &config.Config{
		Crawl: config.CrawlConfig{
			NavigationRetries:    config.DefaultNavigationRetries,
			RetryDelay:           config.DefaultRetryDelay,
			MaxConsecutiveErrors: config.DefaultMaxConsecutiveErrors,
			SourceTimeout:        config.DefaultSourceTimeout,
		},
		Paths: config.PathsConfig{
			CacheDir:    "cache",
			SummaryDir:  "logs",
			SourcesFile: "sources.yml",
		},
	}
}
