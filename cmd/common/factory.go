package common

import (
	"fmt"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/cache"
	"github.com/greg-randall/job-finder/internal/config"
	"github.com/greg-randall/job-finder/internal/crawl"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/internal/scheduler"
	"github.com/greg-randall/job-finder/internal/sources"
	"github.com/greg-randall/job-finder/internal/throttle"
)

// BuildDeps loads configuration, builds the logger, and loads the
// source catalog. sourcesPath overrides the configured catalog path
// when non-empty; debug forces debug-level logging.
func BuildDeps(cfgPath, sourcesPath string, debug bool) (CommandDeps, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := cfg.GetLoggerConfig()
	if debug {
		logCfg.Level = logger.DebugLevel
		cfg.App.Debug = true
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("failed to create logger: %w", err)
	}

	catalogPath := cfg.GetPathsConfig().SourcesFile
	if sourcesPath != "" {
		catalogPath = sourcesPath
	}
	catalog, err := sources.LoadFile(catalogPath)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("failed to load sources from %s: %w", catalogPath, err)
	}

	return CommandDeps{Logger: log, Config: cfg, Catalog: catalog}, nil
}

// Engine bundles the crawl machinery a run needs.
type Engine struct {
	Crawler   *crawl.Crawler
	Scheduler *scheduler.Scheduler
	Store     *cache.Store
}

// BuildEngine assembles the full crawl stack from validated deps: the
// static navigator, the fetch fallback chain, the download cache, the
// throttled downloader, and the partitioned scheduler.
func BuildEngine(deps CommandDeps, showProgress bool) (*Engine, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}

	crawlCfg := deps.Config.GetCrawlConfig()
	paths := deps.Config.GetPathsConfig()
	log := deps.Logger

	fetcher := browser.NewStaticFetcher(nil, crawlCfg.UserAgent)
	navigator := browser.NewStaticNavigator(fetcher)
	retryCfg := browser.RetryConfig{
		MaxAttempts: crawlCfg.NavigationRetries,
		Delay:       crawlCfg.RetryDelay,
	}
	chain := browser.NewChain(log,
		browser.NavigatorFetch(navigator, retryCfg, log),
		fetcher.StaticFetch())

	store, err := cache.NewStore(paths.CacheDir, browser.NewTextExtractor(chain), log)
	if err != nil {
		return nil, fmt.Errorf("failed to open download cache: %w", err)
	}

	diag, err := crawl.NewFileDiagnostics(paths.DiagnosticsDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostics directory: %w", err)
	}

	delay := throttle.New(throttle.DefaultFloor, throttle.DefaultCeiling)
	downloader := crawl.NewDownloader(
		store, delay, crawlCfg.MaxConsecutiveErrors, log, showProgress)
	crawler := crawl.NewCrawler(store, downloader, log, diag)

	strategyDeps := crawl.Deps{
		Navigator:   navigator,
		Retry:       retryCfg,
		Store:       store,
		Logger:      log,
		Diagnostics: diag,
	}
	factory := func(src *sources.Source) (crawl.Strategy, error) {
		return crawl.NewStrategy(src, strategyDeps)
	}

	sched := scheduler.New(crawler, factory, crawlCfg.SourceTimeout, log)
	return &Engine{Crawler: crawler, Scheduler: sched, Store: store}, nil
}
