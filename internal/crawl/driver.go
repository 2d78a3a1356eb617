package crawl

import (
	"context"
	"errors"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/internal/sources"
)

// Crawler executes crawls: it drives a strategy through the generic
// extract-then-advance loop, applies the early-stop heuristic, and
// hands the collected links to the download phase.
type Crawler struct {
	store      CacheStore
	downloader *Downloader
	logger     logger.Interface
	diag       Diagnostics
}

// NewCrawler creates a crawler.
func NewCrawler(
	store CacheStore,
	downloader *Downloader,
	log logger.Interface,
	diag Diagnostics,
) *Crawler {
	if log == nil {
		log = logger.NewNoOp()
	}
	if diag == nil {
		diag = NoopDiagnostics{}
	}
	return &Crawler{
		store:      store,
		downloader: downloader,
		logger:     log,
		diag:       diag,
	}
}

// Run executes one crawl from setup through download and returns its
// result. Failures are reported in the result rather than as an
// error, so a scheduler can treat every crawl uniformly.
func (c *Crawler) Run(ctx context.Context, strategy Strategy) Result {
	src := strategy.Source()
	log := c.logger.WithSource(src.Name)
	result := Result{Source: src.Name}

	if !src.Enabled {
		log.Info("source is disabled, skipping")
		result.Reason = FailureDisabled
		return result
	}

	settings, err := src.DecodeSettings()
	if err != nil {
		result.Reason = FailureConfiguration
		result.Err = err
		return result
	}

	log.Info("starting crawl", "url", src.URL, "backend", string(src.Backend))

	if err := strategy.SetUp(ctx); err != nil {
		log.Error("crawl setup failed", "error", err)
		result.Reason = classify(err, FailureNavigation)
		result.Err = err
		return result
	}

	session := NewSession(deduplicates(strategy))

	if inline, ok := strategy.(inlineDownloader); ok {
		return c.runInline(ctx, inline, src, session, log)
	}

	failure := c.paginate(ctx, strategy, src, settings, session, log)
	result.Stats = *session.Stats()
	if failure != nil {
		result.Reason = failure.reason
		result.Err = failure.err
		return result
	}

	result.Download = c.downloader.DownloadAll(
		ctx, src.Name, session.Links(),
		secondsToDuration(settings.SleepBetweenJobs))

	log.Info("crawl complete",
		"pages_scraped", result.Stats.PagesScraped,
		"jobs_found", result.Stats.JobsFound,
		"downloaded", result.Download.Processed,
		"skipped", result.Download.TotalSkipped(),
		"early_stopped", result.Stats.EarlyStopped)

	result.Success = true
	return result
}

// crawlFailure pairs a failure classification with its cause.
type crawlFailure struct {
	reason FailureReason
	err    error
}

// paginate runs the extract-then-advance loop until a terminal
// condition: no further pages, the early-stop heuristic, the max-page
// ceiling, or a fatal error.
func (c *Crawler) paginate(
	ctx context.Context,
	strategy Strategy,
	src *sources.Source,
	settings *sources.Settings,
	session *Session,
	log logger.Interface,
) *crawlFailure {
	quietOnEmpty := suppressesEmptyDiagnostic(strategy)

	for {
		if err := ctx.Err(); err != nil {
			return &crawlFailure{reason: contextReason(err), err: err}
		}

		page := session.PageNumber()
		log.Info("scraping page", "page", page)

		links, err := strategy.ExtractItemLinks(ctx)
		if err != nil {
			if failure := c.extractionFailure(ctx, err, src, page, log); failure != nil {
				return failure
			}
			session.Stats().Errors++
			links = nil
		}

		session.RecordPage()

		if len(links) == 0 {
			if quietOnEmpty {
				// Structural termination: an empty page means past
				// the end, not a broken selector.
				log.Info("no jobs on page, reached the end", "page", page)
				return nil
			}
			if page == 1 {
				// The selector never matched; the whole source is
				// treated as failed.
				selErr := &SelectorError{
					Source:     src.Name,
					Selector:   src.Selector(sources.SelectorJobLink),
					URL:        src.URL,
					PageNumber: page,
				}
				c.diag.CaptureError(ctx, ErrorContext{
					Source:     src.Name,
					Kind:       "SelectorError",
					Message:    selErr.Error(),
					URL:        src.URL,
					Selector:   selErr.Selector,
					PageNumber: page,
				})
				return &crawlFailure{reason: FailureSelector, err: selErr}
			}
			log.Info("no jobs on page", "page", page)
		}

		added := session.AddLinks(links)
		log.Info("page scraped",
			"page", page,
			"links", len(links),
			"collected", added,
			"total", session.Stats().JobsFound)

		if c.earlyStop(src.Name, links, settings, session, log) {
			return nil
		}

		if settings.MaxPages > 0 && page >= settings.MaxPages {
			log.Info("reached max pages", "max_pages", settings.MaxPages)
			return nil
		}

		more, err := strategy.AdvanceToNextPage(ctx)
		if err != nil {
			var navErr *browser.NavigationError
			if errors.As(err, &navErr) {
				return &crawlFailure{reason: FailureNavigation, err: err}
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return &crawlFailure{reason: contextReason(ctxErr), err: err}
			}
			// A broken pagination control ends the crawl with what
			// was collected so far.
			log.Error("pagination failed, stopping", "error", err)
			return nil
		}
		if !more {
			log.Info("reached last page")
			return nil
		}

		session.NextPage()
	}
}

// extractionFailure classifies an extraction error. It returns nil
// when the error should be absorbed as "no items this page".
func (c *Crawler) extractionFailure(
	ctx context.Context,
	err error,
	src *sources.Source,
	page int,
	log logger.Interface,
) *crawlFailure {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return &crawlFailure{reason: FailureConfiguration, err: err}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &crawlFailure{reason: contextReason(ctxErr), err: err}
	}
	if page == 1 {
		c.diag.CaptureError(ctx, ErrorContext{
			Source:     src.Name,
			Kind:       "SelectorError",
			Message:    err.Error(),
			URL:        src.URL,
			PageNumber: page,
		})
		return &crawlFailure{reason: FailureSelector, err: err}
	}

	log.Error("extraction failed, treating as empty page",
		"page", page,
		"error", err)
	return nil
}

// earlyStop probes the page's batch against the cache and reports
// whether pagination should end. Links are never dropped, only
// further pagination is skipped.
func (c *Crawler) earlyStop(
	sourceName string,
	links []string,
	settings *sources.Settings,
	session *Session,
	log logger.Interface,
) bool {
	stats := session.Stats()
	newCount := 0
	for _, link := range links {
		if c.store.Contains(sourceName, link) {
			stats.CachedCount++
		} else {
			stats.NewCount++
			newCount++
		}
	}

	if newCount > settings.MinNewJobsPerPage {
		return false
	}

	stats.EarlyStopped = true
	log.Info("early stop: no new jobs on page",
		"page", session.PageNumber(),
		"new", newCount,
		"threshold", settings.MinNewJobsPerPage)
	return true
}

// runInline executes a strategy that downloads items as it reveals
// them, bypassing the generic collect-then-download flow.
func (c *Crawler) runInline(
	ctx context.Context,
	inline inlineDownloader,
	src *sources.Source,
	session *Session,
	log logger.Interface,
) Result {
	result := Result{Source: src.Name}

	dl, err := inline.CrawlInline(ctx, session)
	result.Stats = *session.Stats()
	result.Download = dl
	if err != nil {
		log.Error("click-through crawl failed", "error", err)
		result.Reason = classify(err, FailureInternal)
		result.Err = err
		return result
	}

	log.Info("click-through crawl complete",
		"jobs_found", result.Stats.JobsFound,
		"downloaded", dl.Processed,
		"skipped", dl.TotalSkipped(),
		"errors", dl.Errors)

	result.Success = true
	return result
}

// classify maps an error onto a failure reason, falling back to the
// given default.
func classify(err error, fallback FailureReason) FailureReason {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return FailureConfiguration
	}
	var navErr *browser.NavigationError
	if errors.As(err, &navErr) {
		return FailureNavigation
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, context.Canceled) {
		return FailureCancelled
	}
	return fallback
}

// contextReason maps a context error onto a failure reason: the
// wall-clock budget expiring and the caller cancelling the run are
// reported differently.
func contextReason(err error) FailureReason {
	if errors.Is(err, context.Canceled) {
		return FailureCancelled
	}
	return FailureTimeout
}

// deduplicates reports whether the strategy collects links into a set.
func deduplicates(strategy Strategy) bool {
	if d, ok := strategy.(linkDeduper); ok {
		return d.DeduplicatesLinks()
	}
	return false
}

// suppressesEmptyDiagnostic reports whether an empty extraction is a
// structural termination for the strategy.
func suppressesEmptyDiagnostic(strategy Strategy) bool {
	if t, ok := strategy.(emptyPageTerminator); ok {
		return t.EmptyPageEndsCrawl()
	}
	return false
}
