package crawl

import (
	"context"
	"fmt"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/cache"
	"github.com/greg-randall/job-finder/internal/sources"
)

// clickThroughStrategy drives single-page boards like ADP where job
// content is revealed by clicking each entry in place. There is no
// pagination and no separate download phase: content is stored as
// each item is revealed, so the crawl reports pre-downloaded counts.
type clickThroughStrategy struct {
	base
}

// SetUp navigates to the seed page and clicks the optional "view all"
// control so every job entry is enumerable.
func (s *clickThroughStrategy) SetUp(ctx context.Context) error {
	if s.src.Selector(sources.SelectorJobButton) == "" {
		return &ConfigurationError{Source: s.src.Name, Key: sources.SelectorJobButton}
	}

	if err := s.navigateStart(ctx); err != nil {
		return err
	}

	viewAllSelector := s.src.Selector(sources.SelectorViewAllButton)
	if viewAllSelector == "" {
		return nil
	}

	viewAll, err := s.page.SelectOne(ctx, viewAllSelector)
	if err != nil || viewAll == nil {
		// The control is optional; boards below the fold threshold
		// don't render it.
		s.log.Debug("no view-all button found", "selector", viewAllSelector)
		return nil
	}
	if err := viewAll.Click(ctx); err != nil {
		s.log.Warn("failed to click view-all button", "error", err)
		return nil
	}
	s.settle(ctx, pageSettleWait)
	s.log.Info("clicked view-all button")
	return nil
}

// ExtractItemLinks is unused: items are handled by CrawlInline.
func (s *clickThroughStrategy) ExtractItemLinks(ctx context.Context) ([]string, error) {
	return nil, nil
}

// AdvanceToNextPage is unused: click-through boards are single-page.
func (s *clickThroughStrategy) AdvanceToNextPage(ctx context.Context) (bool, error) {
	return false, nil
}

// CrawlInline enumerates the job entries once and clicks each in
// turn, storing the revealed content before returning to the list
// view for the next click.
func (s *clickThroughStrategy) CrawlInline(ctx context.Context, session *Session) (DownloadStats, error) {
	buttonSelector := s.src.Selector(sources.SelectorJobButton)

	buttons, err := s.page.SelectAll(ctx, buttonSelector)
	if err != nil {
		return DownloadStats{}, fmt.Errorf("failed to enumerate job entries: %w", err)
	}

	total := len(buttons)
	stats := DownloadStats{Total: total}
	session.RecordPage()
	s.log.Info("found job entries", "count", total)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		// The list view is rebuilt after every return, so stale
		// handles cannot be reused across clicks.
		current, err := s.page.SelectAll(ctx, buttonSelector)
		if err != nil || i >= len(current) {
			s.log.Warn("job entry disappeared from list view", "index", i)
			stats.Errors++
			continue
		}

		if err := s.processEntry(ctx, current[i], i, &stats); err != nil {
			stats.Errors++
			s.log.Error("failed to process job entry",
				"index", i,
				"error", err)
		}

		if err := s.returnToList(ctx); err != nil {
			return stats, fmt.Errorf("failed to return to list view: %w", err)
		}

		s.sleepBetweenJobs(ctx)
	}

	session.CountItems(total)
	return stats, nil
}

// processEntry clicks one job entry and stores the revealed content.
func (s *clickThroughStrategy) processEntry(
	ctx context.Context,
	entry browser.Element,
	index int,
	stats *DownloadStats,
) error {
	if err := entry.Click(ctx); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	s.settle(ctx, pageSettleWait)

	itemURL := s.page.URL()
	if itemURL == "" || itemURL == s.src.URL {
		// The click revealed content without changing the address, so
		// derive a stable pseudo-URL for the cache key.
		itemURL = fmt.Sprintf("%s#job-%d", s.src.URL, index)
	}

	markup, err := s.page.Content(ctx)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	text, err := browser.CleanText(markup)
	if err != nil {
		return fmt.Errorf("failed to clean content: %w", err)
	}

	outcome, err := s.deps.Store.Put(s.src.Name, itemURL, text)
	if err != nil {
		return err
	}
	switch outcome {
	case cache.OutcomeDownloaded:
		stats.Processed++
	case cache.OutcomeCached:
		stats.SkippedExisting++
	case cache.OutcomeFailed:
		return fmt.Errorf("cache write failed for %s", itemURL)
	}
	return nil
}

// returnToList navigates back to the list view, preferring the
// configured back control and falling back to re-navigation.
func (s *clickThroughStrategy) returnToList(ctx context.Context) error {
	if backSelector := s.src.Selector(sources.SelectorBackButton); backSelector != "" {
		back, err := s.page.SelectOne(ctx, backSelector)
		if err == nil && back != nil {
			if err := back.Click(ctx); err == nil {
				s.settle(ctx, pageSettleWait)
				return nil
			}
		}
	}

	page, err := browser.Navigate(ctx, s.deps.Navigator, s.src.URL, s.deps.Retry, s.log)
	if err != nil {
		return err
	}
	s.page = page
	return nil
}

// sleepBetweenJobs applies the configured inter-item pause.
func (s *clickThroughStrategy) sleepBetweenJobs(ctx context.Context) {
	if s.settings.SleepBetweenJobs > 0 {
		s.settle(ctx, secondsToDuration(s.settings.SleepBetweenJobs))
	}
}
