package crawl

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/sources"
)

// Placeholders recognized in url_pattern templates.
const (
	placeholderBaseURL = "{base_url}"
	placeholderPageNum = "{page_num}"
	// defaultURLPattern is used when no pattern is configured.
	defaultURLPattern = "{base_url}?page={page_num}"
)

// urlPaginationStrategy paginates by substituting an incrementing
// page number into a URL template; no next element exists. An empty
// extraction on a freshly loaded page means past-the-end, so this is
// the one variant that suppresses the selector-missing diagnostic.
type urlPaginationStrategy struct {
	base

	pageNum int
}

// EmptyPageEndsCrawl marks the empty-page termination condition.
func (s *urlPaginationStrategy) EmptyPageEndsCrawl() bool {
	return true
}

// SetUp navigates to the seed page.
func (s *urlPaginationStrategy) SetUp(ctx context.Context) error {
	if s.src.Selector(sources.SelectorJobTable) == "" {
		return &ConfigurationError{Source: s.src.Name, Key: sources.SelectorJobTable}
	}
	return s.navigateStart(ctx)
}

// ExtractItemLinks extracts the links inside the job table.
func (s *urlPaginationStrategy) ExtractItemLinks(ctx context.Context) ([]string, error) {
	tableSelector := s.src.Selector(sources.SelectorJobTable)
	linkSelector := s.src.Selector(sources.SelectorJobLink)
	if linkSelector == "" {
		linkSelector = "a"
	}

	table, err := s.page.SelectOne(ctx, tableSelector)
	if err != nil {
		return nil, err
	}
	if table == nil {
		// Past the end: the listing container is gone.
		return nil, nil
	}

	links, err := s.extractHrefs(ctx, s.page, tableSelector+" "+linkSelector)
	if err != nil {
		return nil, err
	}

	s.log.Debug("extracted job links",
		"count", len(links),
		"page", s.pageNum)
	return links, nil
}

// AdvanceToNextPage computes the next page URL from the template and
// navigates to it directly.
func (s *urlPaginationStrategy) AdvanceToNextPage(ctx context.Context) (bool, error) {
	s.pageNum++

	nextURL := s.renderPattern(s.pageNum)
	s.log.Debug("navigating to next page",
		"page", s.pageNum,
		"url", nextURL)

	page, err := browser.Navigate(ctx, s.deps.Navigator, nextURL, s.deps.Retry, s.log)
	if err != nil {
		return false, err
	}
	s.page = page

	s.waitBetweenPages(ctx)
	return true, nil
}

// renderPattern substitutes the seed URL and page number into the
// configured url_pattern.
func (s *urlPaginationStrategy) renderPattern(pageNum int) string {
	pattern := s.settings.URLPattern
	if pattern == "" {
		pattern = defaultURLPattern
	}
	out := strings.ReplaceAll(pattern, placeholderBaseURL, s.src.URL)
	return strings.ReplaceAll(out, placeholderPageNum, strconv.Itoa(pageNum))
}

// waitBetweenPages applies the configured randomized inter-page wait.
func (s *urlPaginationStrategy) waitBetweenPages(ctx context.Context) {
	minWait := s.settings.WaitBetweenPagesMin
	maxWait := s.settings.WaitBetweenPagesMax
	if minWait <= 0 || maxWait < minWait {
		return
	}

	wait := minWait + rand.Float64()*(maxWait-minWait)
	s.log.Debug("waiting between pages", "seconds", wait)
	s.settle(ctx, time.Duration(wait*float64(time.Second)))
}
