package crawl

import (
	"context"
	"fmt"
	"strings"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/sources"
)

// customNavigationStrategy drives boards like the Virginia state jobs
// site: an overlay may need dismissing before the first extraction,
// next-page links are relative and must be resolved against a
// configured base URL, and the same item can appear on several
// paginated views, so collected links are deduplicated.
type customNavigationStrategy struct {
	base
}

// DeduplicatesLinks marks the set-based link collection.
func (s *customNavigationStrategy) DeduplicatesLinks() bool {
	return true
}

// SetUp navigates to the seed page and dismisses the cookie consent
// overlay when configured.
func (s *customNavigationStrategy) SetUp(ctx context.Context) error {
	if err := s.navigateStart(ctx); err != nil {
		return err
	}

	if !s.settings.HandleCookies {
		return nil
	}

	modalClass := s.src.Selector(sources.SelectorCookieModalClass)
	if modalClass == "" {
		return &ConfigurationError{Source: s.src.Name, Key: sources.SelectorCookieModalClass}
	}

	script := fmt.Sprintf(
		"document.querySelectorAll('.%s').forEach(el => el.remove())",
		modalClass)
	if _, err := s.page.Evaluate(ctx, script); err != nil {
		// The overlay is cosmetic; extraction may still work.
		s.log.Warn("failed to dismiss cookie overlay",
			"class", modalClass,
			"error", err)
		return nil
	}

	s.log.Debug("dismissed cookie overlay", "class", modalClass)
	return nil
}

// ExtractItemLinks extracts job links with the configured selector.
func (s *customNavigationStrategy) ExtractItemLinks(ctx context.Context) ([]string, error) {
	selector := s.src.Selector(sources.SelectorJobLink)
	if selector == "" {
		return nil, &ConfigurationError{Source: s.src.Name, Key: sources.SelectorJobLink}
	}

	links, err := s.extractHrefs(ctx, s.page, selector)
	if err != nil {
		return nil, err
	}

	s.log.Debug("extracted job links", "count", len(links))
	return links, nil
}

// AdvanceToNextPage resolves the next-page link's href, prefixing it
// with the configured base URL when it is relative, and navigates to
// it directly.
func (s *customNavigationStrategy) AdvanceToNextPage(ctx context.Context) (bool, error) {
	nextSelector := s.src.Selector(sources.SelectorNextPage)
	if nextSelector == "" {
		s.log.Debug("no pagination configured")
		return false, nil
	}

	next, err := s.page.SelectOne(ctx, nextSelector)
	if err != nil {
		return false, err
	}
	if next == nil {
		s.log.Info("no next page link found")
		return false, nil
	}

	nextURL, err := next.Attribute(ctx, "href")
	if err != nil || nextURL == "" {
		s.log.Info("next page link has no href")
		return false, nil
	}

	if s.settings.BaseURL != "" && !strings.HasPrefix(nextURL, "http") {
		nextURL = s.settings.BaseURL + nextURL
	}

	s.log.Debug("navigating to next page", "url", nextURL)
	page, err := browser.Navigate(ctx, s.deps.Navigator, nextURL, s.deps.Retry, s.log)
	if err != nil {
		return false, err
	}
	s.page = page
	s.settle(ctx, pageSettleWait)
	return true, nil
}
