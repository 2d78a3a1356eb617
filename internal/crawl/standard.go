package crawl

import (
	"context"

	"github.com/greg-randall/job-finder/internal/sources"
)

// standardStrategy paginates by clicking a next button. It drives
// boards like Workday and ApplicantPro that render a link list per
// page with a next/previous control.
type standardStrategy struct {
	base

	// terminal latches once the disabled next button is observed, so
	// later AdvanceToNextPage calls return false without re-querying
	// the page.
	terminal bool
}

// SetUp navigates to the seed page.
func (s *standardStrategy) SetUp(ctx context.Context) error {
	return s.navigateStart(ctx)
}

// ExtractItemLinks extracts job links with the configured selector.
func (s *standardStrategy) ExtractItemLinks(ctx context.Context) ([]string, error) {
	selector := s.src.Selector(sources.SelectorJobLink)
	if selector == "" {
		return nil, &ConfigurationError{Source: s.src.Name, Key: sources.SelectorJobLink}
	}

	links, err := s.extractHrefs(ctx, s.page, selector)
	if err != nil {
		return nil, err
	}

	s.log.Debug("extracted job links",
		"count", len(links),
		"selector", selector)
	return links, nil
}

// AdvanceToNextPage clicks the next button. The disabled selector is
// checked before the button itself so a slow-rendering next button is
// not misread as end-of-results.
func (s *standardStrategy) AdvanceToNextPage(ctx context.Context) (bool, error) {
	if s.terminal {
		return false, nil
	}

	nextSelector := s.src.Selector(sources.SelectorNextPage)
	if nextSelector == "" {
		// Single-page site.
		s.log.Debug("no pagination configured")
		return false, nil
	}

	if disabledSelector := s.src.Selector(sources.SelectorNextPageDisabled); disabledSelector != "" {
		disabled, err := s.page.SelectOne(ctx, disabledSelector)
		if err != nil {
			return false, err
		}
		if disabled != nil {
			s.log.Info("reached last page, next button is disabled")
			s.terminal = true
			return false, nil
		}
	}

	next, err := s.page.SelectOne(ctx, nextSelector)
	if err != nil {
		return false, err
	}
	if next == nil {
		s.log.Info("no next button found")
		return false, nil
	}

	if err := next.Click(ctx); err != nil {
		s.log.Error("failed to click next button", "error", err)
		return false, err
	}
	s.settle(ctx, pageSettleWait)

	s.log.Debug("navigated to next page")
	return true, nil
}
