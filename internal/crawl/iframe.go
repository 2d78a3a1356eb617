package crawl

import (
	"context"
	"fmt"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/sources"
)

// iframeStrategy paginates inside a nested iframe document, as boards
// like iCIMS do. Both extraction and pagination run against the
// nested context; failing to enter it during setup is a hard stop for
// the whole crawl.
type iframeStrategy struct {
	base

	frame    browser.Page
	terminal bool
}

// SetUp navigates to the seed page and enters the configured iframe.
func (s *iframeStrategy) SetUp(ctx context.Context) error {
	iframeSelector := s.src.Selector(sources.SelectorIframe)
	if iframeSelector == "" {
		return &ConfigurationError{Source: s.src.Name, Key: sources.SelectorIframe}
	}

	if err := s.navigateStart(ctx); err != nil {
		return err
	}

	frame, err := s.page.Frame(ctx, iframeSelector)
	if err != nil {
		return fmt.Errorf("failed to enter iframe %q: %w", iframeSelector, err)
	}
	s.frame = frame

	s.log.Info("entered iframe", "selector", iframeSelector)
	return nil
}

// ExtractItemLinks extracts job links from the nested document.
func (s *iframeStrategy) ExtractItemLinks(ctx context.Context) ([]string, error) {
	selector := s.src.Selector(sources.SelectorJobLink)
	if selector == "" {
		return nil, &ConfigurationError{Source: s.src.Name, Key: sources.SelectorJobLink}
	}

	// Iframe content lags the outer document.
	s.settle(ctx, iframeSettleWait)

	links, err := s.extractHrefs(ctx, s.frame, selector)
	if err != nil {
		return nil, err
	}

	s.log.Debug("extracted job links from iframe", "count", len(links))
	return links, nil
}

// AdvanceToNextPage clicks the next button inside the iframe.
func (s *iframeStrategy) AdvanceToNextPage(ctx context.Context) (bool, error) {
	if s.terminal {
		return false, nil
	}

	nextSelector := s.src.Selector(sources.SelectorNextPage)
	if nextSelector == "" {
		s.log.Debug("no pagination configured")
		return false, nil
	}

	if disabledSelector := s.src.Selector(sources.SelectorNextPageDisabled); disabledSelector != "" {
		disabled, err := s.frame.SelectOne(ctx, disabledSelector)
		if err != nil {
			return false, err
		}
		if disabled != nil {
			s.log.Info("reached last page in iframe, next button is disabled")
			s.terminal = true
			return false, nil
		}
	}

	next, err := s.frame.SelectOne(ctx, nextSelector)
	if err != nil {
		return false, err
	}
	if next == nil {
		s.log.Info("no next button found in iframe")
		return false, nil
	}

	if err := next.Click(ctx); err != nil {
		return false, err
	}
	s.settle(ctx, pageSettleWait)

	s.log.Debug("navigated to next page in iframe")
	return true, nil
}
