package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/greg-randall/job-finder/internal/logger"
)

// ErrAllFetchersFailed indicates every strategy in a fetch chain
// failed for a URL.
var ErrAllFetchersFailed = errors.New("all fetch strategies failed")

// FetchResult is the uniform outcome of one fetch attempt.
type FetchResult struct {
	// OK reports whether the fetch succeeded.
	OK bool
	// Content is the fetched markup when OK is true.
	Content string
	// Err is the failure when OK is false.
	Err error
}

// FetchStrategy is one mechanism for fetching a URL's content. The
// fallback order is expressed as a slice of these, so the chain is
// data rather than nested error handling.
type FetchStrategy struct {
	// Name identifies the strategy in logs.
	Name string
	// Fetch attempts to retrieve the URL's content.
	Fetch func(ctx context.Context, url string) FetchResult
}

// Chain tries an ordered list of fetch strategies until one succeeds.
type Chain struct {
	strategies []FetchStrategy
	logger     logger.Interface
}

// NewChain creates a fetch chain over the given strategies.
func NewChain(log logger.Interface, strategies ...FetchStrategy) *Chain {
	return &Chain{
		strategies: strategies,
		logger:     log,
	}
}

// Fetch returns the content from the first strategy that succeeds. It
// returns ErrAllFetchersFailed wrapping the last failure when every
// strategy fails.
func (c *Chain) Fetch(ctx context.Context, url string) (string, error) {
	if len(c.strategies) == 0 {
		return "", errors.New("fetch chain has no strategies")
	}

	var lastErr error
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		result := strategy.Fetch(ctx, url)
		if result.OK {
			c.logger.Debug("fetched content",
				"url", url,
				"strategy", strategy.Name)
			return result.Content, nil
		}

		lastErr = result.Err
		c.logger.Debug("fetch strategy failed",
			"url", url,
			"strategy", strategy.Name,
			"error", result.Err)
	}

	return "", fmt.Errorf("%w for %s: %w", ErrAllFetchersFailed, url, lastErr)
}

// NavigatorFetch adapts a Navigator into a FetchStrategy that loads
// the page and returns its rendered markup.
func NavigatorFetch(nav Navigator, cfg RetryConfig, log logger.Interface) FetchStrategy {
	return FetchStrategy{
		Name: "navigator",
		Fetch: func(ctx context.Context, url string) FetchResult {
			page, err := Navigate(ctx, nav, url, cfg, log)
			if err != nil {
				return FetchResult{Err: err}
			}
			content, err := page.Content(ctx)
			if err != nil {
				return FetchResult{Err: err}
			}
			return FetchResult{OK: true, Content: content}
		},
	}
}
