package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/greg-randall/job-finder/internal/logger"
)

// RetryConfig bounds the navigation retry loop. Every loop has a hard
// upper bound; nothing here retries indefinitely.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the
	// first one.
	MaxAttempts int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// DefaultRetryConfig returns the default navigation retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       5 * time.Second,
	}
}

// Navigate loads url through nav, retrying up to cfg.MaxAttempts times
// with a fixed delay between attempts. Exhausting the attempts returns
// a NavigationError wrapping the final failure.
func Navigate(
	ctx context.Context,
	nav Navigator,
	url string,
	cfg RetryConfig,
	log logger.Interface,
) (Page, error) {
	if url == "" {
		return nil, fmt.Errorf("navigate: empty URL")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debug("navigation attempt",
			"url", url,
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts)

		page, err := nav.Navigate(ctx, url)
		if err == nil {
			return page, nil
		}
		lastErr = err

		log.Warn("navigation failed",
			"url", url,
			"attempt", attempt,
			"error", err)

		if attempt < cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
	}

	return nil, &NavigationError{
		URL:      url,
		Attempts: cfg.MaxAttempts,
		Err:      lastErr,
	}
}
