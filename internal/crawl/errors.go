// Package crawl implements the crawl orchestration engine: the
// strategy variants that paginate and extract job links, the driver
// loop with its early-stop heuristic, and the download phase with its
// consecutive-error circuit breaker.
package crawl

import (
	"errors"
	"fmt"
)

// ErrBreakerTripped indicates the consecutive-error ceiling was
// reached and the remaining downloads for the source were aborted.
var ErrBreakerTripped = errors.New("consecutive error ceiling reached")

// FailureReason classifies why a crawl failed.
type FailureReason string

const (
	// FailureNone means the crawl succeeded.
	FailureNone FailureReason = ""
	// FailureDisabled means the source is disabled.
	FailureDisabled FailureReason = "disabled"
	// FailureConfiguration means a required selector or setting is
	// missing or invalid.
	FailureConfiguration FailureReason = "configuration_error"
	// FailureNavigation means a page failed to load after retries.
	FailureNavigation FailureReason = "navigation_failed"
	// FailureSelector means the item selector never matched on the
	// first page.
	FailureSelector FailureReason = "selector_failed"
	// FailureTimeout means the source exceeded its wall-clock budget.
	FailureTimeout FailureReason = "timeout"
	// FailureCancelled means the run was cancelled while the source
	// was still in flight.
	FailureCancelled FailureReason = "cancelled"
	// FailureInternal covers unexpected errors.
	FailureInternal FailureReason = "internal_error"
)

// ConfigurationError indicates a source's configuration is missing a
// selector or setting its backend requires. It is fatal and never
// retried.
type ConfigurationError struct {
	// Source is the source name.
	Source string
	// Key is the missing selector or setting key.
	Key string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("source %s: missing required configuration %q", e.Source, e.Key)
}

// SelectorError indicates an expected element never appeared.
type SelectorError struct {
	// Source is the source name.
	Source string
	// Selector is the query that matched nothing.
	Selector string
	// URL is the page where the query ran.
	URL string
	// PageNumber is the page of the crawl, starting at 1.
	PageNumber int
}

// Error implements the error interface.
func (e *SelectorError) Error() string {
	return fmt.Sprintf("source %s: selector %q matched nothing on page %d (%s)",
		e.Source, e.Selector, e.PageNumber, e.URL)
}

// DownloadError indicates a single item download failed. It is
// counted and feeds the consecutive-error breaker; it never aborts
// the source on its own.
type DownloadError struct {
	// URL is the item that failed.
	URL string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *DownloadError) Unwrap() error {
	return e.Err
}
