// Package browser defines the contract between the crawl engine and
// the page-rendering layer. The engine never talks to a browser
// directly; it drives whatever implementation of Navigator it is
// given, so the rendering stack stays swappable and testable.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrElementNotFound indicates a selector matched nothing.
var ErrElementNotFound = errors.New("element not found")

// Navigator loads pages and hands back queryable handles. All calls
// may block on network I/O and honor context cancellation.
type Navigator interface {
	// Navigate loads the URL and returns a handle to the loaded page.
	Navigate(ctx context.Context, url string) (Page, error)
}

// Page is a handle to a loaded page supporting selector queries.
type Page interface {
	// URL returns the page's current URL.
	URL() string
	// SelectOne returns the first element matching the selector, or
	// (nil, nil) when nothing matches.
	SelectOne(ctx context.Context, selector string) (Element, error)
	// SelectAll returns every element matching the selector. An empty
	// result is not an error.
	SelectAll(ctx context.Context, selector string) ([]Element, error)
	// WaitForSelector blocks until the selector matches or the
	// timeout elapses, returning ErrElementNotFound on timeout.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// Frame returns a handle scoped to the nested document hosted by
	// the iframe matching the selector.
	Frame(ctx context.Context, selector string) (Page, error)
	// Content returns the page's current markup.
	Content(ctx context.Context) (string, error)
	// Evaluate runs a script in the page and returns its result.
	Evaluate(ctx context.Context, script string) (any, error)
}

// Element is a handle to one element on a page.
type Element interface {
	// Click clicks the element.
	Click(ctx context.Context) error
	// Attribute returns the named attribute, resolved against the
	// page URL for URL-valued attributes such as href.
	Attribute(ctx context.Context, name string) (string, error)
	// Text returns the element's visible text.
	Text(ctx context.Context) (string, error)
}

// NavigationError indicates a page failed to load after all attempts.
// It is fatal for the source being crawled.
type NavigationError struct {
	// URL is the address that failed to load.
	URL string
	// Attempts is how many attempts were made.
	Attempts int
	// Err is the error from the final attempt.
	Err error
}

// Error implements the error interface.
func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to navigate to %s after %d attempts: %v",
		e.URL, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *NavigationError) Unwrap() error {
	return e.Err
}
