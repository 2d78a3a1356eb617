package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Static fetcher defaults.
const (
	// DefaultStaticTimeout bounds one static HTTP fetch.
	DefaultStaticTimeout = 30 * time.Second
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

// HTTPStatusError indicates a non-2xx response from a static fetch.
type HTTPStatusError struct {
	// URL is the requested address.
	URL string
	// StatusCode is the response status.
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

// StaticFetcher retrieves pages with a plain HTTP client. It cannot
// execute scripts, so it serves as the degraded fallback behind a
// rendering Navigator.
type StaticFetcher struct {
	client    *http.Client
	userAgent string
}

// NewStaticFetcher creates a static fetcher. A nil client gets a
// default with a bounded timeout.
func NewStaticFetcher(client *http.Client, userAgent string) *StaticFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultStaticTimeout}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &StaticFetcher{client: client, userAgent: userAgent}
}

// Fetch retrieves the raw markup at url.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed for %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse response from %s: %w", url, err)
	}

	html, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize document from %s: %w", url, err)
	}
	return html, nil
}

// StaticFetch wraps the fetcher as a FetchStrategy for use in a chain.
func (f *StaticFetcher) StaticFetch() FetchStrategy {
	return FetchStrategy{
		Name: "static-http",
		Fetch: func(ctx context.Context, url string) FetchResult {
			content, err := f.Fetch(ctx, url)
			if err != nil {
				return FetchResult{Err: err}
			}
			return FetchResult{OK: true, Content: content}
		},
	}
}

// CleanText reduces markup to readable text: scripts, styles, and
// markup are dropped, block boundaries become newlines.
func CleanText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
	})
	text := b.String()
	if text == "" {
		text = doc.Text()
	}

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n"), nil
}
