package browser

import "context"

// TextExtractor turns a fetched page into the plain text stored for a
// job posting: fetch through the fallback chain, then strip markup.
type TextExtractor struct {
	chain *Chain
}

// NewTextExtractor creates an extractor over the given fetch chain.
func NewTextExtractor(chain *Chain) *TextExtractor {
	return &TextExtractor{chain: chain}
}

// Extract fetches url and returns its cleaned visible text.
func (e *TextExtractor) Extract(ctx context.Context, url string) (string, error) {
	markup, err := e.chain.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return CleanText(markup)
}
