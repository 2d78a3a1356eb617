package testutils

import (
	"context"
	"fmt"
	"sync"
)

// FakeExtractor serves scripted page text by URL and records every
// fetch so tests can assert the cache short-circuited network work.
type FakeExtractor struct {
	mu sync.Mutex

	// Content maps URLs to the text returned for them. URLs not in the
	// map return a placeholder rather than failing.
	Content map[string]string
	// Errs maps URLs to an extraction error.
	Errs map[string]error

	// Calls records every Extract call in order.
	Calls []string
}

// Extract implements cache.Extractor.
func (e *FakeExtractor) Extract(_ context.Context, url string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Calls = append(e.Calls, url)

	if err, ok := e.Errs[url]; ok {
		return "", err
	}
	if text, ok := e.Content[url]; ok {
		return text, nil
	}
	return fmt.Sprintf("posting text for %s", url), nil
}

// CallCount returns how many times url was extracted.
func (e *FakeExtractor) CallCount(url string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, call := range e.Calls {
		if call == url {
			count++
		}
	}
	return count
}
