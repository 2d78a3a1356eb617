package testutils

import (
	"context"
	"sync"

	"github.com/greg-randall/job-finder/internal/cache"
)

// FakeStore is an in-memory stand-in for the download cache.
type FakeStore struct {
	mu sync.Mutex

	// Items holds stored content keyed by source name and URL.
	Items map[string]string
	// FailURLs maps URLs to a download error.
	FailURLs map[string]error

	// EnsureCalls records every EnsureDownloaded call in order.
	EnsureCalls []string
}

// NewFakeStore creates an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		Items:    make(map[string]string),
		FailURLs: make(map[string]error),
	}
}

func (s *FakeStore) key(sourceName, url string) string {
	return sourceName + "|" + url
}

// Seed marks a URL as already cached.
func (s *FakeStore) Seed(sourceName, url, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Items[s.key(sourceName, url)] = content
}

// Contains implements crawl.CacheStore.
func (s *FakeStore) Contains(sourceName, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Items[s.key(sourceName, url)]
	return ok
}

// EnsureDownloaded implements crawl.CacheStore.
func (s *FakeStore) EnsureDownloaded(_ context.Context, sourceName, url string) (cache.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.EnsureCalls = append(s.EnsureCalls, url)

	if _, ok := s.Items[s.key(sourceName, url)]; ok {
		return cache.OutcomeCached, nil
	}
	if err, ok := s.FailURLs[url]; ok {
		return cache.OutcomeFailed, err
	}
	s.Items[s.key(sourceName, url)] = "content for " + url
	return cache.OutcomeDownloaded, nil
}

// Put implements crawl.CacheStore.
func (s *FakeStore) Put(sourceName, url, content string) (cache.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Items[s.key(sourceName, url)]; ok {
		return cache.OutcomeCached, nil
	}
	if err, ok := s.FailURLs[url]; ok {
		return cache.OutcomeFailed, err
	}
	s.Items[s.key(sourceName, url)] = content
	return cache.OutcomeDownloaded, nil
}
