package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/greg-randall/job-finder/internal/crawl"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/internal/throttle"
	"github.com/greg-randall/job-finder/testutils"
)

func newDownloader(store *testutils.FakeStore, maxConsecutive int) *crawl.Downloader {
	return crawl.NewDownloader(
		store,
		throttle.New(time.Millisecond, time.Millisecond),
		maxConsecutive,
		logger.NewNoOp(),
		false,
	)
}

func TestDownloadAll(t *testing.T) {
	t.Parallel()

	store := testutils.NewFakeStore()
	store.Seed("acme", "https://acme.example/jobs/2", "cached")

	links := []string{
		"https://acme.example/jobs/1",
		"https://acme.example/jobs/2",
		"https://acme.example/jobs/1", // duplicate within the run
		"",                            // invalid
	}

	stats := newDownloader(store, 8).DownloadAll(
		context.Background(), "acme", links, 0)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.SkippedSession)
	assert.Equal(t, 1, stats.SkippedExisting)
	assert.Equal(t, 0, stats.Errors)

	// The cached link was never fetched.
	assert.NotContains(t, store.EnsureCalls, "https://acme.example/jobs/2")
}

func TestDownloadAllBreakerTrips(t *testing.T) {
	t.Parallel()

	store := testutils.NewFakeStore()
	links := []string{
		"https://down.example/jobs/1",
		"https://down.example/jobs/2",
		"https://down.example/jobs/3",
		"https://down.example/jobs/4",
	}
	for _, link := range links {
		store.FailURLs[link] = errors.New("503 service unavailable")
	}

	stats := newDownloader(store, 2).DownloadAll(
		context.Background(), "acme", links, 0)

	// The second consecutive failure trips the breaker; the remaining
	// links are never attempted.
	assert.Equal(t, 2, stats.Errors)
	assert.Equal(t, 0, stats.Processed)
	assert.Len(t, store.EnsureCalls, 2)
}

func TestDownloadAllSuccessResetsBreaker(t *testing.T) {
	t.Parallel()

	store := testutils.NewFakeStore()
	links := []string{
		"https://acme.example/jobs/1",
		"https://acme.example/jobs/2",
		"https://down.example/jobs/3",
		"https://down.example/jobs/4",
	}
	store.FailURLs["https://down.example/jobs/3"] = errors.New("boom")
	store.FailURLs["https://down.example/jobs/4"] = errors.New("boom")

	// Two failures never reach a ceiling of three, whatever order the
	// shuffle yields.
	stats := newDownloader(store, 3).DownloadAll(
		context.Background(), "acme", links, 0)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, stats.Errors)
	assert.Len(t, store.EnsureCalls, 4)
}

func TestDownloadAllHonorsContext(t *testing.T) {
	t.Parallel()

	store := testutils.NewFakeStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := newDownloader(store, 8).DownloadAll(
		ctx, "acme", []string{"https://acme.example/jobs/1"}, 0)

	assert.Equal(t, 0, stats.Processed)
	assert.Empty(t, store.EnsureCalls)
}

func TestDownloadAllEmpty(t *testing.T) {
	t.Parallel()

	stats := newDownloader(testutils.NewFakeStore(), 8).DownloadAll(
		context.Background(), "acme", nil, 0)

	assert.Equal(t, crawl.DownloadStats{}, stats)
}
