package cache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greg-randall/job-finder/internal/cache"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/testutils"
)

func TestKey(t *testing.T) {
	t.Parallel()

	key := cache.Key("acme", "https://acme.example/jobs/1")

	// Same input produces the same key.
	assert.Equal(t, key, cache.Key("acme", "https://acme.example/jobs/1"))

	// Different URLs and different sources produce different keys.
	assert.NotEqual(t, key, cache.Key("acme", "https://acme.example/jobs/2"))
	assert.NotEqual(t, key, cache.Key("other", "https://acme.example/jobs/1"))

	assert.Contains(t, key, "acme_")
	assert.Contains(t, key, ".txt")
}

func TestNewStoreEmptyDir(t *testing.T) {
	t.Parallel()

	_, err := cache.NewStore("", &testutils.FakeExtractor{}, logger.NewNoOp())
	require.Error(t, err)
}

func TestStoreEnsureDownloaded(t *testing.T) {
	t.Parallel()

	const url = "https://acme.example/jobs/1"
	extractor := &testutils.FakeExtractor{
		Content: map[string]string{url: "Software Engineer\nRemote"},
	}
	store, err := cache.NewStore(t.TempDir(), extractor, logger.NewNoOp())
	require.NoError(t, err)

	outcome, err := store.EnsureDownloaded(context.Background(), "acme", url)
	require.NoError(t, err)
	assert.Equal(t, cache.OutcomeDownloaded, outcome)
	assert.True(t, store.Contains("acme", url))

	data, err := os.ReadFile(store.Path("acme", url))
	require.NoError(t, err)
	assert.Equal(t, url+"\n\nSoftware Engineer\nRemote", string(data))

	// A second call is served from the cache without fetching again.
	outcome, err = store.EnsureDownloaded(context.Background(), "acme", url)
	require.NoError(t, err)
	assert.Equal(t, cache.OutcomeCached, outcome)
	assert.Equal(t, 1, extractor.CallCount(url))
}

func TestStoreEnsureDownloadedExtractFailure(t *testing.T) {
	t.Parallel()

	const url = "https://acme.example/jobs/broken"
	extractor := &testutils.FakeExtractor{
		Errs: map[string]error{url: errors.New("connection refused")},
	}
	store, err := cache.NewStore(t.TempDir(), extractor, logger.NewNoOp())
	require.NoError(t, err)

	outcome, err := store.EnsureDownloaded(context.Background(), "acme", url)
	require.Error(t, err)
	assert.Equal(t, cache.OutcomeFailed, outcome)

	// A failed download leaves no cache entry behind, so the item is
	// retried on the next run.
	assert.False(t, store.Contains("acme", url))
}

func TestStorePut(t *testing.T) {
	t.Parallel()

	const url = "https://acme.example/#job-0"
	store, err := cache.NewStore(t.TempDir(), &testutils.FakeExtractor{}, logger.NewNoOp())
	require.NoError(t, err)

	outcome, err := store.Put("acme", url, "first")
	require.NoError(t, err)
	assert.Equal(t, cache.OutcomeDownloaded, outcome)

	// An existing entry is never overwritten.
	outcome, err = store.Put("acme", url, "second")
	require.NoError(t, err)
	assert.Equal(t, cache.OutcomeCached, outcome)

	data, err := os.ReadFile(store.Path("acme", url))
	require.NoError(t, err)
	assert.Equal(t, url+"\n\nfirst", string(data))
}

func TestStoreEmptyURL(t *testing.T) {
	t.Parallel()

	store, err := cache.NewStore(t.TempDir(), &testutils.FakeExtractor{}, logger.NewNoOp())
	require.NoError(t, err)

	outcome, err := store.EnsureDownloaded(context.Background(), "acme", "")
	assert.ErrorIs(t, err, cache.ErrEmptyURL)
	assert.Equal(t, cache.OutcomeFailed, outcome)
	assert.False(t, store.Contains("acme", ""))
}

func TestStoreWriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := cache.NewStore(dir, &testutils.FakeExtractor{}, logger.NewNoOp())
	require.NoError(t, err)

	_, err = store.Put("acme", "https://acme.example/jobs/1", "text")
	require.NoError(t, err)

	entries, err := filepath.Glob(filepath.Join(dir, ".cache-*"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
