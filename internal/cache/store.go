// Package cache implements the content-addressed download cache. A
// cached item is a flat file whose name is derived from the source
// name and the item URL; the file's existence is the sole signal that
// the item was already downloaded.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/greg-randall/job-finder/internal/logger"
)

// ErrEmptyURL indicates a cache operation was attempted with no URL.
var ErrEmptyURL = errors.New("cache: empty URL")

// Outcome reports what EnsureDownloaded did for an item.
type Outcome int

const (
	// OutcomeFailed means the item could not be fetched or stored.
	OutcomeFailed Outcome = iota
	// OutcomeCached means the item was already present; no network
	// call was made.
	OutcomeCached
	// OutcomeDownloaded means the item was fetched and stored.
	OutcomeDownloaded
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCached:
		return "cached"
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Extractor fetches an item URL and returns its cleaned text content.
// The concrete implementation lives outside this core.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Key returns the cache file name for a source/URL pair. The key is a
// pure function of its inputs.
func Key(sourceName, url string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s_%s.txt", sourceName, hex.EncodeToString(hash[:]))
}

// Store is the content-addressed download cache. Entries are created
// once and never mutated or deleted by this core; retention is an
// external concern.
//
// The existence check and the write are not atomic across processes.
// Under the documented scheduling model (one worker per backend
// partition, sequential within a partition) a source is never crawled
// twice concurrently, so the at-most-once guarantee is best-effort
// per process rather than a cross-process lock.
type Store struct {
	dir       string
	extractor Extractor
	logger    logger.Interface
}

// NewStore creates a cache store rooted at dir, creating the
// directory when needed.
func NewStore(dir string, extractor Extractor, log logger.Interface) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Store{
		dir:       dir,
		extractor: extractor,
		logger:    log,
	}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the cache file path for a source/URL pair.
func (s *Store) Path(sourceName, url string) string {
	return filepath.Join(s.dir, Key(sourceName, url))
}

// Contains reports whether the item is already cached. It only checks
// file existence and never touches the network.
func (s *Store) Contains(sourceName, url string) bool {
	if url == "" {
		return false
	}
	_, err := os.Stat(s.Path(sourceName, url))
	return err == nil
}

// EnsureDownloaded guarantees the item is present in the cache. An
// already-present item returns OutcomeCached without any network
// call; otherwise the extractor fetches the content and the entry is
// written atomically.
func (s *Store) EnsureDownloaded(ctx context.Context, sourceName, url string) (Outcome, error) {
	if url == "" {
		return OutcomeFailed, ErrEmptyURL
	}

	path := s.Path(sourceName, url)
	if _, err := os.Stat(path); err == nil {
		s.logger.Debug("skipped (cached)", "url", url)
		return OutcomeCached, nil
	}

	content, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to extract %s: %w", url, err)
	}

	body := fmt.Sprintf("%s\n\n%s", url, content)
	if err := s.writeAtomic(path, []byte(body)); err != nil {
		return OutcomeFailed, err
	}

	s.logger.Debug("downloaded", "url", url, "path", path)
	return OutcomeDownloaded, nil
}

// Put stores already-extracted content for an item, used by crawls
// that fetch content inline instead of delegating to the extractor.
// An existing entry is left untouched.
func (s *Store) Put(sourceName, url, content string) (Outcome, error) {
	if url == "" {
		return OutcomeFailed, ErrEmptyURL
	}

	path := s.Path(sourceName, url)
	if _, err := os.Stat(path); err == nil {
		return OutcomeCached, nil
	}

	body := fmt.Sprintf("%s\n\n%s", url, content)
	if err := s.writeAtomic(path, []byte(body)); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeDownloaded, nil
}

// writeAtomic writes data to path via a temp file and rename, so a
// crash never leaves a partial cache entry behind.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache entry: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize cache entry: %w", err)
	}
	return nil
}
