package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/greg-randall/job-finder/internal/cache"
	"github.com/greg-randall/job-finder/internal/logger"
)

// CacheStore is the slice of the download cache the crawl engine
// depends on.
type CacheStore interface {
	// Contains reports whether the item is already cached, without
	// touching the network.
	Contains(sourceName, url string) bool
	// EnsureDownloaded fetches and stores the item unless present.
	EnsureDownloaded(ctx context.Context, sourceName, url string) (cache.Outcome, error)
	// Put stores already-extracted content unless present.
	Put(sourceName, url, content string) (cache.Outcome, error)
}

// ErrorContext describes a failure for the diagnostics collaborator.
type ErrorContext struct {
	// Source is the source name.
	Source string `json:"source"`
	// Kind classifies the failure (e.g. "SelectorError").
	Kind string `json:"kind"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// URL is the page where the failure happened.
	URL string `json:"url,omitempty"`
	// Selector is the query involved, when there was one.
	Selector string `json:"selector,omitempty"`
	// PageNumber is the crawl page, starting at 1.
	PageNumber int `json:"page_number,omitempty"`
}

// Diagnostics captures failure context for debugging. The artifact
// capture (screenshots, page dumps) lives outside this core.
type Diagnostics interface {
	CaptureError(ctx context.Context, errCtx ErrorContext)
}

// NoopDiagnostics discards all diagnostic context.
type NoopDiagnostics struct{}

// CaptureError implements Diagnostics.
func (NoopDiagnostics) CaptureError(ctx context.Context, errCtx ErrorContext) {}

// FileDiagnostics writes each captured failure as a JSON file under a
// directory, one file per failure, so a broken selector can be
// inspected after the run.
type FileDiagnostics struct {
	dir    string
	logger logger.Interface
}

// NewFileDiagnostics creates a diagnostics sink rooted at dir.
func NewFileDiagnostics(dir string, log logger.Interface) (*FileDiagnostics, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create diagnostics directory: %w", err)
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &FileDiagnostics{dir: dir, logger: log}, nil
}

// CaptureError implements Diagnostics. Write failures are logged and
// swallowed: diagnostics must never break a crawl.
func (d *FileDiagnostics) CaptureError(_ context.Context, errCtx ErrorContext) {
	record := struct {
		CapturedAt time.Time `json:"captured_at"`
		ErrorContext
	}{CapturedAt: time.Now(), ErrorContext: errCtx}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		d.logger.Warn("failed to encode diagnostic", "error", err)
		return
	}

	name := fmt.Sprintf("%s_%s.json",
		errCtx.Source, record.CapturedAt.Format("20060102_150405.000"))
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		d.logger.Warn("failed to write diagnostic",
			"source", errCtx.Source,
			"error", err)
	}
}
