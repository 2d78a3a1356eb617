package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/greg-randall/job-finder/internal/crawl"
)

// Failure records why one source did not complete.
type Failure struct {
	Source  string `json:"source"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// Summary aggregates an entire run: every source result folded into
// additive counters, plus enough identity to correlate with logs.
type Summary struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`

	SitesProcessed int `json:"sites_processed"`
	SitesFailed    int `json:"sites_failed"`

	JobsFound      int `json:"jobs_found"`
	JobsDownloaded int `json:"jobs_downloaded"`
	JobsSkipped    int `json:"jobs_skipped"`
	Errors         int `json:"errors"`
	Warnings       int `json:"warnings"`

	Failures []Failure      `json:"failures,omitempty"`
	Results  []crawl.Result `json:"results"`
}

func newSummary() *Summary {
	return &Summary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// add folds one source result into the counters.
func (s *Summary) add(res crawl.Result) {
	s.Results = append(s.Results, res)

	if res.Success {
		s.SitesProcessed++
	} else {
		s.SitesFailed++
		failure := Failure{
			Source: res.Source,
			Reason: string(res.Reason),
		}
		if res.Err != nil {
			failure.Message = res.Err.Error()
		}
		s.Failures = append(s.Failures, failure)
	}

	s.JobsFound += res.Stats.JobsFound
	s.JobsDownloaded += res.Download.Processed
	s.JobsSkipped += res.Download.TotalSkipped()
	s.Errors += res.Stats.Errors + res.Download.Errors
	if res.Stats.EarlyStopped {
		s.Warnings++
	}
}

func (s *Summary) finish() {
	s.FinishedAt = time.Now()
	s.Duration = s.FinishedAt.Sub(s.StartedAt)
}

// Success reports whether every source completed.
func (s *Summary) Success() bool {
	return s.SitesFailed == 0
}

// WriteFile persists the summary as JSON under dir and returns the
// path written.
func (s *Summary) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	name := fmt.Sprintf("run_%s_%s.json",
		s.StartedAt.Format("20060102_150405"), s.RunID)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}
