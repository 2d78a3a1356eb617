// Package schedule implements recurring crawl runs on a cron
// expression.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/greg-randall/job-finder/cmd/common"
	"github.com/greg-randall/job-finder/cmd/run"
)

// Scheduler triggers full crawl runs on a cron schedule until the
// process is interrupted. Runs never overlap: if a run is still in
// flight when the next tick fires, the tick is skipped.
type Scheduler struct {
	deps common.CommandDeps
	spec string

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for the given cron expression.
func NewScheduler(deps common.CommandDeps, spec string) *Scheduler {
	return &Scheduler{deps: deps, spec: spec}
}

// Start blocks running crawls on the schedule until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(s.spec, func() { s.tick(ctx) })
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.spec, err)
	}

	s.deps.Logger.Info("scheduler started", "cron", s.spec)
	c.Start()

	<-ctx.Done()
	s.deps.Logger.Info("scheduler stopping")

	// Let an in-flight run finish before returning.
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.deps.Logger.Warn("previous run still in progress, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	runner := run.NewRunner(s.deps, "", "", true)
	summary, err := runner.Start(ctx)
	if err != nil {
		s.deps.Logger.Error("scheduled run failed", "error", err)
		return
	}
	if !summary.Success() {
		s.deps.Logger.Warn("scheduled run had failures",
			"sites_failed", summary.SitesFailed)
	}
}

// Command returns the schedule command.
func Command(buildDeps func() (common.CommandDeps, error)) *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run crawls on a recurring schedule",
		Long: `Schedule runs a full crawl of every enabled source on a cron
expression and keeps running until interrupted. Overlapping runs are
skipped rather than queued.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if spec == "" {
				return errors.New("--cron is required")
			}

			deps, err := buildDeps()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return NewScheduler(deps, spec).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", `cron expression, e.g. "0 6 * * *"`)

	return cmd
}
