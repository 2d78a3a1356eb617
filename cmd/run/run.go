// Package run implements the run command that crawls configured
// sources and writes a run summary.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greg-randall/job-finder/cmd/common"
	"github.com/greg-randall/job-finder/internal/scheduler"
	"github.com/greg-randall/job-finder/internal/sources"
)

// ErrRunFailed is returned when one or more sources did not complete,
// so the process exits non-zero.
var ErrRunFailed = errors.New("one or more sources failed")

// Runner executes a crawl run over a selection of sources.
type Runner struct {
	deps       common.CommandDeps
	group      string
	site       string
	noProgress bool
}

// NewRunner creates a runner for the given selection. group and site
// are mutually exclusive; both empty means all enabled sources.
func NewRunner(deps common.CommandDeps, group, site string, noProgress bool) *Runner {
	return &Runner{deps: deps, group: group, site: site, noProgress: noProgress}
}

// selectSources resolves the --group / --site selection against the
// catalog.
func (r *Runner) selectSources() ([]sources.Source, error) {
	if r.site != "" {
		src, err := r.deps.Catalog.SelectSource(r.site)
		if err != nil {
			return nil, err
		}
		return []sources.Source{*src}, nil
	}

	if r.group != "" {
		backend := sources.Backend(r.group)
		if !backend.Valid() {
			return nil, fmt.Errorf("unknown backend group %q (available: %v)",
				r.group, sources.AvailableBackends())
		}
		group := r.deps.Catalog.ByBackend(backend)
		if len(group) == 0 {
			return nil, fmt.Errorf("no enabled sources with backend %q", r.group)
		}
		return group, nil
	}

	enabled := r.deps.Catalog.Enabled()
	if len(enabled) == 0 {
		return nil, errors.New("no enabled sources configured")
	}
	return enabled, nil
}

// Start executes the run and writes the summary file.
func (r *Runner) Start(ctx context.Context) (*scheduler.Summary, error) {
	selection, err := r.selectSources()
	if err != nil {
		return nil, err
	}

	engine, err := common.BuildEngine(r.deps, !r.noProgress)
	if err != nil {
		return nil, err
	}

	summary := engine.Scheduler.Run(ctx, selection)

	summaryDir := r.deps.Config.GetPathsConfig().SummaryDir
	path, err := summary.WriteFile(summaryDir)
	if err != nil {
		r.deps.Logger.Error("failed to write run summary", "error", err)
	} else {
		r.deps.Logger.Info("run summary written", "path", path)
	}

	return summary, nil
}

// Command returns the run command.
func Command(buildDeps func() (common.CommandDeps, error)) *cobra.Command {
	var (
		group      string
		site       string
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl configured job sources",
		Long: `Crawl job sources from the catalog and download new postings
into the cache. With no flags every enabled source is crawled; --group
restricts the run to one backend type and --site to a single source.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if group != "" && site != "" {
				return errors.New("--group and --site are mutually exclusive")
			}

			deps, err := buildDeps()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := NewRunner(deps, group, site, noProgress)
			summary, err := runner.Start(ctx)
			if err != nil {
				return err
			}

			if !summary.Success() {
				return fmt.Errorf("%w: %d of %d sources",
					ErrRunFailed, summary.SitesFailed,
					summary.SitesFailed+summary.SitesProcessed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "crawl only sources with this backend type")
	cmd.Flags().StringVar(&site, "site", "", "crawl only the named source")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable download progress bars")

	return cmd
}
