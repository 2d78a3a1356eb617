// Package scheduler coordinates crawls across many sources. Sources
// are partitioned by backend type: partitions run concurrently with
// each other while sources inside a partition run strictly
// sequentially, so structurally similar origins are never hammered
// simultaneously.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/greg-randall/job-finder/internal/crawl"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/internal/sources"
)

// CrawlRunner executes one crawl. *crawl.Crawler satisfies this.
type CrawlRunner interface {
	Run(ctx context.Context, strategy crawl.Strategy) crawl.Result
}

// StrategyFactory builds the strategy for a source.
type StrategyFactory func(src *sources.Source) (crawl.Strategy, error)

// Scheduler runs a set of sources under the partitioned concurrency
// model with a per-source wall-clock timeout.
type Scheduler struct {
	runner        CrawlRunner
	factory       StrategyFactory
	sourceTimeout time.Duration
	logger        logger.Interface
}

// New creates a scheduler.
func New(
	runner CrawlRunner,
	factory StrategyFactory,
	sourceTimeout time.Duration,
	log logger.Interface,
) *Scheduler {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Scheduler{
		runner:        runner,
		factory:       factory,
		sourceTimeout: sourceTimeout,
		logger:        log,
	}
}

// Partition groups sources by backend type, preserving input order
// within each group.
func Partition(srcs []sources.Source) map[sources.Backend][]sources.Source {
	groups := make(map[sources.Backend][]sources.Source)
	for i := range srcs {
		groups[srcs[i].Backend] = append(groups[srcs[i].Backend], srcs[i])
	}
	return groups
}

// Run crawls every source and returns the aggregated run summary.
// One worker per backend partition runs concurrently; each worker
// processes its partition sequentially. Per-partition results are
// combined additively after each partition completes, so no live
// counter is shared across partitions.
func (s *Scheduler) Run(ctx context.Context, srcs []sources.Source) *Summary {
	summary := newSummary()
	groups := Partition(srcs)

	// Stable iteration order keeps logs and tests deterministic.
	backends := make([]sources.Backend, 0, len(groups))
	for backend := range groups {
		backends = append(backends, backend)
	}
	sort.Slice(backends, func(i, j int) bool {
		return backends[i] < backends[j]
	})

	s.logger.Info("starting run",
		"run_id", summary.RunID,
		"sources", len(srcs),
		"partitions", len(groups))

	partitionResults := make([][]crawl.Result, len(backends))
	var wg sync.WaitGroup
	for i, backend := range backends {
		wg.Add(1)
		go func(slot int, backend sources.Backend, group []sources.Source) {
			defer wg.Done()
			partitionResults[slot] = s.runPartition(ctx, backend, group)
		}(i, backend, groups[backend])
	}
	wg.Wait()

	for _, results := range partitionResults {
		for i := range results {
			summary.add(results[i])
		}
	}
	summary.finish()

	s.logger.Info("run complete",
		"run_id", summary.RunID,
		"duration", summary.Duration,
		"sites_processed", summary.SitesProcessed,
		"sites_failed", summary.SitesFailed,
		"jobs_found", summary.JobsFound,
		"jobs_downloaded", summary.JobsDownloaded)

	return summary
}

// runPartition crawls a partition's sources one after another. A
// failed or timed-out source never blocks the rest of its partition.
func (s *Scheduler) runPartition(
	ctx context.Context,
	backend sources.Backend,
	group []sources.Source,
) []crawl.Result {
	log := s.logger.With("partition", string(backend))
	log.Info("partition started", "sources", len(group))

	results := make([]crawl.Result, 0, len(group))
	for i := range group {
		if ctx.Err() != nil {
			log.Warn("run cancelled, abandoning partition")
			break
		}
		results = append(results, s.runSource(ctx, &group[i], log))
	}

	log.Info("partition complete", "results", len(results))
	return results
}

// runSource crawls one source under the wall-clock budget.
func (s *Scheduler) runSource(
	ctx context.Context,
	src *sources.Source,
	log logger.Interface,
) crawl.Result {
	strategy, err := s.factory(src)
	if err != nil {
		log.Error("failed to build strategy",
			"source", src.Name,
			"error", err)
		return crawl.Result{
			Source: src.Name,
			Reason: crawl.FailureConfiguration,
			Err:    err,
		}
	}

	crawlCtx := ctx
	var cancel context.CancelFunc
	if s.sourceTimeout > 0 {
		crawlCtx, cancel = context.WithTimeout(ctx, s.sourceTimeout)
		defer cancel()
	}

	start := time.Now()
	result := s.runner.Run(crawlCtx, strategy)

	if !result.Success && crawlCtx.Err() == context.DeadlineExceeded {
		result.Reason = crawl.FailureTimeout
	}

	log.Info("source finished",
		"source", src.Name,
		"success", result.Success,
		"reason", string(result.Reason),
		"duration", time.Since(start))
	return result
}
