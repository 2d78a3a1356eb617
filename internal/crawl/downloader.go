package crawl

import (
	"context"
	"math/rand"
	"net/url"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/greg-randall/job-finder/internal/cache"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/internal/throttle"
)

// Downloader runs the download phase of a crawl: every collected link
// is ensured present in the cache, under a consecutive-error circuit
// breaker and the per-origin adaptive delay.
type Downloader struct {
	store          CacheStore
	delay          *throttle.Delay
	maxConsecutive int
	logger         logger.Interface
	showProgress   bool
}

// NewDownloader creates a downloader. maxConsecutive is the breaker
// ceiling: that many back-to-back item failures abort the remaining
// downloads for the source.
func NewDownloader(
	store CacheStore,
	delay *throttle.Delay,
	maxConsecutive int,
	log logger.Interface,
	showProgress bool,
) *Downloader {
	if delay == nil {
		delay = throttle.New(0, 0)
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Downloader{
		store:          store,
		delay:          delay,
		maxConsecutive: maxConsecutive,
		logger:         log,
		showProgress:   showProgress,
	}
}

// DownloadAll downloads every link for the source. Link order is
// shuffled so repeated runs do not hammer a board's listings in the
// same sequence. A run-scoped set short-circuits duplicates before
// the cache is consulted; the cache existence check then skips
// anything downloaded in an earlier run.
func (d *Downloader) DownloadAll(
	ctx context.Context,
	sourceName string,
	links []string,
	sleepBetween time.Duration,
) DownloadStats {
	valid := make([]string, 0, len(links))
	for _, link := range links {
		if link != "" {
			valid = append(valid, link)
		}
	}
	if dropped := len(links) - len(valid); dropped > 0 {
		d.logger.Warn("filtered out invalid links",
			"source", sourceName,
			"count", dropped)
	}

	rand.Shuffle(len(valid), func(i, j int) {
		valid[i], valid[j] = valid[j], valid[i]
	})

	stats := DownloadStats{Total: len(valid)}
	seen := make(map[string]struct{}, len(valid))
	consecutive := 0
	bar := d.newProgressBar(sourceName, len(valid))

	for _, link := range valid {
		if ctx.Err() != nil {
			break
		}

		if _, dup := seen[link]; dup {
			stats.SkippedSession++
			d.advance(bar)
			continue
		}
		seen[link] = struct{}{}

		if d.store.Contains(sourceName, link) {
			stats.SkippedExisting++
			d.logger.Debug("skipped (cached)", "url", link)
			d.advance(bar)
			continue
		}

		origin := originOf(link)
		if err := d.delay.Wait(ctx, origin); err != nil {
			break
		}

		outcome, err := d.store.EnsureDownloaded(ctx, sourceName, link)
		d.delay.Record(origin, err)

		switch outcome {
		case cache.OutcomeDownloaded:
			stats.Processed++
			consecutive = 0
			d.logger.Debug("downloaded",
				"url", link,
				"processed", stats.Processed,
				"total", stats.Total)
			d.sleep(ctx, sleepBetween)

		case cache.OutcomeCached:
			stats.SkippedExisting++
			consecutive = 0

		case cache.OutcomeFailed:
			stats.Errors++
			consecutive++
			dlErr := &DownloadError{URL: link, Err: err}
			d.logger.Error("item download failed",
				"error", dlErr,
				"consecutive_errors", consecutive)

			if consecutive >= d.maxConsecutive {
				d.logger.Error("aborting remaining downloads",
					"source", sourceName,
					"consecutive_errors", consecutive,
					"reason", ErrBreakerTripped)
				d.advance(bar)
				return stats
			}
			d.sleep(ctx, backoffWait(consecutive))
		}

		d.advance(bar)
	}

	d.logger.Info("download phase complete",
		"source", sourceName,
		"processed", stats.Processed,
		"skipped", stats.TotalSkipped(),
		"errors", stats.Errors)
	return stats
}

// backoffWait returns 2^consecutive seconds, capped.
func backoffWait(consecutive int) time.Duration {
	wait := time.Second
	for i := 0; i < consecutive && wait < maxBackoffWait; i++ {
		wait *= 2
	}
	if wait > maxBackoffWait {
		wait = maxBackoffWait
	}
	return wait
}

// originOf returns the host of a URL, or the URL itself when it does
// not parse.
func originOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	return u.Host
}

// sleep waits for d unless the context ends first.
func (d *Downloader) sleep(ctx context.Context, wait time.Duration) {
	if wait <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

// newProgressBar builds the download progress bar, invisible when
// progress display is off.
func (d *Downloader) newProgressBar(sourceName string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Downloading jobs for "+sourceName),
		progressbar.OptionSetVisibility(d.showProgress),
		progressbar.OptionShowCount(),
	)
}

// advance bumps the progress bar, ignoring render errors.
func (d *Downloader) advance(bar *progressbar.ProgressBar) {
	_ = bar.Add(1)
}
