package crawl

import "time"

// Timing constants shared by the strategy variants.
const (
	// waitForSelectorTimeout bounds the wait for item links to render
	// after initial navigation.
	waitForSelectorTimeout = 10 * time.Second
	// pageSettleWait lets a page settle after a pagination click.
	pageSettleWait = 2 * time.Second
	// iframeSettleWait lets iframe content load before extraction.
	iframeSettleWait = 5 * time.Second
	// maxBackoffWait caps the exponential backoff between failing
	// item downloads.
	maxBackoffWait = 5 * time.Minute
)

// secondsToDuration converts a settings value in whole seconds.
func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
