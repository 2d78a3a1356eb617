package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/internal/sources"
)

// Strategy is one pagination/extraction mechanics family. Concrete
// implementations are selected at construction time from the source's
// backend type, never via runtime type inspection.
type Strategy interface {
	// Source returns the source this strategy crawls.
	Source() *sources.Source
	// SetUp prepares the crawl: it navigates to the seed page and
	// performs any variant-specific preparation. A SetUp failure is a
	// hard stop for the whole crawl.
	SetUp(ctx context.Context) error
	// ExtractItemLinks returns the job links visible on the current
	// page. An empty result is a valid outcome, not an error.
	ExtractItemLinks(ctx context.Context) ([]string, error)
	// AdvanceToNextPage attempts pagination. False means no further
	// pages, which is a normal terminal condition.
	AdvanceToNextPage(ctx context.Context) (bool, error)
}

// emptyPageTerminator is implemented by strategies whose pagination
// has no structural end signal: an empty extraction on a freshly
// loaded page means past-the-end, so the driver neither raises the
// selector diagnostic nor keeps paginating.
type emptyPageTerminator interface {
	EmptyPageEndsCrawl() bool
}

// linkDeduper is implemented by strategies that can reach the same
// item via multiple paginated views and therefore collect links into
// a set.
type linkDeduper interface {
	DeduplicatesLinks() bool
}

// inlineDownloader is implemented by strategies that fold the
// download into extraction: items are fetched as they are revealed,
// so the generic collect-then-download contract is short-circuited.
type inlineDownloader interface {
	CrawlInline(ctx context.Context, session *Session) (DownloadStats, error)
}

// Deps carries the collaborators every strategy needs.
type Deps struct {
	// Navigator loads pages.
	Navigator browser.Navigator
	// Retry bounds navigation attempts.
	Retry browser.RetryConfig
	// Store is the download cache, used by inline-downloading
	// strategies.
	Store CacheStore
	// Logger receives crawl logging.
	Logger logger.Interface
	// Diagnostics receives selector failure context.
	Diagnostics Diagnostics
}

// NewStrategy creates the strategy variant for the source's backend.
// Settings are decoded here so that an invalid settings map surfaces
// as a configuration error before any navigation happens.
func NewStrategy(src *sources.Source, deps Deps) (Strategy, error) {
	settings, err := src.DecodeSettings()
	if err != nil {
		return nil, err
	}

	if deps.Logger == nil {
		deps.Logger = logger.NewNoOp()
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = NoopDiagnostics{}
	}

	b := base{
		src:      src,
		settings: settings,
		deps:     deps,
		log:      deps.Logger.WithSource(src.Name),
	}

	switch src.Backend {
	case sources.BackendStandard:
		return &standardStrategy{base: b}, nil
	case sources.BackendIframe:
		return &iframeStrategy{base: b}, nil
	case sources.BackendURLPagination:
		return &urlPaginationStrategy{base: b, pageNum: settings.StartPage}, nil
	case sources.BackendCustomClick:
		return &clickThroughStrategy{base: b}, nil
	case sources.BackendCustomNavigation:
		return &customNavigationStrategy{base: b}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q for source %s",
			src.Backend, src.Name)
	}
}

// base carries the state shared by every strategy variant.
type base struct {
	src      *sources.Source
	settings *sources.Settings
	deps     Deps
	log      logger.Interface
	page     browser.Page
}

// Source returns the source this strategy crawls.
func (b *base) Source() *sources.Source {
	return b.src
}

// navigateStart loads the seed page and, when an item selector is
// configured, waits for it to appear so slow-rendering boards are not
// misread as empty.
func (b *base) navigateStart(ctx context.Context) error {
	page, err := browser.Navigate(ctx, b.deps.Navigator, b.src.URL, b.deps.Retry, b.log)
	if err != nil {
		return err
	}
	b.page = page

	if selector := b.src.Selector(sources.SelectorJobLink); selector != "" {
		if err := page.WaitForSelector(ctx, selector, waitForSelectorTimeout); err != nil {
			b.log.Debug("item selector did not appear after navigation",
				"selector", selector,
				"error", err)
		}
	}
	return nil
}

// settle sleeps for d unless the context ends first.
func (b *base) settle(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// extractHrefs resolves the href of every element matching selector
// on the given query context.
func (b *base) extractHrefs(ctx context.Context, page browser.Page, selector string) ([]string, error) {
	elements, err := page.SelectAll(ctx, selector)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(elements))
	for _, el := range elements {
		href, err := el.Attribute(ctx, "href")
		if err != nil || href == "" {
			continue
		}
		links = append(links, href)
	}
	return links, nil
}
