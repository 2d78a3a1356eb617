package crawl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greg-randall/job-finder/internal/crawl"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/internal/sources"
	"github.com/greg-randall/job-finder/testutils"
)

func newStrategy(t *testing.T, src *sources.Source, nav *testutils.FakeNavigator) crawl.Strategy {
	t.Helper()

	strategy, err := crawl.NewStrategy(src, crawl.Deps{
		Navigator: nav,
		Retry:     browserRetry(),
		Store:     testutils.NewFakeStore(),
		Logger:    logger.NewNoOp(),
	})
	require.NoError(t, err)
	return strategy
}

func TestNewStrategyUnknownBackend(t *testing.T) {
	t.Parallel()

	src := standardSource(nil)
	src.Backend = sources.Backend("teleport")

	_, err := crawl.NewStrategy(src, crawl.Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestStandardAdvanceChecksDisabledFirst(t *testing.T) {
	t.Parallel()

	// Both the next button and its disabled form are present; the
	// disabled check wins and nothing is clicked.
	page := testutils.NewFakePage(testutils.PageState{
		URL: seedURL,
		Links: map[string][]string{
			"a.job": {"https://acme.example/jobs/1"},
		},
		Elements: map[string]*testutils.FakeElement{
			"button.next":           {},
			"button.next[disabled]": {},
		},
	})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{seedURL: page},
	}

	src := standardSource(nil)
	src.Selectors[sources.SelectorNextPage] = "button.next"
	src.Selectors[sources.SelectorNextPageDisabled] = "button.next[disabled]"
	strategy := newStrategy(t, src, nav)

	ctx := context.Background()
	require.NoError(t, strategy.SetUp(ctx))

	more, err := strategy.AdvanceToNextPage(ctx)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Empty(t, page.Clicked)
}

func TestStandardTerminalLatch(t *testing.T) {
	t.Parallel()

	page := testutils.NewFakePage(testutils.PageState{
		URL: seedURL,
		Elements: map[string]*testutils.FakeElement{
			"a.job":                 {Href: "https://acme.example/jobs/1"},
			"button.next[disabled]": {},
		},
	})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{seedURL: page},
	}

	src := standardSource(nil)
	src.Selectors[sources.SelectorNextPage] = "button.next"
	src.Selectors[sources.SelectorNextPageDisabled] = "button.next[disabled]"
	strategy := newStrategy(t, src, nav)

	ctx := context.Background()
	require.NoError(t, strategy.SetUp(ctx))

	more, err := strategy.AdvanceToNextPage(ctx)
	require.NoError(t, err)
	assert.False(t, more)

	// Once terminal, further calls answer false without touching the
	// page, even if the disabled marker has since disappeared.
	queries := len(page.SelectCalls)
	delete(page.States[0].Elements, "button.next[disabled]")
	page.States[0].Elements["button.next"] = &testutils.FakeElement{}

	more, err = strategy.AdvanceToNextPage(ctx)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Len(t, page.SelectCalls, queries)
	assert.Empty(t, page.Clicked)
}

func TestStandardAdvanceClicksNext(t *testing.T) {
	t.Parallel()

	page := &testutils.FakePage{States: []testutils.PageState{
		{
			URL:          seedURL,
			Links:        map[string][]string{"a.job": {"https://acme.example/jobs/1"}},
			Elements:     map[string]*testutils.FakeElement{"button.next": {}},
			NextSelector: "button.next",
		},
		{
			URL:   seedURL + "?page=2",
			Links: map[string][]string{"a.job": {"https://acme.example/jobs/2"}},
		},
	}}
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{seedURL: page},
	}

	src := standardSource(nil)
	src.Selectors[sources.SelectorNextPage] = "button.next"
	strategy := newStrategy(t, src, nav)

	require.NoError(t, strategy.SetUp(context.Background()))

	// The post-click settle honors cancellation, so an expired context
	// keeps the test fast without changing the outcome.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	more, err := strategy.AdvanceToNextPage(ctx)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, []string{"button.next"}, page.Clicked)

	links, err := strategy.ExtractItemLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://acme.example/jobs/2"}, links)
}

func TestURLPaginationRendersPattern(t *testing.T) {
	t.Parallel()

	pageOne := testutils.NewFakePage(testutils.PageState{
		URL: seedURL,
		Elements: map[string]*testutils.FakeElement{
			"table.jobs": {},
		},
		Links: map[string][]string{
			"table.jobs a": {"https://acme.example/jobs/1"},
		},
	})
	pageTwo := testutils.NewFakePage(testutils.PageState{
		URL: seedURL + "&page=2",
		Elements: map[string]*testutils.FakeElement{
			"table.jobs": {},
		},
		Links: map[string][]string{
			"table.jobs a": {"https://acme.example/jobs/2"},
		},
	})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{
			seedURL:             pageOne,
			seedURL + "&page=2": pageTwo,
		},
	}

	src := &sources.Source{
		Name:    "acme",
		URL:     seedURL,
		Backend: sources.BackendURLPagination,
		Enabled: true,
		Selectors: map[string]string{
			sources.SelectorJobTable: "table.jobs",
		},
		Settings: map[string]any{
			sources.SettingURLPattern: "{base_url}&page={page_num}",
		},
	}
	strategy := newStrategy(t, src, nav)

	ctx := context.Background()
	require.NoError(t, strategy.SetUp(ctx))

	links, err := strategy.ExtractItemLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://acme.example/jobs/1"}, links)

	more, err := strategy.AdvanceToNextPage(ctx)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 1, nav.VisitCount(seedURL+"&page=2"))

	links, err = strategy.ExtractItemLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://acme.example/jobs/2"}, links)
}

func TestURLPaginationMissingTableMeansEnd(t *testing.T) {
	t.Parallel()

	page := testutils.NewFakePage(testutils.PageState{URL: seedURL})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{seedURL: page},
	}

	src := &sources.Source{
		Name:    "acme",
		URL:     seedURL,
		Backend: sources.BackendURLPagination,
		Enabled: true,
		Selectors: map[string]string{
			sources.SelectorJobTable: "table.jobs",
		},
		Settings: map[string]any{},
	}
	strategy := newStrategy(t, src, nav)

	ctx := context.Background()
	require.NoError(t, strategy.SetUp(ctx))

	links, err := strategy.ExtractItemLinks(ctx)
	require.NoError(t, err)
	assert.Nil(t, links)
}

func TestURLPaginationEmptyFirstPageIsNormalEnd(t *testing.T) {
	t.Parallel()

	page := testutils.NewFakePage(testutils.PageState{URL: seedURL})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{seedURL: page},
	}
	diag := &spyDiagnostics{}

	src := &sources.Source{
		Name:    "acme",
		URL:     seedURL,
		Backend: sources.BackendURLPagination,
		Enabled: true,
		Selectors: map[string]string{
			sources.SelectorJobTable: "table.jobs",
		},
		Settings: map[string]any{},
	}
	crawler, strategy := newHarness(t, src, nav, testutils.NewFakeStore(), diag)

	result := crawler.Run(context.Background(), strategy)

	// URL pagination has no structural end signal, so an empty page is
	// termination rather than a selector failure.
	require.True(t, result.Success)
	assert.Equal(t, crawl.FailureNone, result.Reason)
	assert.Equal(t, 0, diag.count())
}

func TestCustomNavigationResolvesRelativeNext(t *testing.T) {
	t.Parallel()

	pageOne := testutils.NewFakePage(testutils.PageState{
		URL: seedURL,
		Links: map[string][]string{
			"a.posting": {"https://jobs.example/view/1"},
		},
		Elements: map[string]*testutils.FakeElement{
			"a.next": {Href: "/search?page=2"},
		},
	})
	pageTwo := testutils.NewFakePage(testutils.PageState{
		URL: "https://jobs.example/search?page=2",
		Links: map[string][]string{
			"a.posting": {"https://jobs.example/view/2"},
		},
	})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{
			seedURL:                              pageOne,
			"https://jobs.example/search?page=2": pageTwo,
		},
	}

	src := &sources.Source{
		Name:    "statewide",
		URL:     seedURL,
		Backend: sources.BackendCustomNavigation,
		Enabled: true,
		Selectors: map[string]string{
			sources.SelectorJobLink:  "a.posting",
			sources.SelectorNextPage: "a.next",
		},
		Settings: map[string]any{
			sources.SettingBaseURL: "https://jobs.example",
		},
	}
	strategy := newStrategy(t, src, nav)

	ctx := context.Background()
	require.NoError(t, strategy.SetUp(ctx))

	more, err := strategy.AdvanceToNextPage(ctx)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 1, nav.VisitCount("https://jobs.example/search?page=2"))

	links, err := strategy.ExtractItemLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://jobs.example/view/2"}, links)
}

func TestCustomNavigationDeduplicatesAcrossPages(t *testing.T) {
	t.Parallel()

	shared := "https://jobs.example/view/1"
	pageOne := testutils.NewFakePage(testutils.PageState{
		URL: seedURL,
		Links: map[string][]string{
			"a.posting": {shared, "https://jobs.example/view/2"},
		},
		Elements: map[string]*testutils.FakeElement{
			"a.next": {Href: "https://jobs.example/search?page=2"},
		},
	})
	pageTwo := testutils.NewFakePage(testutils.PageState{
		URL: "https://jobs.example/search?page=2",
		Links: map[string][]string{
			"a.posting": {shared, "https://jobs.example/view/3"},
		},
	})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{
			seedURL:                              pageOne,
			"https://jobs.example/search?page=2": pageTwo,
		},
	}

	src := &sources.Source{
		Name:    "statewide",
		URL:     seedURL,
		Backend: sources.BackendCustomNavigation,
		Enabled: true,
		Selectors: map[string]string{
			sources.SelectorJobLink:  "a.posting",
			sources.SelectorNextPage: "a.next",
		},
		Settings: map[string]any{
			sources.SettingMaxPages: 2,
		},
	}
	crawler, strategy := newHarness(t, src, nav, testutils.NewFakeStore(), nil)

	result := crawler.Run(context.Background(), strategy)

	require.True(t, result.Success)

	// The shared link is collected once.
	assert.Equal(t, 3, result.Stats.JobsFound)
	assert.Equal(t, 2, result.Stats.PagesScraped)
	assert.Equal(t, 3, result.Download.Processed)
}

func TestIframeSetUpRequiresFrame(t *testing.T) {
	t.Parallel()

	frame := testutils.NewFakePage(testutils.PageState{
		URL: "https://board.example/widget",
		Links: map[string][]string{
			"a.job": {"https://board.example/jobs/1"},
		},
	})
	outer := testutils.NewFakePage(testutils.PageState{
		URL:           seedURL,
		Frame:         frame,
		FrameSelector: "#jobsFrame",
	})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{seedURL: outer},
	}

	src := &sources.Source{
		Name:    "acme",
		URL:     seedURL,
		Backend: sources.BackendIframe,
		Enabled: true,
		Selectors: map[string]string{
			sources.SelectorJobLink: "a.job",
			sources.SelectorIframe:  "#jobsFrame",
		},
		Settings: map[string]any{},
	}
	strategy := newStrategy(t, src, nav)

	require.NoError(t, strategy.SetUp(context.Background()))

	// The settle before iframe extraction honors cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	links, err := strategy.ExtractItemLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://board.example/jobs/1"}, links)

	// A page without the iframe is a hard setup failure.
	bare := testutils.NewFakePage(testutils.PageState{URL: seedURL})
	nav.Pages[seedURL] = bare
	broken := newStrategy(t, src, nav)
	require.Error(t, broken.SetUp(context.Background()))
}

func TestIframeMissingSelectorIsConfigurationError(t *testing.T) {
	t.Parallel()

	src := &sources.Source{
		Name:      "acme",
		URL:       seedURL,
		Backend:   sources.BackendIframe,
		Enabled:   true,
		Selectors: map[string]string{sources.SelectorJobLink: "a.job"},
		Settings:  map[string]any{},
	}
	strategy := newStrategy(t, src, &testutils.FakeNavigator{})

	err := strategy.SetUp(context.Background())
	require.Error(t, err)

	var cfgErr *crawl.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, sources.SelectorIframe, cfgErr.Key)
}
