package crawl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greg-randall/job-finder/internal/crawl"
	"github.com/greg-randall/job-finder/internal/sources"
	"github.com/greg-randall/job-finder/testutils"
)

func clickSource() *sources.Source {
	return &sources.Source{
		Name:    "adpboard",
		URL:     seedURL,
		Backend: sources.BackendCustomClick,
		Enabled: true,
		Selectors: map[string]string{
			sources.SelectorJobButton: "button.job",
		},
		Settings: map[string]any{},
	}
}

func TestClickThroughStoresRevealedContent(t *testing.T) {
	t.Parallel()

	page := testutils.NewFakePage(testutils.PageState{
		URL: seedURL,
		Links: map[string][]string{
			"button.job": {"#0", "#1"},
		},
		Markup: "<html><body>Job detail text</body></html>",
	})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{seedURL: page},
	}
	store := testutils.NewFakeStore()

	crawler, strategy := newHarness(t, clickSource(), nav, store, nil)
	result := crawler.Run(context.Background(), strategy)

	require.True(t, result.Success)
	assert.Equal(t, 2, result.Stats.JobsFound)
	assert.Equal(t, 2, result.Download.Total)
	assert.Equal(t, 2, result.Download.Processed)
	assert.Equal(t, 0, result.Download.Errors)

	// Clicks that do not change the address get per-index pseudo-URLs.
	assert.True(t, store.Contains("adpboard", seedURL+"#job-0"))
	assert.True(t, store.Contains("adpboard", seedURL+"#job-1"))
}

func TestClickThroughSkipsAlreadyStored(t *testing.T) {
	t.Parallel()

	page := testutils.NewFakePage(testutils.PageState{
		URL: seedURL,
		Links: map[string][]string{
			"button.job": {"#0"},
		},
		Markup: "<html><body>Job detail text</body></html>",
	})
	nav := &testutils.FakeNavigator{
		Pages: map[string]*testutils.FakePage{seedURL: page},
	}
	store := testutils.NewFakeStore()
	store.Seed("adpboard", seedURL+"#job-0", "already stored")

	crawler, strategy := newHarness(t, clickSource(), nav, store, nil)
	result := crawler.Run(context.Background(), strategy)

	require.True(t, result.Success)
	assert.Equal(t, 0, result.Download.Processed)
	assert.Equal(t, 1, result.Download.SkippedExisting)
}

func TestClickThroughMissingButtonSelector(t *testing.T) {
	t.Parallel()

	src := clickSource()
	delete(src.Selectors, sources.SelectorJobButton)

	crawler, strategy := newHarness(
		t, src, &testutils.FakeNavigator{}, testutils.NewFakeStore(), nil)
	result := crawler.Run(context.Background(), strategy)

	require.False(t, result.Success)
	assert.Equal(t, crawl.FailureConfiguration, result.Reason)
}
