package browser_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/testutils"
)

const listingHTML = `<!DOCTYPE html>
<html>
<head><title>Careers</title><style>.x{color:red}</style></head>
<body>
  <script>console.log("tracking");</script>
  <ul>
    <li><a class="job" href="/jobs/1">Engineer</a></li>
    <li><a class="job" href="/jobs/2">Analyst</a></li>
  </ul>
  <button class="next">Next</button>
</body>
</html>`

func TestNavigateRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	page := testutils.NewFakePage(testutils.PageState{URL: "https://acme.example"})
	nav := &testutils.FakeNavigator{
		Pages:             map[string]*testutils.FakePage{"https://acme.example": page},
		TransientFailures: map[string]int{"https://acme.example": 2},
	}

	cfg := browser.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}
	got, err := browser.Navigate(
		context.Background(), nav, "https://acme.example", cfg, logger.NewNoOp())
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example", got.URL())
	assert.Equal(t, 3, nav.VisitCount("https://acme.example"))
}

func TestNavigateExhaustsAttempts(t *testing.T) {
	t.Parallel()

	nav := &testutils.FakeNavigator{
		Errs: map[string]error{"https://down.example": errors.New("refused")},
	}

	cfg := browser.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}
	_, err := browser.Navigate(
		context.Background(), nav, "https://down.example", cfg, logger.NewNoOp())
	require.Error(t, err)

	var navErr *browser.NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, 3, navErr.Attempts)
	assert.Equal(t, "https://down.example", navErr.URL)
	assert.Equal(t, 3, nav.VisitCount("https://down.example"))
}

func TestStaticNavigator(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, listingHTML)
		}))
	defer srv.Close()

	nav := browser.NewStaticNavigator(nil)
	page, err := nav.Navigate(context.Background(), srv.URL)
	require.NoError(t, err)

	links, err := page.SelectAll(context.Background(), "a.job")
	require.NoError(t, err)
	require.Len(t, links, 2)

	// Relative hrefs resolve against the page URL.
	href, err := links[0].Attribute(context.Background(), "href")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/jobs/1", href)

	// Absent selectors are (nil, nil), not an error.
	missing, err := page.SelectOne(context.Background(), ".does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Static snapshots cannot click or run scripts.
	next, err := page.SelectOne(context.Background(), "button.next")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.ErrorIs(t, next.Click(context.Background()), browser.ErrScriptingUnsupported)
	_, err = page.Evaluate(context.Background(), "1+1")
	assert.ErrorIs(t, err, browser.ErrScriptingUnsupported)
}

func TestStaticFetcherStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
	defer srv.Close()

	fetcher := browser.NewStaticFetcher(nil, "")
	_, err := fetcher.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *browser.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestChainFallsBack(t *testing.T) {
	t.Parallel()

	failing := browser.FetchStrategy{
		Name: "failing",
		Fetch: func(context.Context, string) browser.FetchResult {
			return browser.FetchResult{Err: errors.New("render crashed")}
		},
	}
	working := browser.FetchStrategy{
		Name: "working",
		Fetch: func(context.Context, string) browser.FetchResult {
			return browser.FetchResult{OK: true, Content: "<html>ok</html>"}
		},
	}

	chain := browser.NewChain(logger.NewNoOp(), failing, working)
	content, err := chain.Fetch(context.Background(), "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", content)
}

func TestChainAllFail(t *testing.T) {
	t.Parallel()

	failing := browser.FetchStrategy{
		Name: "failing",
		Fetch: func(context.Context, string) browser.FetchResult {
			return browser.FetchResult{Err: errors.New("boom")}
		},
	}

	chain := browser.NewChain(logger.NewNoOp(), failing, failing)
	_, err := chain.Fetch(context.Background(), "https://acme.example")
	assert.ErrorIs(t, err, browser.ErrAllFetchersFailed)
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	text, err := browser.CleanText(listingHTML)
	require.NoError(t, err)

	assert.Contains(t, text, "Engineer")
	assert.Contains(t, text, "Analyst")
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "color:red")
	assert.NotContains(t, text, "<a")
}
