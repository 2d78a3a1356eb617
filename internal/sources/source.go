// Package sources manages the catalog of crawl targets. Each source
// describes one job board: where it lives, which backend drives its
// pagination, and the selectors and tunables that backend needs.
package sources

import (
	"errors"
	"fmt"
	"net/url"
)

// Backend identifies the pagination/extraction mechanics family a
// source belongs to. It selects which crawl strategy runs the source.
type Backend string

const (
	// BackendStandard paginates by clicking a next button.
	BackendStandard Backend = "standard"
	// BackendIframe paginates inside a nested iframe document.
	BackendIframe Backend = "iframe"
	// BackendURLPagination paginates by substituting a page number
	// into a URL template.
	BackendURLPagination Backend = "url_pagination"
	// BackendCustomClick clicks through individual job buttons on a
	// single page instead of paginating.
	BackendCustomClick Backend = "custom_click"
	// BackendCustomNavigation follows relative next-page links and
	// deduplicates results across pages.
	BackendCustomNavigation Backend = "custom_navigation"
)

// AvailableBackends returns all supported backend types.
func AvailableBackends() []Backend {
	return []Backend{
		BackendStandard,
		BackendIframe,
		BackendURLPagination,
		BackendCustomClick,
		BackendCustomNavigation,
	}
}

// Valid reports whether b is a supported backend type.
func (b Backend) Valid() bool {
	switch b {
	case BackendStandard, BackendIframe, BackendURLPagination,
		BackendCustomClick, BackendCustomNavigation:
		return true
	default:
		return false
	}
}

// Selector keys recognized in source configuration.
const (
	// SelectorJobLink selects the job links on a listing page.
	SelectorJobLink = "job_link"
	// SelectorNextPage selects the next-page button or link.
	SelectorNextPage = "next_page"
	// SelectorNextPageDisabled selects the disabled next-page button,
	// a deterministic end-of-results signal.
	SelectorNextPageDisabled = "next_page_disabled"
	// SelectorIframe selects the iframe hosting the job board.
	SelectorIframe = "iframe"
	// SelectorJobTable selects the container holding job rows.
	SelectorJobTable = "job_table"
	// SelectorJobButton selects clickable job entries for the
	// click-through backend.
	SelectorJobButton = "job_button"
	// SelectorBackButton selects the control returning from a job
	// detail view to the list view.
	SelectorBackButton = "back_button"
	// SelectorViewAllButton selects the optional "view all" control
	// clicked during click-through setup.
	SelectorViewAllButton = "view_all_button"
	// SelectorCookieModalClass is the CSS class of a cookie consent
	// modal to dismiss before crawling.
	SelectorCookieModalClass = "cookie_modal_class"
)

// Setting keys recognized in source configuration.
const (
	// SettingMaxPages caps pagination regardless of cache state.
	SettingMaxPages = "max_pages"
	// SettingMinNewJobsPerPage is the early-stop threshold: pagination
	// ends when a page yields this many new links or fewer.
	SettingMinNewJobsPerPage = "min_new_jobs_per_page"
	// SettingSleepBetweenJobs is the pause between item downloads.
	SettingSleepBetweenJobs = "sleep_between_jobs"
	// SettingStartPage is the first page number for URL pagination.
	SettingStartPage = "start_page"
	// SettingURLPattern is the URL template for URL pagination.
	SettingURLPattern = "url_pattern"
	// SettingBaseURL prefixes relative next-page links.
	SettingBaseURL = "base_url"
	// SettingHandleCookies enables cookie consent dismissal.
	SettingHandleCookies = "handle_cookies"
	// SettingWaitBetweenPagesMin is the lower bound of the randomized
	// inter-page wait for URL pagination.
	SettingWaitBetweenPagesMin = "wait_between_pages_min"
	// SettingWaitBetweenPagesMax is the upper bound of the randomized
	// inter-page wait for URL pagination.
	SettingWaitBetweenPagesMax = "wait_between_pages_max"
)

// Source represents one configured crawl target. A Source is created
// by the loader and never mutated during a run.
type Source struct {
	// Name is the unique identifier for the source.
	Name string `yaml:"name"`
	// URL is the seed URL for the source.
	URL string `yaml:"url"`
	// Backend selects the crawl strategy variant.
	Backend Backend `yaml:"backend"`
	// Enabled indicates whether the source participates in runs.
	Enabled bool `yaml:"enabled"`
	// Selectors maps named DOM queries used by the backend.
	Selectors map[string]string `yaml:"selectors"`
	// Settings maps per-source tunables used by the backend.
	Settings map[string]any `yaml:"settings"`
}

// Validate validates the source configuration.
func (s *Source) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.URL == "" {
		return errors.New("url is required")
	}
	if _, err := url.ParseRequestURI(s.URL); err != nil {
		return fmt.Errorf("invalid url %q: %w", s.URL, err)
	}
	if !s.Backend.Valid() {
		return fmt.Errorf("unknown backend %q (available: %v)",
			s.Backend, AvailableBackends())
	}
	return nil
}

// Selector returns the named selector, or an empty string when it is
// not configured.
func (s *Source) Selector(key string) string {
	return s.Selectors[key]
}
