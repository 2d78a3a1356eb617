package crawl

// Stats holds the counters for one crawl.
type Stats struct {
	// PagesScraped is the number of pages visited.
	PagesScraped int `json:"pages_scraped"`
	// JobsFound is the number of job links collected.
	JobsFound int `json:"jobs_found"`
	// NewCount is how many extracted links were not yet cached.
	NewCount int `json:"new_count"`
	// CachedCount is how many extracted links were already cached.
	CachedCount int `json:"cached_count"`
	// Errors is the number of extraction errors absorbed during
	// pagination. Failed item downloads are counted separately in
	// DownloadStats.
	Errors int `json:"errors"`
	// EarlyStopped reports whether pagination ended via the
	// cache-hit heuristic rather than the structural last page.
	EarlyStopped bool `json:"early_stopped"`
}

// DownloadStats holds the counters for one download phase.
type DownloadStats struct {
	// Total is the number of links handed to the download phase.
	Total int `json:"total"`
	// Processed is the number of items actually downloaded.
	Processed int `json:"processed"`
	// SkippedSession is the number of duplicates within this run.
	SkippedSession int `json:"skipped_session"`
	// SkippedExisting is the number of items already in the cache.
	SkippedExisting int `json:"skipped_existing"`
	// Errors is the number of failed item downloads.
	Errors int `json:"errors"`
}

// TotalSkipped returns the combined skip count.
func (d DownloadStats) TotalSkipped() int {
	return d.SkippedSession + d.SkippedExisting
}

// Result is the outcome of one crawl, immutable once produced.
type Result struct {
	// Source is the source name.
	Source string `json:"source"`
	// Success reports whether the crawl completed.
	Success bool `json:"success"`
	// Reason classifies the failure; empty on success.
	Reason FailureReason `json:"reason,omitempty"`
	// Err is the error behind the failure, when there was one.
	Err error `json:"-"`
	// Stats is a copy of the crawl session counters.
	Stats Stats `json:"stats"`
	// Download holds the download phase counters.
	Download DownloadStats `json:"download"`
}

// Session is the mutable state of one active crawl. It is owned
// exclusively by the driver executing the crawl and discarded when
// the crawl returns.
type Session struct {
	pageNumber int
	links      []string
	seen       map[string]struct{}
	dedupe     bool
	stats      Stats
}

// NewSession creates a session. When dedupe is set, links reachable
// via multiple paginated views are collected only once.
func NewSession(dedupe bool) *Session {
	s := &Session{
		pageNumber: 1,
		dedupe:     dedupe,
	}
	if dedupe {
		s.seen = make(map[string]struct{})
	}
	return s
}

// PageNumber returns the current page number, starting at 1.
func (s *Session) PageNumber() int {
	return s.pageNumber
}

// NextPage advances the page number. Page numbers only increase.
func (s *Session) NextPage() {
	s.pageNumber++
}

// AddLinks appends a page's extracted links to the collected set and
// returns how many were added. The collection never shrinks.
func (s *Session) AddLinks(links []string) int {
	added := 0
	for _, link := range links {
		if link == "" {
			continue
		}
		if s.dedupe {
			if _, ok := s.seen[link]; ok {
				continue
			}
			s.seen[link] = struct{}{}
		}
		s.links = append(s.links, link)
		added++
	}
	s.stats.JobsFound = len(s.links)
	return added
}

// CountItems records items that were handled without link
// collection, as the click-through variant does.
func (s *Session) CountItems(n int) {
	s.stats.JobsFound += n
}

// Links returns the collected links in collection order.
func (s *Session) Links() []string {
	out := make([]string, len(s.links))
	copy(out, s.links)
	return out
}

// Stats returns a pointer to the session counters for updating.
func (s *Session) Stats() *Stats {
	return &s.stats
}

// RecordPage marks the current page as scraped.
func (s *Session) RecordPage() {
	if s.pageNumber > s.stats.PagesScraped {
		s.stats.PagesScraped = s.pageNumber
	}
}
