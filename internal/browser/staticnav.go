package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrScriptingUnsupported is returned by a static page for operations
// that need a scripting runtime, such as clicks and script evaluation.
var ErrScriptingUnsupported = errors.New("operation requires a scripting runtime")

// StaticNavigator renders pages by fetching their HTML over plain HTTP
// and parsing it with goquery. Pages are immutable snapshots: selector
// queries resolve against the markup as served, and operations that
// would mutate page state report ErrScriptingUnsupported.
type StaticNavigator struct {
	fetcher *StaticFetcher
}

// NewStaticNavigator creates a navigator backed by the given fetcher.
// A nil fetcher gets default transport settings.
func NewStaticNavigator(fetcher *StaticFetcher) *StaticNavigator {
	if fetcher == nil {
		fetcher = NewStaticFetcher(nil, "")
	}
	return &StaticNavigator{fetcher: fetcher}
}

// Navigate fetches the URL and returns a parsed snapshot of it.
func (n *StaticNavigator) Navigate(ctx context.Context, pageURL string) (Page, error) {
	markup, err := n.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}
	return &staticPage{nav: n, url: base, doc: doc}, nil
}

// staticPage is an immutable parsed document.
type staticPage struct {
	nav *StaticNavigator
	url *url.URL
	doc *goquery.Document
}

func (p *staticPage) URL() string {
	return p.url.String()
}

func (p *staticPage) SelectOne(_ context.Context, selector string) (Element, error) {
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, nil
	}
	return &staticElement{page: p, sel: sel}, nil
}

func (p *staticPage) SelectAll(_ context.Context, selector string) ([]Element, error) {
	var elements []Element
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, &staticElement{page: p, sel: sel})
	})
	return elements, nil
}

// WaitForSelector resolves immediately: a static snapshot never gains
// elements, so waiting longer would not change the answer.
func (p *staticPage) WaitForSelector(ctx context.Context, selector string, _ time.Duration) error {
	el, err := p.SelectOne(ctx, selector)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return nil
}

// Frame resolves the iframe's src against the page URL and fetches the
// nested document as its own page.
func (p *staticPage) Frame(ctx context.Context, selector string) (Page, error) {
	el, err := p.SelectOne(ctx, selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	src, err := el.Attribute(ctx, "src")
	if err != nil {
		return nil, err
	}
	if src == "" {
		return nil, fmt.Errorf("iframe %s has no src", selector)
	}
	return p.nav.Navigate(ctx, src)
}

func (p *staticPage) Content(_ context.Context) (string, error) {
	markup, err := goquery.OuterHtml(p.doc.Selection)
	if err != nil {
		return "", fmt.Errorf("failed to serialize page: %w", err)
	}
	return markup, nil
}

func (p *staticPage) Evaluate(_ context.Context, _ string) (any, error) {
	return nil, ErrScriptingUnsupported
}

// staticElement is one node in a static page.
type staticElement struct {
	page *staticPage
	sel  *goquery.Selection
}

func (e *staticElement) Click(_ context.Context) error {
	return ErrScriptingUnsupported
}

// Attribute returns the named attribute. href and src values are
// resolved against the page URL so relative links come back absolute.
func (e *staticElement) Attribute(_ context.Context, name string) (string, error) {
	value, ok := e.sel.Attr(name)
	if !ok || value == "" {
		return "", nil
	}
	if name != "href" && name != "src" {
		return value, nil
	}
	ref, err := url.Parse(value)
	if err != nil {
		return value, nil
	}
	return e.page.url.ResolveReference(ref).String(), nil
}

func (e *staticElement) Text(_ context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

var _ Navigator = (*StaticNavigator)(nil)
