// Package testutils provides shared testing utilities across the
// application: scriptable fakes for the browser layer and the cache
// extractor.
package testutils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/greg-randall/job-finder/internal/browser"
)

// FakeNavigator serves scripted pages by URL.
type FakeNavigator struct {
	mu sync.Mutex

	// Pages maps URLs to the page returned for them.
	Pages map[string]*FakePage
	// Errs maps URLs to a permanent navigation error.
	Errs map[string]error
	// TransientFailures maps URLs to how many attempts fail before one
	// succeeds, for exercising retry behavior.
	TransientFailures map[string]int

	// Visited records every Navigate call in order.
	Visited []string
}

// Navigate implements browser.Navigator.
func (n *FakeNavigator) Navigate(_ context.Context, url string) (browser.Page, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Visited = append(n.Visited, url)

	if err, ok := n.Errs[url]; ok {
		return nil, err
	}
	if remaining := n.TransientFailures[url]; remaining > 0 {
		n.TransientFailures[url] = remaining - 1
		return nil, fmt.Errorf("transient failure loading %s", url)
	}
	page, ok := n.Pages[url]
	if !ok {
		return nil, fmt.Errorf("no page scripted for %s", url)
	}
	return page, nil
}

// VisitCount returns how many times url was navigated to.
func (n *FakeNavigator) VisitCount(url string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, visited := range n.Visited {
		if visited == url {
			count++
		}
	}
	return count
}

// PageState is one renderable state of a fake page.
type PageState struct {
	// URL is the address the page reports while in this state.
	URL string
	// Links maps a selector to the hrefs of the elements it matches.
	Links map[string][]string
	// Elements maps a selector to a single scripted element.
	Elements map[string]*FakeElement
	// NextSelector names the element whose click advances the page to
	// its next state.
	NextSelector string
	// Markup is returned by Content.
	Markup string
	// Frame is the nested page returned for FrameSelector.
	Frame         *FakePage
	FrameSelector string
	// EvalResult and EvalErr script Evaluate.
	EvalResult any
	EvalErr    error
}

// FakePage is a scriptable page that moves through a sequence of
// states as next-page elements are clicked.
type FakePage struct {
	mu sync.Mutex

	// States is the page's state sequence. Empty behaves as one blank
	// state.
	States []PageState
	idx    int

	// SelectCalls records every SelectOne/SelectAll selector queried.
	SelectCalls []string
	// Clicked records every clicked selector.
	Clicked []string
}

// NewFakePage creates a page with a single state.
func NewFakePage(state PageState) *FakePage {
	return &FakePage{States: []PageState{state}}
}

func (p *FakePage) state() *PageState {
	if len(p.States) == 0 {
		p.States = []PageState{{}}
	}
	return &p.States[p.idx]
}

// URL implements browser.Page.
func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state().URL
}

// SelectOne implements browser.Page.
func (p *FakePage) SelectOne(_ context.Context, selector string) (browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.SelectCalls = append(p.SelectCalls, selector)
	state := p.state()

	if el, ok := state.Elements[selector]; ok {
		return p.bind(el, selector), nil
	}
	if hrefs := state.Links[selector]; len(hrefs) > 0 {
		return p.bind(&FakeElement{Href: hrefs[0]}, selector), nil
	}
	return nil, nil
}

// SelectAll implements browser.Page.
func (p *FakePage) SelectAll(_ context.Context, selector string) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.SelectCalls = append(p.SelectCalls, selector)
	state := p.state()

	var elements []browser.Element
	for _, href := range state.Links[selector] {
		elements = append(elements, p.bind(&FakeElement{Href: href}, selector))
	}
	if el, ok := state.Elements[selector]; ok && len(elements) == 0 {
		elements = append(elements, p.bind(el, selector))
	}
	return elements, nil
}

// WaitForSelector implements browser.Page. It resolves immediately
// against the current state.
func (p *FakePage) WaitForSelector(ctx context.Context, selector string, _ time.Duration) error {
	el, err := p.SelectOne(ctx, selector)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return nil
}

// Frame implements browser.Page.
func (p *FakePage) Frame(_ context.Context, selector string) (browser.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.state()
	if state.Frame != nil && selector == state.FrameSelector {
		return state.Frame, nil
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
}

// Content implements browser.Page.
func (p *FakePage) Content(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state().Markup, nil
}

// Evaluate implements browser.Page.
func (p *FakePage) Evaluate(_ context.Context, _ string) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	state := p.state()
	return state.EvalResult, state.EvalErr
}

// bind attaches page bookkeeping to an element. Callers hold p.mu.
func (p *FakePage) bind(el *FakeElement, selector string) *FakeElement {
	bound := *el
	bound.onClick = func() error {
		p.mu.Lock()
		defer p.mu.Unlock()

		p.Clicked = append(p.Clicked, selector)
		if el.ClickErr != nil {
			return el.ClickErr
		}
		if selector == p.state().NextSelector && p.idx < len(p.States)-1 {
			p.idx++
		}
		return nil
	}
	return &bound
}

// FakeElement is a scripted element.
type FakeElement struct {
	// Href is returned for Attribute("href").
	Href string
	// TextValue is returned by Text.
	TextValue string
	// ClickErr makes Click fail.
	ClickErr error

	onClick func() error
}

// Click implements browser.Element.
func (e *FakeElement) Click(_ context.Context) error {
	if e.onClick != nil {
		return e.onClick()
	}
	return e.ClickErr
}

// Attribute implements browser.Element.
func (e *FakeElement) Attribute(_ context.Context, name string) (string, error) {
	if name == "href" || name == "src" {
		return e.Href, nil
	}
	return "", nil
}

// Text implements browser.Element.
func (e *FakeElement) Text(_ context.Context) (string, error) {
	return e.TextValue, nil
}

var _ browser.Navigator = (*FakeNavigator)(nil)
var _ browser.Page = (*FakePage)(nil)
var _ browser.Element = (*FakeElement)(nil)
