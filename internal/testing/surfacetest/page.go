// Package surfacetest provides an in-memory chat page for tests.
package surfacetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Element mirrors the JSON shape returned by the block extraction script.
type Element struct {
	Text    string `json:"text"`
	Content string `json:"content"`
	Markup  string `json:"markup"`
}

// Page is a scripted surface.Surface.
//
// VisibleText walks through Texts one call at a time and then repeats the
// last entry. Query answers block queries (an argument map with "selector"
// and "last") from Elements.
type Page struct {
	mu sync.Mutex

	Texts   []string
	TextErr error

	Elements   map[string][]Element
	QueryErrs  map[string]error
	RawQueries map[string]string

	SubmitOK  bool
	SubmitErr error

	NavigateErr error

	textCalls int
	queries   []string
	submitted []string
	navigated []string
	closed    bool
}

// NewPage returns a page whose submissions succeed.
func NewPage() *Page {
	return &Page{
		Elements:   map[string][]Element{},
		QueryErrs:  map[string]error{},
		RawQueries: map[string]string{},
		SubmitOK:   true,
	}
}

// VisibleText implements surface.Sampler.
func (p *Page) VisibleText(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.textCalls++
	if p.TextErr != nil {
		return "", p.TextErr
	}
	if len(p.Texts) == 0 {
		return "", nil
	}
	i := p.textCalls - 1
	if i >= len(p.Texts) {
		i = len(p.Texts) - 1
	}
	return p.Texts[i], nil
}

// Query implements surface.Querier.
func (p *Page) Query(ctx context.Context, script string, arg any) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	args, ok := arg.(map[string]any)
	if !ok {
		if raw, found := p.RawQueries[script]; found {
			return raw, true, nil
		}
		return "", false, nil
	}

	selector, _ := args["selector"].(string)
	p.queries = append(p.queries, selector)

	if err := p.QueryErrs[selector]; err != nil {
		return "", false, err
	}

	elements := p.Elements[selector]
	if len(elements) == 0 {
		return "", false, nil
	}
	if last, ok := args["last"].(int); ok && last > 0 && last < len(elements) {
		elements = elements[len(elements)-last:]
	}

	raw, err := json.Marshal(elements)
	if err != nil {
		return "", false, fmt.Errorf("marshal elements: %w", err)
	}
	return string(raw), true, nil
}

// Submit implements surface.Submitter.
func (p *Page) Submit(ctx context.Context, input string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.submitted = append(p.submitted, input)
	if p.SubmitErr != nil {
		return false, p.SubmitErr
	}
	return p.SubmitOK, nil
}

// Navigate implements surface.Surface.
func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.navigated = append(p.navigated, url)
	return p.NavigateErr
}

// Close implements surface.Surface.
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	return nil
}

// TextCalls returns how many times VisibleText was called.
func (p *Page) TextCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textCalls
}

// Queries returns the selectors queried so far, in order.
func (p *Page) Queries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.queries...)
}

// Submitted returns every submitted input, in order.
func (p *Page) Submitted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.submitted...)
}

// Navigated returns every navigated URL, in order.
func (p *Page) Navigated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigated...)
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
