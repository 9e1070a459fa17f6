package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/hawk/pkg/surface"
)

// Status tags the outcome of one strategy.
type Status int

const (
	// StatusAbsent means the strategy found nothing it recognizes.
	StatusAbsent Status = iota
	// StatusOK means the strategy produced text.
	StatusOK
	// StatusFailed means the query itself failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "absent"
	}
}

// Result is a strategy's candidate answer.
type Result struct {
	Status Status
	Text   string
	Err    error
}

// OK wraps found text.
func OK(text string) Result { return Result{Status: StatusOK, Text: text} }

// Absent reports that nothing matched.
func Absent() Result { return Result{Status: StatusAbsent} }

// Failed wraps a query error.
func Failed(err error) Result { return Result{Status: StatusFailed, Err: err} }

// Strategy is one way of locating the latest answer on the page.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, q surface.Querier) Result
}

// Block is the content of one page element.
type Block struct {
	// Text is the rendered text (innerText).
	Text string `json:"text"`
	// Content is the raw text content (textContent).
	Content string `json:"content"`
	// Markup is the element's inner HTML.
	Markup string `json:"markup"`
}

// String returns the best available text: rendered text, then raw text
// content, then the markup flattened to text.
func (b Block) String() string {
	if strings.TrimSpace(b.Text) != "" {
		return b.Text
	}
	if strings.TrimSpace(b.Content) != "" {
		return b.Content
	}
	if b.Markup != "" {
		if text, err := markupText(b.Markup); err == nil {
			return text
		}
	}
	return ""
}

// blocksScript returns a JSON array describing the last `last` elements that
// match `selector`, or null when nothing matches.
const blocksScript = `({ selector, last }) => {
	const found = Array.from(document.querySelectorAll(selector));
	if (found.length === 0) {
		return null;
	}
	return JSON.stringify(found.slice(-last).map((el) => ({
		text: el.innerText || '',
		content: el.textContent || '',
		markup: el.innerHTML || '',
	})));
}`

// QueryBlocks returns up to last blocks matching selector, in document order.
// A nil slice with a nil error means nothing matched.
func QueryBlocks(ctx context.Context, q surface.Querier, selector string, last int) ([]Block, error) {
	raw, ok, err := q.Query(ctx, blocksScript, map[string]any{
		"selector": selector,
		"last":     last,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var blocks []Block
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil, fmt.Errorf("decode blocks for %q: %w", selector, err)
	}
	return blocks, nil
}

// SelectorStrategy reads the last Window elements matching Selector and,
// scanning from the newest, returns the first whose text is longer than
// MinLength characters.
type SelectorStrategy struct {
	Label     string
	Selector  string
	Window    int
	MinLength int
}

// Last returns a strategy that takes the newest element matching selector.
func Last(label, selector string) SelectorStrategy {
	return SelectorStrategy{Label: label, Selector: selector, Window: 1}
}

// ScanBack returns a strategy that looks at the newest window elements and
// skips those no longer than minLength, such as buttons or echoed questions.
func ScanBack(label, selector string, window, minLength int) SelectorStrategy {
	return SelectorStrategy{Label: label, Selector: selector, Window: window, MinLength: minLength}
}

// Name implements Strategy.
func (s SelectorStrategy) Name() string { return s.Label }

// Extract implements Strategy.
func (s SelectorStrategy) Extract(ctx context.Context, q surface.Querier) Result {
	window := s.Window
	if window < 1 {
		window = 1
	}

	blocks, err := QueryBlocks(ctx, q, s.Selector, window)
	if err != nil {
		return Failed(err)
	}

	for i := len(blocks) - 1; i >= 0; i-- {
		text := blocks[i].String()
		if text != "" && utf8.RuneCountInString(text) > s.MinLength {
			return OK(text)
		}
	}
	return Absent()
}

// Selectors used by the built-in chain.
const (
	SelectorMessageContent = "message-content"
	SelectorModelResponse  = `[class*="model-response"], [class*="response-container"]`
	SelectorMessage        = `[class*="message"]`
	SelectorMarkdown       = `[class*="markdown"], .response-text`
)

// DefaultStrategies returns the built-in chain, most specific first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		Last("message-content", SelectorMessageContent),
		Last("model-response", SelectorModelResponse),
		ScanBack("message", SelectorMessage, 5, 30),
		Last("markdown", SelectorMarkdown),
	}
}
