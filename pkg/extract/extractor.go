// Package extract locates the latest answer on a chat page.
//
// The page has no stable selector contract, so extraction is a chain of
// independent strategies tried in order, each assuming a different markup
// convention. The first strategy whose text is long enough wins. When all of
// them miss, the extractor falls back to the tail of the page's visible text
// with navigation chrome filtered out, and when even that is empty it returns
// Sentinel. Extraction never fails.
package extract

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/entrhq/hawk/pkg/clock"
	"github.com/entrhq/hawk/pkg/logging"
	"github.com/entrhq/hawk/pkg/surface"
)

// Sentinel is returned when no text could be extracted.
const Sentinel = "⚠️ Could not extract response. The page may still be loading."

// Defaults for an Extractor.
const (
	DefaultMinLength     = 20
	DefaultSettle        = 3 * time.Second
	DefaultFallbackLines = 10
)

// Source is what the extractor reads from.
type Source interface {
	surface.Sampler
	surface.Querier
}

// Extraction is the extractor's answer and how it was found.
type Extraction struct {
	Text string

	// Strategy names the winning strategy, "page" for the whole-page
	// fallback, or "" when Sentinel was returned.
	Strategy string

	Fallback  bool
	Exhausted bool
}

// FallbackStrategy is the Extraction.Strategy value for whole-page text.
const FallbackStrategy = "page"

// Extractor runs the strategy chain.
type Extractor struct {
	strategies    []Strategy
	minLength     int
	fallbackLines int
	settle        time.Duration
	noise         *NoiseFilter
	clock         clock.Clock
	logger        *logging.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategies replaces the strategy chain.
func WithStrategies(s ...Strategy) Option {
	return func(e *Extractor) {
		e.strategies = s
	}
}

// WithMinLength sets the trimmed length a result must exceed to win.
func WithMinLength(n int) Option {
	return func(e *Extractor) {
		e.minLength = n
	}
}

// WithSettle sets the pause taken before reading the page.
func WithSettle(d time.Duration) Option {
	return func(e *Extractor) {
		e.settle = d
	}
}

// WithNoiseFilter replaces the chrome filter used by the fallback.
func WithNoiseFilter(f *NoiseFilter) Option {
	return func(e *Extractor) {
		e.noise = f
	}
}

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(e *Extractor) {
		e.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// NewExtractor creates an Extractor with DefaultStrategies.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		strategies:    DefaultStrategies(),
		minLength:     DefaultMinLength,
		fallbackLines: DefaultFallbackLines,
		settle:        DefaultSettle,
		clock:         clock.Real{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.noise == nil {
		e.noise = DefaultNoiseFilter()
	}
	if e.logger == nil {
		e.logger = logging.Discard("extract")
	}
	return e
}

// Extract returns the most likely latest answer on the page.
func (e *Extractor) Extract(ctx context.Context, src Source) Extraction {
	if err := e.clock.Sleep(ctx, e.settle); err != nil {
		e.logger.Debugf("settle interrupted: %v", err)
	}

	for _, s := range e.strategies {
		if ctx.Err() != nil {
			break
		}
		res := s.Extract(ctx, src)
		switch res.Status {
		case StatusFailed:
			e.logger.Debugf("strategy %s failed: %v", s.Name(), res.Err)
			continue
		case StatusAbsent:
			e.logger.Debugf("strategy %s found nothing", s.Name())
			continue
		}

		text := strings.TrimSpace(res.Text)
		if utf8.RuneCountInString(text) <= e.minLength {
			e.logger.Debugf("strategy %s result too short (%d chars)", s.Name(), utf8.RuneCountInString(text))
			continue
		}
		e.logger.Infof("extracted %d chars with strategy %s", utf8.RuneCountInString(text), s.Name())
		return Extraction{Text: text, Strategy: s.Name()}
	}

	e.logger.Warnf("no strategy matched; using whole-page fallback")
	page, err := src.VisibleText(ctx)
	if err != nil {
		e.logger.Warnf("page text unavailable: %v", err)
		return Extraction{Text: Sentinel, Fallback: true, Exhausted: true}
	}

	if tail := e.noise.pageTail(page, e.minLength, e.fallbackLines); tail != "" {
		return Extraction{Text: tail, Strategy: FallbackStrategy, Fallback: true}
	}

	e.logger.Warnf("extraction exhausted")
	return Extraction{Text: Sentinel, Fallback: true, Exhausted: true}
}
