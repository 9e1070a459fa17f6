// Package completion decides when a streamed answer has finished rendering.
//
// The chat page gives no explicit "done" signal, so the Detector samples the
// page's visible text on a fixed interval and treats the answer as complete
// once the text length has stayed the same for Threshold consecutive samples.
// Length is a cheap, framework-agnostic proxy for "still streaming". It cannot
// see a replacement of equal length, and a long pause mid-answer looks like
// completion; both are accepted.
package completion

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/entrhq/hawk/pkg/clock"
	"github.com/entrhq/hawk/pkg/logging"
	"github.com/entrhq/hawk/pkg/surface"
)

// Defaults for a Detector.
const (
	DefaultInterval  = 2 * time.Second
	DefaultThreshold = 3
	DefaultGrace     = 2 * time.Second
	DefaultTimeout   = 60 * time.Second
)

// Detector polls a page until its visible text stops changing.
type Detector struct {
	interval  time.Duration
	threshold int
	grace     time.Duration
	clock     clock.Clock
	logger    *logging.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithInterval sets the time between samples.
func WithInterval(d time.Duration) Option {
	return func(det *Detector) {
		det.interval = d
	}
}

// WithThreshold sets how many consecutive equal-length samples mean "done".
func WithThreshold(n int) Option {
	return func(det *Detector) {
		det.threshold = n
	}
}

// WithGrace sets the pause taken after stability is reached.
func WithGrace(d time.Duration) Option {
	return func(det *Detector) {
		det.grace = d
	}
}

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(det *Detector) {
		det.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(det *Detector) {
		det.logger = l
	}
}

// NewDetector creates a Detector with the default interval, threshold and grace.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		interval:  DefaultInterval,
		threshold: DefaultThreshold,
		grace:     DefaultGrace,
		clock:     clock.Real{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.threshold < 1 {
		d.threshold = 1
	}
	if d.logger == nil {
		d.logger = logging.Discard("completion")
	}
	return d
}

// Report describes how a Wait ended.
type Report struct {
	// Stable is false when the timeout elapsed first.
	Stable bool

	// Polls is the number of samples attempted.
	Polls int

	// ReadErrors counts samples that failed and were skipped.
	ReadErrors int

	// Length is the last successfully sampled text length.
	Length int

	Elapsed time.Duration
}

// Wait samples s until the text length is stable or timeout elapses. Both
// outcomes return a nil error; the caller proceeds with whatever is on the
// page. The only error is ctx's, when the wait is interrupted.
func (d *Detector) Wait(ctx context.Context, s surface.Sampler, timeout time.Duration) (Report, error) {
	start := d.clock.Now()
	var (
		report     Report
		lastLength int
		unchanged  int
	)

	for d.clock.Now().Sub(start) < timeout {
		report.Polls++

		text, err := s.VisibleText(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.ReadErrors++
			d.logger.Debugf("sample %d failed: %v", report.Polls, err)
		} else {
			length := utf8.RuneCountInString(text)
			report.Length = length

			if length == lastLength {
				unchanged++
				if unchanged >= d.threshold {
					if err := d.clock.Sleep(ctx, d.grace); err != nil {
						return report, err
					}
					report.Stable = true
					report.Elapsed = d.clock.Now().Sub(start)
					d.logger.Debugf("stable at %d chars after %d polls (%s)", length, report.Polls, report.Elapsed)
					return report, nil
				}
			} else {
				unchanged = 0
				lastLength = length
			}
		}

		if err := d.clock.Sleep(ctx, d.interval); err != nil {
			return report, err
		}
	}

	report.Elapsed = d.clock.Now().Sub(start)
	d.logger.Warnf("no stable content after %s (%d polls, %d read errors); continuing with current page", report.Elapsed, report.Polls, report.ReadErrors)
	return report, nil
}
