// Package chat runs one question/answer turn against a chat page.
//
// A turn is strictly sequential: classify the question, submit the prompt,
// wait for the answer to stop changing, then extract it. Everything below the
// Session is non-failing by contract, so Ask always produces an answer string
// and only returns an error when its context is cancelled.
package chat

import (
	"context"
	"time"

	"github.com/entrhq/hawk/pkg/clock"
	"github.com/entrhq/hawk/pkg/completion"
	"github.com/entrhq/hawk/pkg/extract"
	"github.com/entrhq/hawk/pkg/logging"
	"github.com/entrhq/hawk/pkg/surface"
)

// FailedToSend is the answer text when the prompt could not be submitted.
const FailedToSend = "❌ Failed to send question"

// ReasonNoInput is the EventSendFailed detail when the page has no prompt
// field.
const ReasonNoInput = "could not find input element"

// DefaultSubmitDelay is the pause before and after submitting a prompt.
const DefaultSubmitDelay = 2 * time.Second

// Page is what a Session needs from the chat surface.
type Page interface {
	surface.Submitter
	extract.Source
}

// Outcome says how an answer was obtained.
type Outcome int

const (
	// OutcomeAnswered means a structural strategy found the answer.
	OutcomeAnswered Outcome = iota
	// OutcomeFallback means the answer came from whole-page text.
	OutcomeFallback
	// OutcomeExhausted means nothing was found; Text is extract.Sentinel.
	OutcomeExhausted
	// OutcomeSendFailed means the prompt never reached the page.
	OutcomeSendFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeFallback:
		return "fallback"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeSendFailed:
		return "send-failed"
	}
	return "unknown"
}

// Answer is the result of one turn. It is not retained by the Session.
type Answer struct {
	Question string
	Prompt   string
	Kind     Kind
	Text     string
	Outcome  Outcome

	// Strategy names the extraction strategy that produced Text.
	Strategy string

	// Stable is false when the completion wait timed out.
	Stable bool
}

// Event is a progress notification emitted during Ask.
type Event int

const (
	EventSending Event = iota
	EventSent
	EventSendFailed
	EventTimedOut
	EventFallback
)

// Observer receives progress notifications. detail is event specific: the
// question for EventSending, the failure reason for EventSendFailed.
type Observer func(ev Event, detail string)

// Session asks questions on a single page, one at a time.
type Session struct {
	page        Page
	detector    *completion.Detector
	extractor   *extract.Extractor
	clock       clock.Clock
	logger      *logging.Logger
	timeout     time.Duration
	submitDelay time.Duration
	observer    Observer
}

// Option configures a Session.
type Option func(*Session)

// WithDetector replaces the completion detector.
func WithDetector(d *completion.Detector) Option {
	return func(s *Session) {
		s.detector = d
	}
}

// WithExtractor replaces the content extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(s *Session) {
		s.extractor = e
	}
}

// WithTimeout sets how long to wait for the answer to stabilize.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithSubmitDelay sets the pause before and after submission.
func WithSubmitDelay(d time.Duration) Option {
	return func(s *Session) {
		s.submitDelay = d
	}
}

// WithClock replaces the wall clock used for submission pauses.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// NewSession creates a Session on page.
func NewSession(page Page, opts ...Option) *Session {
	s := &Session{
		page:        page,
		clock:       clock.Real{},
		timeout:     completion.DefaultTimeout,
		submitDelay: DefaultSubmitDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard("chat")
	}
	if s.detector == nil {
		s.detector = completion.NewDetector(completion.WithClock(s.clock), completion.WithLogger(s.logger))
	}
	if s.extractor == nil {
		s.extractor = extract.NewExtractor(extract.WithClock(s.clock), extract.WithLogger(s.logger))
	}
	return s
}

// Ask submits question and returns the page's answer.
func (s *Session) Ask(ctx context.Context, question string) (Answer, error) {
	kind := Classify(question)
	ans := Answer{
		Question: question,
		Kind:     kind,
		Prompt:   BuildPrompt(question, kind),
	}
	s.logger.Infof("asking %s question (%d chars)", kind, len(question))
	s.notify(EventSending, question)

	if err := s.clock.Sleep(ctx, s.submitDelay); err != nil {
		return ans, err
	}

	sent, err := s.page.Submit(ctx, ans.Prompt)
	if ctx.Err() != nil {
		return ans, ctx.Err()
	}
	if err != nil || !sent {
		reason := ReasonNoInput
		if err != nil {
			reason = err.Error()
		}
		s.logger.Errorf("submit failed: %s", reason)
		s.notify(EventSendFailed, reason)
		ans.Text = FailedToSend
		ans.Outcome = OutcomeSendFailed
		return ans, nil
	}
	s.notify(EventSent, "")

	if err := s.clock.Sleep(ctx, s.submitDelay); err != nil {
		return ans, err
	}

	report, err := s.detector.Wait(ctx, s.page, s.timeout)
	if err != nil {
		return ans, err
	}
	ans.Stable = report.Stable
	if !report.Stable {
		s.notify(EventTimedOut, "")
	}

	ex := s.extractor.Extract(ctx, s.page)
	if ctx.Err() != nil {
		return ans, ctx.Err()
	}

	ans.Text = ex.Text
	ans.Strategy = ex.Strategy
	switch {
	case ex.Exhausted:
		ans.Outcome = OutcomeExhausted
		s.notify(EventFallback, "")
	case ex.Fallback:
		ans.Outcome = OutcomeFallback
		s.notify(EventFallback, "")
	default:
		ans.Outcome = OutcomeAnswered
	}

	s.logger.Infof("answer ready: outcome=%s strategy=%q stable=%t chars=%d", ans.Outcome, ans.Strategy, ans.Stable, len(ans.Text))
	return ans, nil
}

func (s *Session) notify(ev Event, detail string) {
	if s.observer != nil {
		s.observer(ev, detail)
	}
}
