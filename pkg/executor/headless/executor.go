// Package headless runs a fixed list of questions without a terminal and
// writes the answers out as artifacts.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/entrhq/hawk/pkg/chat"
	"github.com/entrhq/hawk/pkg/clock"
	"github.com/entrhq/hawk/pkg/logging"
	"github.com/entrhq/hawk/pkg/table"
)

const (
	statusSuccess        = "success"
	statusFailed         = "failed"
	statusPartialSuccess = "partial_success"
	statusInterrupted    = "interrupted"
)

// Asker answers one question at a time.
type Asker interface {
	Ask(ctx context.Context, question string) (chat.Answer, error)
}

// Executor implements the batch executor
type Executor struct {
	asker          Asker
	config         *Config
	artifactWriter *ArtifactWriter
	clock          clock.Clock
	logger         *logging.Logger
	progress       io.Writer
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock replaces the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithProgress writes one line per finished question to w.
func WithProgress(w io.Writer) Option {
	return func(e *Executor) {
		e.progress = w
	}
}

// NewExecutor creates a new batch executor
func NewExecutor(asker Asker, config *Config, opts ...Option) (*Executor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := &Executor{
		asker:    asker,
		config:   config,
		clock:    clock.Real{},
		progress: io.Discard,
	}
	if config.Artifacts.Enabled {
		e.artifactWriter = NewArtifactWriter(config.Artifacts)
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Discard("headless")
	}
	return e, nil
}

// Run asks every question in order and writes artifacts. The transcript is
// returned even when the run is interrupted; the error is then ctx.Err().
func (e *Executor) Run(ctx context.Context) (*Transcript, error) {
	t := &Transcript{StartTime: e.clock.Now()}
	total := len(e.config.Questions)
	e.logger.Infof("batch run started: %d questions", total)

	var runErr error
	stopped := false
	for i, q := range e.config.Questions {
		if stopped {
			t.Entries = append(t.Entries, Entry{Question: q, Kind: chat.Classify(q).String(), Outcome: OutcomeSkipped})
			continue
		}

		entry, err := e.ask(ctx, q)
		if err != nil {
			runErr = err
			break
		}
		t.Entries = append(t.Entries, entry)
		fmt.Fprintf(e.progress, "[%d/%d] %s: %s\n", i+1, total, entry.Outcome, q)

		if entry.Outcome == chat.OutcomeSendFailed.String() && e.config.StopOnSendFailure {
			e.logger.Warnf("stopping after send failure on question %d", i+1)
			stopped = true
		}
	}

	e.finish(t, runErr, stopped)

	if e.artifactWriter != nil {
		if err := e.artifactWriter.WriteAll(t); err != nil {
			e.logger.Errorf("artifact write failed: %v", err)
			return t, errors.Join(runErr, err)
		}
	}
	return t, runErr
}

func (e *Executor) ask(ctx context.Context, q string) (Entry, error) {
	started := e.clock.Now()
	ans, err := e.asker.Ask(ctx, q)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Question: q,
		Kind:     ans.Kind.String(),
		Outcome:  ans.Outcome.String(),
		Strategy: ans.Strategy,
		Stable:   ans.Stable,
		Answer:   ans.Text,
		Duration: e.clock.Now().Sub(started),
	}
	if parsed := table.Parse(ans.Text); parsed.IsTabular() {
		entry.Table = &parsed
	}
	return entry, nil
}

func (e *Executor) finish(t *Transcript, runErr error, stopped bool) {
	t.EndTime = e.clock.Now()
	t.Duration = t.EndTime.Sub(t.StartTime)

	m := Metrics{Questions: len(e.config.Questions)}
	for _, entry := range t.Entries {
		switch entry.Outcome {
		case chat.OutcomeAnswered.String():
			m.Answered++
		case chat.OutcomeFallback.String():
			m.Fallback++
		case chat.OutcomeExhausted.String():
			m.Exhausted++
		case chat.OutcomeSendFailed.String():
			m.SendFailed++
		}
		if entry.Table != nil {
			m.Tables++
		}
	}
	t.Metrics = m

	got := m.Answered + m.Fallback
	switch {
	case runErr != nil:
		t.Status = statusInterrupted
		t.Error = runErr.Error()
	case got == m.Questions:
		t.Status = statusSuccess
	case got == 0 || stopped:
		t.Status = statusFailed
	default:
		t.Status = statusPartialSuccess
	}
	e.logger.Infof("batch run %s: %d/%d answered in %s", t.Status, got, m.Questions, t.Duration)
}
