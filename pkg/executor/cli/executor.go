// Package cli provides the interactive question loop.
//
// Example usage:
//
//	term := render.NewTerminal(os.Stdout, render.WithSpinner(true))
//	session := chat.NewSession(page, chat.WithObserver(cli.StatusObserver(term)))
//	executor := cli.NewExecutor(session, term)
//
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/entrhq/hawk/pkg/chat"
	"github.com/entrhq/hawk/pkg/logging"
	"github.com/entrhq/hawk/pkg/render"
)

// ThinkingLabel is shown next to the spinner while a question is in flight.
const ThinkingLabel = "🤔 Thinking..."

// Asker answers one question at a time.
type Asker interface {
	Ask(ctx context.Context, question string) (chat.Answer, error)
}

// Console is the terminal the loop talks to.
type Console interface {
	render.Renderer
	Prompt()
	Rule()
	Spin(ctx context.Context, label string, fn func(ctx context.Context) error) error
}

// Executor reads questions from a reader and displays each answer.
type Executor struct {
	asker   Asker
	console Console
	input   io.Reader
	logger  *logging.Logger

	copyAnswers bool
	copier      func(string) error
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithReader sets the input source (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.input = r
	}
}

// WithCopyAnswers copies each answer to the system clipboard.
func WithCopyAnswers(enabled bool) ExecutorOption {
	return func(e *Executor) {
		e.copyAnswers = enabled
	}
}

// WithCopier replaces the clipboard writer.
func WithCopier(fn func(string) error) ExecutorOption {
	return func(e *Executor) {
		e.copier = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// NewExecutor creates a new CLI executor.
func NewExecutor(asker Asker, console Console, opts ...ExecutorOption) *Executor {
	e := &Executor{
		asker:   asker,
		console: console,
		input:   os.Stdin,
		copier:  clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Discard("cli")
	}
	return e
}

// IsQuit reports whether input ends the session.
func IsQuit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

type line struct {
	text string
	err  error
}

// Run loops until the user quits, input ends, or ctx is cancelled. It
// returns nil on quit or EOF and ctx.Err() on cancellation.
func (e *Executor) Run(ctx context.Context) error {
	lines := make(chan line)
	go readLines(ctx, e.input, lines)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.console.Prompt()

		var in line
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok = <-lines:
		}
		if !ok {
			return nil
		}
		if in.err != nil {
			return fmt.Errorf("failed to read input: %w", in.err)
		}

		question := strings.TrimRight(in.text, "\r\n")
		if IsQuit(question) {
			return nil
		}
		if strings.TrimSpace(question) == "" {
			e.console.Status(render.LevelWarn, "Please enter a question")
			continue
		}

		if err := e.turn(ctx, question); err != nil {
			return err
		}
	}
}

func (e *Executor) turn(ctx context.Context, question string) error {
	var ans chat.Answer
	err := e.console.Spin(ctx, ThinkingLabel, func(ctx context.Context) error {
		var err error
		ans, err = e.asker.Ask(ctx, question)
		return err
	})
	if err != nil {
		return err
	}

	render.Display(e.console, question, ans.Text)

	if e.copyAnswers && (ans.Outcome == chat.OutcomeAnswered || ans.Outcome == chat.OutcomeFallback) {
		if err := e.copier(ans.Text); err != nil {
			e.logger.Warnf("clipboard copy failed: %v", err)
			e.console.Status(render.LevelWarn, "Could not copy answer to clipboard")
		} else {
			e.console.Status(render.LevelInfo, "📋 Answer copied to clipboard")
		}
	}

	e.console.Rule()
	return nil
}

// readLines sends each input line to out and closes it at EOF. It gives up
// once ctx is done; a read already blocked on r still finishes first.
func readLines(ctx context.Context, r io.Reader, out chan<- line) {
	defer close(out)
	send := func(l line) bool {
		select {
		case out <- l:
			return true
		case <-ctx.Done():
			return false
		}
	}

	reader := bufio.NewReader(r)
	for {
		text, err := reader.ReadString('\n')
		if text != "" || err == nil {
			if !send(line{text: text}) {
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			send(line{err: err})
			return
		}
	}
}

// StatusObserver turns session progress into status lines on r.
func StatusObserver(r render.Renderer) chat.Observer {
	return func(ev chat.Event, detail string) {
		switch ev {
		case chat.EventSending:
			r.Status(render.LevelInfo, "Sending: "+detail)
		case chat.EventSent:
			r.Status(render.LevelSuccess, "✓ Message sent successfully")
		case chat.EventSendFailed:
			if detail == chat.ReasonNoInput {
				r.Status(render.LevelError, "❌ Could not find input element")
				return
			}
			r.Status(render.LevelError, "Error sending message: "+detail)
		case chat.EventTimedOut:
			r.Status(render.LevelWarn, "⏱ Answer still changing, reading it anyway")
		case chat.EventFallback:
			r.Status(render.LevelWarn, "Using fallback extraction...")
		}
	}
}
