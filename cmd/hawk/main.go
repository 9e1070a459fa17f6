// Package main provides hawk, a terminal front end for a browser-based chat
// assistant. It drives the chat web app in a headless browser, waits for each
// answer to finish streaming and renders it in the terminal, as a table when
// the answer is tabular.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/hawk/pkg/browser"
	"github.com/entrhq/hawk/pkg/chat"
	"github.com/entrhq/hawk/pkg/clock"
	"github.com/entrhq/hawk/pkg/completion"
	"github.com/entrhq/hawk/pkg/config"
	"github.com/entrhq/hawk/pkg/executor/cli"
	"github.com/entrhq/hawk/pkg/extract"
	"github.com/entrhq/hawk/pkg/logging"
	"github.com/entrhq/hawk/pkg/render"
)

const version = "0.1.0"

func main() {
	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go watchSignals(sigChan, cancel, os.Exit)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// watchSignals cancels on the first signal and calls exit on the second, so
// a browser call stuck past cancellation can still be interrupted.
func watchSignals(sigs <-chan os.Signal, cancel context.CancelFunc, exit func(int)) {
	if _, ok := <-sigs; !ok {
		return
	}
	cancel()
	if _, ok := <-sigs; !ok {
		return
	}
	fmt.Fprintln(os.Stderr, "\nForce quitting")
	exit(130)
}

// app is a started browser session with the question pipeline on top.
type app struct {
	term    *render.Terminal
	logger  *logging.Logger
	session *browser.Session
	asker   *chat.Session
}

// start launches the browser, opens the chat app and waits for it to
// initialize. The returned app must be closed.
func start(ctx context.Context, cfg *config.Config) (*app, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(level)

	logger, err := logging.NewLogger("hawk")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	logger.Infof("hawk %s starting (run %s)", version, logger.RunID())

	a := &app{term: newTerminal(cfg), logger: logger}
	a.term.Banner("hawk")

	noise, err := extract.NewNoiseFilter(extract.DefaultNoiseTokens, cfg.NoisePatterns)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("invalid noise pattern: %w", err)
	}

	a.term.Status(render.LevelInfo, "Launching browser...")
	a.session, err = browser.Launch(browser.Options{
		Headless: cfg.Headless,
		Viewport: browser.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height},
		Logger:   logger.With("browser"),
	})
	if err != nil {
		a.close()
		return nil, err
	}

	a.term.Status(render.LevelInfo, fmt.Sprintf("Opening %s...", cfg.URL))
	if err := a.session.Navigate(ctx, cfg.URL); err != nil {
		a.close()
		return nil, err
	}

	wall := clock.Real{}
	a.term.Status(render.LevelWarn, "Page loaded. Waiting for full initialization...")
	if err := wall.Sleep(ctx, cfg.StartupWait); err != nil {
		a.close()
		return nil, err
	}

	detector := completion.NewDetector(
		completion.WithInterval(cfg.PollInterval),
		completion.WithThreshold(cfg.StabilityThreshold),
		completion.WithGrace(cfg.GracePeriod),
		completion.WithClock(wall),
		completion.WithLogger(logger.With("completion")),
	)
	extractor := extract.NewExtractor(
		extract.WithMinLength(cfg.MinAnswerLength),
		extract.WithSettle(cfg.SettleDelay),
		extract.WithNoiseFilter(noise),
		extract.WithClock(wall),
		extract.WithLogger(logger.With("extract")),
	)
	a.asker = chat.NewSession(a.session,
		chat.WithDetector(detector),
		chat.WithExtractor(extractor),
		chat.WithTimeout(cfg.ResponseTimeout),
		chat.WithSubmitDelay(cfg.SubmitDelay),
		chat.WithClock(wall),
		chat.WithLogger(logger.With("chat")),
		chat.WithObserver(cli.StatusObserver(a.term)),
	)

	a.term.Status(render.LevelSuccess, "✅ System Ready! Let's go!")
	a.term.Rule()
	return a, nil
}

// close shuts the browser down, if one was launched, and the log file.
func (a *app) close() {
	if a.session != nil {
		a.term.Status(render.LevelInfo, "Closing browser...")
		if err := a.session.Close(); err != nil {
			a.logger.Warnf("browser close: %v", err)
		}
		a.term.Status(render.LevelSuccess, "Done!")
	}
	_ = a.logger.Close()
}

// interrupted reports whether err is a user interrupt and says goodbye if so.
func (a *app) interrupted(err error) bool {
	if !errors.Is(err, context.Canceled) {
		return false
	}
	a.term.Status(render.LevelWarn, "\n👋 Interrupted by user")
	return true
}

// run starts the interactive question loop.
func run(ctx context.Context, cfg *config.Config) error {
	a, err := start(ctx, cfg)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\n👋 Interrupted by user")
		return nil
	}
	if err != nil {
		return err
	}
	defer a.close()

	executor := cli.NewExecutor(a.asker, a.term,
		cli.WithCopyAnswers(cfg.CopyAnswers),
		cli.WithLogger(a.logger.With("cli")),
	)
	if err := executor.Run(ctx); err != nil {
		if a.interrupted(err) {
			return nil
		}
		return err
	}
	a.term.Status(render.LevelInfo, "👋 Goodbye!")
	return nil
}

func newTerminal(cfg *config.Config) *render.Terminal {
	opts := []render.TerminalOption{render.WithSpinner(cfg.Spinner)}
	if cfg.MarkdownStyle != "" && cfg.MarkdownStyle != "none" {
		opts = append(opts, render.WithMarkdown(cfg.MarkdownStyle))
	}
	return render.NewTerminal(os.Stdout, opts...)
}
