// Package browser drives a real Chromium page through Playwright and exposes
// it as a surface.Surface.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/hawk/pkg/logging"
)

const (
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080

	// DefaultTimeout is Playwright's per-operation timeout in milliseconds.
	DefaultTimeout = 30000.0
)

// stealthArgs keep the automation from advertising itself.
var stealthArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-gpu",
	"--no-sandbox",
	"--disable-dev-shm-usage",
}

// Options configures Launch.
type Options struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	Viewport Viewport

	// Timeout is the default operation timeout in milliseconds.
	Timeout float64

	Logger *logging.Logger
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Session is one browser with a single page.
type Session struct {
	pw      *playwright.Playwright
	Browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page
	logger  *logging.Logger
}

// Launch installs the Playwright driver if needed, starts Chromium and opens
// a blank page.
func Launch(opts Options) (*Session, error) {
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard("browser")
	}

	// Keep driver output off the terminal the REPL is using.
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless:          playwright.Bool(opts.Headless),
		Args:              stealthArgs,
		IgnoreDefaultArgs: []string{"--enable-automation"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(hideWebdriverScript)}); err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to install init script: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	logger.Infof("chromium launched (headless=%t, viewport=%dx%d)", opts.Headless, opts.Viewport.Width, opts.Viewport.Height)
	return &Session{
		pw:      pw,
		Browser: browser,
		Context: bctx,
		Page:    page,
		logger:  logger,
	}, nil
}

// Navigate loads url and waits for the DOM to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitUntil := playwright.WaitUntilState("domcontentloaded")
	if _, err := s.Page.Goto(url, playwright.PageGotoOptions{WaitUntil: &waitUntil}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	s.logf("navigated to %s", s.Page.URL())
	return nil
}

// VisibleText returns the rendered text of the page body.
func (s *Session) VisibleText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.Page.InnerText("body")
	if err != nil {
		return "", fmt.Errorf("read page text: %w", err)
	}
	return text, nil
}

// Query evaluates script with arg in the page. A null or undefined result
// reports false; non-string results are returned as JSON.
func (s *Session) Query(ctx context.Context, script string, arg any) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	result, err := s.Page.Evaluate(script, arg)
	if err != nil {
		return "", false, fmt.Errorf("script evaluation failed: %w", err)
	}
	return scriptValue(result)
}

// Submit types input into the prompt field and sends it. It reports false
// when the page has no editable prompt field.
func (s *Session) Submit(ctx context.Context, input string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	result, err := s.Page.Evaluate(submitScript, input)
	if err != nil {
		return false, fmt.Errorf("submit script failed: %w", err)
	}
	sent, _ := result.(bool)
	return sent, nil
}

// Close tears down the page, context and browser, then stops the driver.
// The first error is returned; teardown continues regardless.
func (s *Session) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if s.Page != nil {
		keep(s.Page.Close())
	}
	if s.Context != nil {
		keep(s.Context.Close())
	}
	if s.Browser != nil {
		keep(s.Browser.Close())
	}
	if s.pw != nil {
		keep(s.pw.Stop())
	}
	s.logf("browser closed")
	return first
}

func (s *Session) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Infof(format, args...)
	}
}

func scriptValue(v any) (string, bool, error) {
	switch val := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return val, true, nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", false, fmt.Errorf("encode script result: %w", err)
		}
		return string(data), true, nil
	}
}
