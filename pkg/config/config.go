// Package config loads hawk's settings.
//
// Settings come from, in increasing precedence: built-in defaults, a YAML
// file (~/.hawk/config.yaml unless another path is given), HAWK_* environment
// variables, and finally command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/hawk/pkg/logging"
)

// DefaultURL is the chat application hawk drives.
const DefaultURL = "https://gemini.google.com/app"

// Config is the complete runtime configuration.
type Config struct {
	// URL of the chat application.
	URL string `yaml:"url" env:"HAWK_URL"`

	// Headless hides the browser window.
	Headless bool `yaml:"headless" env:"HAWK_HEADLESS"`

	Viewport Viewport `yaml:"viewport" envPrefix:"HAWK_VIEWPORT_"`

	// StartupWait is how long to let the app initialize after navigation.
	StartupWait time.Duration `yaml:"startup_wait" env:"HAWK_STARTUP_WAIT"`

	// ResponseTimeout bounds the wait for an answer to stop changing.
	ResponseTimeout time.Duration `yaml:"response_timeout" env:"HAWK_RESPONSE_TIMEOUT"`

	PollInterval       time.Duration `yaml:"poll_interval" env:"HAWK_POLL_INTERVAL"`
	StabilityThreshold int           `yaml:"stability_threshold" env:"HAWK_STABILITY_THRESHOLD"`
	GracePeriod        time.Duration `yaml:"grace_period" env:"HAWK_GRACE_PERIOD"`

	// SettleDelay is the pause before reading the answer.
	SettleDelay time.Duration `yaml:"settle_delay" env:"HAWK_SETTLE_DELAY"`

	// SubmitDelay is the pause before and after submitting a prompt.
	SubmitDelay time.Duration `yaml:"submit_delay" env:"HAWK_SUBMIT_DELAY"`

	// MinAnswerLength is the length an extracted answer must exceed.
	MinAnswerLength int `yaml:"min_answer_length" env:"HAWK_MIN_ANSWER_LENGTH"`

	// NoisePatterns are extra glob patterns for page chrome, e.g. "*cookie*".
	NoisePatterns []string `yaml:"noise_patterns" env:"HAWK_NOISE_PATTERNS" envSeparator:","`

	// CopyAnswers copies every answer to the system clipboard.
	CopyAnswers bool `yaml:"copy_answers" env:"HAWK_COPY_ANSWERS"`

	// Spinner animates a spinner while waiting for an answer.
	Spinner bool `yaml:"spinner" env:"HAWK_SPINNER"`

	// MarkdownStyle is the glamour style for free-text answers; "none"
	// prints answers verbatim.
	MarkdownStyle string `yaml:"markdown_style" env:"HAWK_MARKDOWN_STYLE"`

	LogLevel string `yaml:"log_level" env:"HAWK_LOG_LEVEL"`
}

// Viewport is the browser window size in pixels.
type Viewport struct {
	Width  int `yaml:"width" env:"WIDTH"`
	Height int `yaml:"height" env:"HEIGHT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		URL:                DefaultURL,
		Headless:           true,
		Viewport:           Viewport{Width: 1920, Height: 1080},
		StartupWait:        20 * time.Second,
		ResponseTimeout:    60 * time.Second,
		PollInterval:       2 * time.Second,
		StabilityThreshold: 3,
		GracePeriod:        2 * time.Second,
		SettleDelay:        3 * time.Second,
		SubmitDelay:        2 * time.Second,
		MinAnswerLength:    20,
		Spinner:            true,
		MarkdownStyle:      "dark",
		LogLevel:           "info",
	}
}

// DefaultPath returns ~/.hawk/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".hawk", "config.yaml"), nil
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. An empty path means DefaultPath, which may be missing; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q: must be an absolute http(s) URL", c.URL)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.ResponseTimeout <= 0 {
		return fmt.Errorf("response_timeout must be positive, got %s", c.ResponseTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.StabilityThreshold < 1 {
		return fmt.Errorf("stability_threshold must be at least 1, got %d", c.StabilityThreshold)
	}
	for name, d := range map[string]time.Duration{
		"startup_wait": c.StartupWait,
		"grace_period": c.GracePeriod,
		"settle_delay": c.SettleDelay,
		"submit_delay": c.SubmitDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	if c.MinAnswerLength < 0 {
		return fmt.Errorf("min_answer_length must not be negative, got %d", c.MinAnswerLength)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
