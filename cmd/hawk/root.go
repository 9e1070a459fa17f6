package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/hawk/pkg/config"
)

var flags struct {
	configPath    string
	url           string
	headless      bool
	timeout       time.Duration
	startupWait   time.Duration
	logLevel      string
	copyAnswers   bool
	spinner       bool
	markdownStyle string
}

var rootCmd = &cobra.Command{
	Use:     "hawk",
	Short:   "hawk - ask a browser chat assistant from the terminal",
	Long:    `hawk drives a chat web app in a browser, waits for each answer to settle and renders it in the terminal. Comparison questions are answered as tables.`,
	Version: version,
	Args:    cobra.NoArgs,

	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return run(cmd.Context(), cfg)
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&flags.configPath, "config", "c", "", "path to config file (default ~/.hawk/config.yaml)")
	f.StringVar(&flags.url, "url", config.DefaultURL, "chat application URL")
	f.BoolVar(&flags.headless, "headless", true, "run the browser without a window")
	f.DurationVarP(&flags.timeout, "timeout", "t", 60*time.Second, "how long to wait for an answer to settle")
	f.DurationVar(&flags.startupWait, "startup-wait", 20*time.Second, "how long to let the app initialize after loading")
	f.StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.BoolVar(&flags.copyAnswers, "copy", false, "copy each answer to the clipboard")
	f.BoolVar(&flags.spinner, "spinner", true, "animate a spinner while waiting")
	f.StringVar(&flags.markdownStyle, "markdown-style", "dark", `glamour style for text answers, or "none"`)
}

// loadConfig reads file and environment settings, then applies the flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("url") {
		cfg.URL = flags.url
	}
	if f.Changed("headless") {
		cfg.Headless = flags.headless
	}
	if f.Changed("timeout") {
		cfg.ResponseTimeout = flags.timeout
	}
	if f.Changed("startup-wait") {
		cfg.StartupWait = flags.startupWait
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("copy") {
		cfg.CopyAnswers = flags.copyAnswers
	}
	if f.Changed("spinner") {
		cfg.Spinner = flags.spinner
	}
	if f.Changed("markdown-style") {
		cfg.MarkdownStyle = flags.markdownStyle
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}
