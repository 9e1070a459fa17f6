package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/hawk/pkg/config"
)

// newTestCommand returns a command with the root flag set, parsed from args.
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	flags.configPath = ""

	cmd := &cobra.Command{Use: "hawk"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.Flags().Parse(args))
	t.Cleanup(func() {
		rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		flags.configPath = ""
	})
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newTestCommand(t))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hawk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("response_timeout: 90s\nspinner: true\n"), 0600))

	cmd := newTestCommand(t, "--config", path, "--timeout", "5s", "--spinner=false", "--url", "https://chat.example.com/")
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ResponseTimeout)
	assert.False(t, cfg.Spinner)
	assert.Equal(t, "https://chat.example.com/", cfg.URL)
}

func TestLoadConfigFileWithoutFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hawk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("response_timeout: 90s\n"), 0600))

	cfg, err := loadConfig(newTestCommand(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.ResponseTimeout)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := loadConfig(newTestCommand(t, "--log-level", "loud"))
	assert.ErrorContains(t, err, "configuration error")
}
