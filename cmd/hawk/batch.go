package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/hawk/pkg/executor/headless"
	"github.com/entrhq/hawk/pkg/render"
)

var batchOutputDir string

var batchCmd = &cobra.Command{
	Use:   "batch <questions.yaml>",
	Short: "Ask a list of questions and write the answers to files",
	Long: `Runs every question in the batch file without prompting and writes
transcript.json and transcript.md to the artifact directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		batch, err := headless.LoadConfig(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output") {
			batch.Artifacts.Enabled = true
			batch.Artifacts.OutputDir = batchOutputDir
		}
		cmd.SilenceUsage = true

		a, err := start(cmd.Context(), cfg)
		if errors.Is(err, context.Canceled) {
			fmt.Println("\n👋 Interrupted by user")
			return nil
		}
		if err != nil {
			return err
		}
		defer a.close()

		executor, err := headless.NewExecutor(a.asker, batch,
			headless.WithLogger(a.logger.With("headless")),
			headless.WithProgress(os.Stdout),
		)
		if err != nil {
			return err
		}

		transcript, err := executor.Run(cmd.Context())
		if err != nil {
			if a.interrupted(err) {
				return nil
			}
			return err
		}

		level := render.LevelSuccess
		if transcript.Status != "success" {
			level = render.LevelWarn
		}
		a.term.Status(level, fmt.Sprintf("Batch %s: %d of %d answered",
			transcript.Status, transcript.Metrics.Answered+transcript.Metrics.Fallback, transcript.Metrics.Questions))
		if batch.Artifacts.Enabled {
			a.term.Status(render.LevelInfo, "Artifacts written to "+batch.Artifacts.OutputDir)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutputDir, "output", "o", "", "artifact directory (overrides the batch file)")
	rootCmd.AddCommand(batchCmd)
}
