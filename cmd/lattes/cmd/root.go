// Package cmd wires the two pipeline stages into the command-line
// interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Ordep1234555/lattes-analysis/internal/config"
	"github.com/Ordep1234555/lattes-analysis/internal/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lattes",
	Short: "Batch pipeline over the Lattes résumé corpus",
	Long: `lattes processes a corpus of zipped Lattes résumés in two stages.

The process stage walks the numbered corpus folders, extracts the XML from
each archive, and appends one JSON line per résumé to the record log,
checkpointing as it goes so an interrupted run resumes where it stopped.

The enrich stage flattens the record log into one row per graduate degree,
infers gender from the first name, resolves regions and capitals, reconciles
knowledge areas, and writes the final parquet and CSV tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.New(cfg.Log.Level, cfg.Log.Pretty)

		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return fmt.Errorf("output dir: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
