package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ordep1234555/lattes-analysis/internal/ingest"
	"github.com/Ordep1234555/lattes-analysis/internal/lattes"
	"github.com/Ordep1234555/lattes-analysis/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Walk the corpus and build the record log",
	Long: `Walk the numbered corpus folders, extract and parse the XML inside
each zip archive, and append one JSON line per résumé to the record log.

Progress is checkpointed, so the command can be interrupted and rerun; it
picks up after the last saved position. Unreadable archives are logged to
the error log and skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		job := &ingest.Job{
			BasePath:   cfg.Corpus.BasePath,
			MaxFolders: cfg.Corpus.MaxFolders,
			Interval:   cfg.Output.CheckpointInterval,
			Log:        log.With().Str("stage", "process").Logger(),
			Checkpoint: &ingest.Checkpoint{Path: cfg.CheckpointPath()},
			Records:    &lattes.RecordLog{Path: cfg.RecordLogPath()},
			ErrorLog:   cfg.ErrorLogPath(),
			StatsPath:  cfg.StatisticsPath(),
		}

		return pipeline.New[ingest.Item, *lattes.Document, ingest.Cursor](job).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
