package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ordep1234555/lattes-analysis/internal/enrich"
	"github.com/Ordep1234555/lattes-analysis/internal/lattes"
	"github.com/Ordep1234555/lattes-analysis/internal/names"
	"github.com/Ordep1234555/lattes-analysis/internal/pipeline"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich the record log into the final tables",
	Long: `Flatten the record log into one row per graduate degree and enrich
it: gender inferred from the first name against the reference dataset,
birth and institution regions, capital-city detection, knowledge-area
reconciliation and cleanup, and type coercions. Writes the final table as
parquet and CSV, plus the list of first names that could not be
classified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		index, err := names.Load(cfg.Names.ReferenceFile)
		if err != nil {
			// Degraded mode: suffix heuristics only.
			log.Warn().Err(err).Msg("reference dataset unavailable, classifying by suffix only")
			index = names.Index{}
		}

		job := &enrich.Job{
			Log:              log.With().Str("stage", "enrich").Logger(),
			Records:          &lattes.RecordLog{Path: cfg.RecordLogPath()},
			Enricher:         enrich.NewEnricher(index),
			Interval:         cfg.Output.CheckpointInterval,
			ParquetPath:      cfg.ParquetPath(),
			CSVPath:          cfg.CSVPath(),
			UnclassifiedPath: cfg.UnclassifiedPath(),
		}

		return pipeline.New[*lattes.Document, enrich.Record, string](job).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
