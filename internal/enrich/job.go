package enrich

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ordep1234555/lattes-analysis/internal/lattes"
	"github.com/Ordep1234555/lattes-analysis/internal/pipeline"
)

// Job reads the record log, expands each document into per-formation rows,
// enriches them, and writes the final parquet and CSV tables in one pass.
// The whole table is held in memory until the end of the run, the same
// trade-off the columnar output formats impose anyway.
type Job struct {
	Log      zerolog.Logger
	Records  *lattes.RecordLog
	Enricher *Enricher
	Interval int

	ParquetPath      string
	CSVPath          string
	UnclassifiedPath string

	start time.Time
	seen  map[string]bool
	rows  []Record
}

var (
	_ pipeline.Job[*lattes.Document, Record, string] = (*Job)(nil)
	_ pipeline.Expander[*lattes.Document, Record]    = (*Job)(nil)
	_ pipeline.Filter[*lattes.Document]              = (*Job)(nil)
	_ pipeline.ErrorHandler                          = (*Job)(nil)
	_ pipeline.ProgressReporter                      = (*Job)(nil)
	_ pipeline.Starter                               = (*Job)(nil)
	_ pipeline.Stopper                               = (*Job)(nil)
)

// Extract yields parsed documents from the record log in file order.
func (j *Job) Extract(_ context.Context, _ *string) iter.Seq2[*lattes.Document, error] {
	return j.Records.All()
}

// Include drops repeated document IDs. An interrupted ingest run can leave
// a handful of duplicate lines in the record log; the first occurrence
// wins.
func (j *Job) Include(doc *lattes.Document) bool {
	if j.seen[doc.ID] {
		j.Log.Debug().Str("id", doc.ID).Msg("duplicate record log line, skipping")
		return false
	}
	j.seen[doc.ID] = true
	return true
}

// Expand flattens one document into enriched per-formation rows.
func (j *Job) Expand(_ context.Context, doc *lattes.Document) ([]Record, error) {
	flat := Flatten(doc)
	rows := make([]Record, len(flat))
	for i, fr := range flat {
		rows[i] = j.Enricher.Apply(fr)
	}
	return rows, nil
}

// Load accumulates rows for the end-of-run table writes.
func (j *Job) Load(_ context.Context, batch []Record) error {
	j.rows = append(j.rows, batch...)
	return nil
}

// OnError skips undecodable record-log lines but fails the run when the
// record log itself cannot be read.
func (j *Job) OnError(_ context.Context, stage pipeline.Stage, err error) pipeline.Action {
	if stage == pipeline.StageExtract && !errors.Is(err, fs.ErrNotExist) {
		j.Log.Warn().Err(err).Msg("skipping bad record log line")
		return pipeline.ActionSkip
	}
	j.Log.Error().Err(err).Str("stage", string(stage)).Msg("enrichment failed")
	return pipeline.ActionFail
}

// ReportInterval reports progress every Interval loaded rows.
func (j *Job) ReportInterval() int { return j.Interval }

// OnProgress logs row throughput.
func (j *Job) OnProgress(_ context.Context, stats *pipeline.Stats) {
	elapsed := time.Since(j.start).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(stats.Loaded()) / elapsed
	}
	j.Log.Info().
		Int64("documents", stats.Transformed()).
		Int64("rows", stats.Loaded()).
		Float64("rows_per_s", rate).
		Msg("progress")
}

// Start resets the per-run state.
func (j *Job) Start(ctx context.Context) context.Context {
	j.start = time.Now()
	j.seen = map[string]bool{}
	j.rows = nil
	j.Log.Info().Str("record_log", j.Records.Path).Msg("enriching record log")
	return ctx
}

// Stop writes the output tables and the unclassified-names file, then logs
// the run's distribution summary. Nothing is written after a failed run.
func (j *Job) Stop(_ context.Context, stats *pipeline.Stats, runErr error) {
	if runErr != nil {
		j.Log.Error().Err(runErr).Object("stats", stats).Msg("enrichment aborted")
		return
	}

	if err := WriteParquet(j.ParquetPath, j.rows); err != nil {
		j.Log.Error().Err(err).Msg("cannot write parquet output")
		return
	}
	if err := WriteCSV(j.CSVPath, j.rows); err != nil {
		j.Log.Error().Err(err).Msg("cannot write csv output")
		return
	}
	if len(j.Enricher.Unclassified) > 0 {
		if err := WriteUnclassified(j.UnclassifiedPath, j.Enricher.Unclassified); err != nil {
			j.Log.Error().Err(err).Msg("cannot write unclassified names")
		}
	}

	j.logSummary(stats)
}

// logSummary reports the distributions a run is usually judged by: gender
// split, birth regions, and the capital-born share.
func (j *Job) logSummary(stats *pipeline.Stats) {
	genders := map[string]int{}
	regions := map[string]int{}
	capitals, scholarships, undetermined := 0, 0, 0
	for _, rec := range j.rows {
		if rec.Gender == nil {
			undetermined++
		} else {
			genders[*rec.Gender]++
		}
		if r := deref(rec.BirthRegion); r != "" {
			regions[r]++
		}
		if rec.BirthCapital {
			capitals++
		}
		if rec.Scholarship {
			scholarships++
		}
	}

	pct := func(n int) float64 {
		if len(j.rows) == 0 {
			return 0
		}
		return float64(n) / float64(len(j.rows)) * 100
	}

	j.Log.Info().
		Object("stats", stats).
		Int("rows", len(j.rows)).
		Interface("gender_counts", genders).
		Float64("gender_undetermined_pct", pct(undetermined)).
		Interface("birth_region_counts", regions).
		Int("scholarships", scholarships).
		Float64("capital_born_pct", pct(capitals)).
		Int("unclassified_names", len(j.Enricher.Unclassified)).
		Dur("elapsed", time.Since(j.start)).
		Msg("enrichment finished")
}
