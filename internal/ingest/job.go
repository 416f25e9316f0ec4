// Package ingest implements the resumable corpus walk: every zipped résumé
// in the folder tree becomes one record-log line, with a durable checkpoint
// so an interrupted run picks up where it stopped.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ordep1234555/lattes-analysis/internal/lattes"
	"github.com/Ordep1234555/lattes-analysis/internal/pipeline"
)

// Item is one corpus archive scheduled for processing. A folder-end marker
// carries an empty Name: it is filtered out of processing and exists only
// to advance the cursor to the folder-completion checkpoint.
type Item struct {
	Folder int
	Name   string
	Path   string
}

// Job walks the corpus folders in order and turns each zipped résumé into
// one record-log line. Per-item failures (unreadable archive, malformed
// XML) are logged and counted, never fatal; record-log write failures stop
// the run, which is safe to restart thanks to the checkpoint.
type Job struct {
	BasePath   string
	MaxFolders int
	Interval   int

	Log        zerolog.Logger
	Checkpoint *Checkpoint
	Records    *lattes.RecordLog
	ErrorLog   string
	StatsPath  string

	start       time.Time
	folderTotal int // archives in the folder currently being walked
	folderDone  int // archives of that folder already yielded or skipped
}

var (
	_ pipeline.Job[Item, *lattes.Document, Cursor]  = (*Job)(nil)
	_ pipeline.Transformer[Item, *lattes.Document] = (*Job)(nil)
	_ pipeline.Filter[Item]                        = (*Job)(nil)
	_ pipeline.Barrier[Item]                       = (*Job)(nil)
	_ pipeline.Checkpointer[Item, Cursor]          = (*Job)(nil)
	_ pipeline.ErrorHandler                        = (*Job)(nil)
	_ pipeline.ProgressReporter                    = (*Job)(nil)
	_ pipeline.Starter                             = (*Job)(nil)
	_ pipeline.Stopper                             = (*Job)(nil)
)

// Extract yields archives folder by folder, each folder's listing sorted
// lexicographically. Resumption correctness depends on that sort being
// identical across runs. Missing folders are skipped, not errors.
func (j *Job) Extract(_ context.Context, cursor *Cursor) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		cur := Cursor{Folder: -1}
		if cursor != nil {
			cur = *cursor
		}

		for folder := 0; folder < j.MaxFolders; folder++ {
			if folder < cur.Folder || (folder == cur.Folder && cur.File == "") {
				continue
			}

			name := fmt.Sprintf("%02d", folder)
			dir := filepath.Join(j.BasePath, name)

			entries, err := os.ReadDir(dir)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					j.Log.Debug().Str("folder", name).Msg("folder missing, skipping")
					continue
				}
				if !yield(Item{}, fmt.Errorf("list folder %s: %w", dir, err)) {
					return
				}
				continue
			}

			files := make([]string, 0, len(entries))
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".zip") {
					files = append(files, e.Name())
				}
			}
			sort.Strings(files)

			j.folderTotal = len(files)
			j.folderDone = 0

			for _, f := range files {
				j.folderDone++
				if folder == cur.Folder && f <= cur.File {
					continue
				}
				if !yield(Item{Folder: folder, Name: f, Path: filepath.Join(dir, f)}, nil) {
					return
				}
			}

			// Folder-end marker; forces the folder-completion checkpoint.
			if !yield(Item{Folder: folder}, nil) {
				return
			}
		}
	}
}

// Include excludes folder-end markers from processing.
func (j *Job) Include(it Item) bool { return it.Name != "" }

// Barrier ends the epoch at folder boundaries so the completion cursor
// {folder, ""} is persisted immediately.
func (j *Job) Barrier(it Item) bool { return it.Name == "" }

// Transform extracts the XML from one archive and parses it.
func (j *Job) Transform(_ context.Context, it Item) (*lattes.Document, error) {
	data, err := lattes.ExtractXML(it.Path)
	if err != nil {
		return nil, err
	}
	doc, err := lattes.Parse(data, it.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", it.Path, err)
	}
	return doc, nil
}

// Load appends parsed documents to the record log.
func (j *Job) Load(_ context.Context, batch []*lattes.Document) error {
	return j.Records.Append(batch)
}

// CheckpointInterval returns how many archives to handle per epoch.
func (j *Job) CheckpointInterval() int { return j.Interval }

// Cursor returns the checkpoint cursor for an item. Folder-end markers map
// to {folder, ""}, the folder-completion cursor.
func (j *Job) Cursor(it Item) Cursor { return Cursor{Folder: it.Folder, File: it.Name} }

// LoadCheckpoint restores the persisted cursor and processed count.
func (j *Job) LoadCheckpoint(_ context.Context) (*Cursor, *pipeline.Stats, error) {
	return j.Checkpoint.Load()
}

// SaveCheckpoint persists the cursor and the cumulative processed count.
func (j *Job) SaveCheckpoint(_ context.Context, cur Cursor, stats *pipeline.Stats) error {
	return j.Checkpoint.Save(cur, stats.Loaded())
}

// OnError records per-item failures in the error log and skips them.
// Record-log write failures are fatal; re-running is safe.
func (j *Job) OnError(_ context.Context, stage pipeline.Stage, err error) pipeline.Action {
	if stage == pipeline.StageLoad {
		j.Log.Error().Err(err).Msg("record log write failed")
		return pipeline.ActionFail
	}
	j.logError(err.Error())
	j.Log.Warn().Err(err).Str("stage", string(stage)).Msg("skipping archive")
	return pipeline.ActionSkip
}

// logError appends one timestamped line to the plain-text error log.
func (j *Job) logError(msg string) {
	f, err := os.OpenFile(j.ErrorLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		j.Log.Error().Err(err).Msg("cannot append to error log")
		return
	}
	fmt.Fprintf(f, "[%s] %s\n", time.Now().Format(time.RFC3339), msg)
	f.Close()
}

// ReportInterval reports progress at the same cadence as checkpoint saves.
func (j *Job) ReportInterval() int { return j.Interval }

// OnProgress logs throughput and a remaining-time estimate for the folder
// being walked.
func (j *Job) OnProgress(_ context.Context, stats *pipeline.Stats) {
	elapsed := time.Since(j.start).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(stats.Loaded()) / elapsed
	}

	remaining := j.folderTotal - j.folderDone
	var eta time.Duration
	if rate > 0 {
		eta = time.Duration(float64(remaining) / rate * float64(time.Second))
	}

	j.Log.Info().
		Int64("processed", stats.Loaded()).
		Int64("errors", stats.Errors()).
		Float64("rate_per_s", rate).
		Int("remaining_in_folder", remaining).
		Dur("eta", eta).
		Msg("progress")
}

// Start stamps the run start time used by throughput reporting.
func (j *Job) Start(ctx context.Context) context.Context {
	j.start = time.Now()
	j.Log.Info().
		Str("base_path", j.BasePath).
		Int("max_folders", j.MaxFolders).
		Msg("processing corpus")
	return ctx
}

// runStats is the statistics file written at run end.
type runStats struct {
	ProcessedCount int64   `json:"processed_count"`
	ErrorCount     int64   `json:"error_count"`
	TotalTimeHours float64 `json:"total_time_hours"`
	RatePerSecond  float64 `json:"rate_per_second"`
	CompletionDate string  `json:"completion_date"`
}

// Stop logs the final summary and, on a clean finish, writes the
// statistics file.
func (j *Job) Stop(_ context.Context, stats *pipeline.Stats, runErr error) {
	elapsed := time.Since(j.start)

	event := j.Log.Info()
	if runErr != nil {
		event = j.Log.Error().Err(runErr)
	}
	event.
		Object("stats", stats).
		Dur("elapsed", elapsed).
		Msg("processing finished")

	if runErr != nil {
		return
	}

	var rate float64
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(stats.Loaded()) / secs
	}
	data, err := json.MarshalIndent(runStats{
		ProcessedCount: stats.Loaded(),
		ErrorCount:     stats.Errors(),
		TotalTimeHours: elapsed.Hours(),
		RatePerSecond:  rate,
		CompletionDate: time.Now().Format(time.RFC3339),
	}, "", "  ")
	if err == nil {
		err = os.WriteFile(j.StatsPath, data, 0o644)
	}
	if err != nil {
		j.Log.Error().Err(err).Msg("cannot write statistics file")
	}
}
