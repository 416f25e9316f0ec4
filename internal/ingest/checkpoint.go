package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/Ordep1234555/lattes-analysis/internal/pipeline"
)

// Cursor locates a position in the corpus walk: a folder index and the name
// of the last handled archive within it. An empty File marks the folder as
// fully processed.
//
// Resume rule: with File == "", folders with index <= Folder are skipped
// entirely; with a non-empty File, folders with index < Folder are skipped
// and, inside folder Folder, archives with name <= File are skipped.
// Archive names compare lexicographically, matching the walk's sort order.
type Cursor struct {
	Folder int
	File   string
}

// Checkpoint persists the walk cursor and the cumulative processed count as
// a small JSON file, overwritten atomically on every save.
type Checkpoint struct {
	Path string
}

type checkpointFile struct {
	LastFolder     int    `json:"last_folder"`
	LastFile       string `json:"last_file"`
	ProcessedCount int64  `json:"processed_count"`
	Timestamp      string `json:"timestamp"`
}

// Load returns the last persisted cursor and counters, or (nil, nil, nil)
// when no checkpoint exists yet.
func (c *Checkpoint) Load() (*Cursor, *pipeline.Stats, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("checkpoint: %w", err)
	}

	var f checkpointFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("checkpoint %s: %w", c.Path, err)
	}

	cur := Cursor{Folder: f.LastFolder, File: f.LastFile}
	return &cur, pipeline.NewStats(0, 0, 0, f.ProcessedCount, 0), nil
}

// Save overwrites the persisted state with a fresh timestamp. The write
// goes to a temp file first and is renamed into place, so a crash mid-save
// never leaves a torn checkpoint.
func (c *Checkpoint) Save(cur Cursor, processed int64) error {
	data, err := json.Marshal(checkpointFile{
		LastFolder:     cur.Folder,
		LastFile:       cur.File,
		ProcessedCount: processed,
		Timestamp:      time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}

	tmp := c.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := os.Rename(tmp, c.Path); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}
