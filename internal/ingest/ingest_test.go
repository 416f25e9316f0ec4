package ingest_test

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Ordep1234555/lattes-analysis/internal/ingest"
	"github.com/Ordep1234555/lattes-analysis/internal/lattes"
	"github.com/Ordep1234555/lattes-analysis/internal/pipeline"
)

func TestCheckpointRoundTrip(t *testing.T) {
	cp := &ingest.Checkpoint{Path: filepath.Join(t.TempDir(), "checkpoint.json")}

	require.NoError(t, cp.Save(ingest.Cursor{Folder: 2, File: "0005.zip"}, 125))

	cur, stats, err := cp.Load()
	require.NoError(t, err)
	require.Equal(t, &ingest.Cursor{Folder: 2, File: "0005.zip"}, cur)
	require.Equal(t, int64(125), stats.Loaded())
}

func TestCheckpointMissingFile(t *testing.T) {
	cp := &ingest.Checkpoint{Path: filepath.Join(t.TempDir(), "absent.json")}

	cur, stats, err := cp.Load()
	require.NoError(t, err)
	require.Nil(t, cur)
	require.Nil(t, stats)
}

func TestCheckpointFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	cp := &ingest.Checkpoint{Path: path}

	require.NoError(t, cp.Save(ingest.Cursor{Folder: 1, File: ""}, 40))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, float64(1), decoded["last_folder"])
	require.Equal(t, "", decoded["last_file"])
	require.Equal(t, float64(40), decoded["processed_count"])
	require.NotEmpty(t, decoded["timestamp"])
}

// writeCorpus lays out numbered folders with one minimal zip archive per
// listed name.
func writeCorpus(t *testing.T, base string, folders map[string][]string) {
	t.Helper()
	for folder, archives := range folders {
		dir := filepath.Join(base, folder)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for _, name := range archives {
			writeArchive(t, filepath.Join(dir, name))
		}
	}
}

func writeArchive(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	mw, err := w.Create("curriculo.xml")
	require.NoError(t, err)
	_, err = mw.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><CURRICULO-VITAE><DADOS-GERAIS NOME-COMPLETO="Ana"/></CURRICULO-VITAE>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func extractNames(t *testing.T, job *ingest.Job, cursor *ingest.Cursor) []string {
	t.Helper()
	var got []string
	for item, err := range job.Extract(context.Background(), cursor) {
		require.NoError(t, err)
		if item.Name != "" {
			got = append(got, item.Name)
		}
	}
	return got
}

func TestExtractWalksFoldersInOrder(t *testing.T) {
	base := t.TempDir()
	writeCorpus(t, base, map[string][]string{
		"00": {"0002.zip", "0001.zip"},
		"01": {"0003.zip"},
	})

	job := &ingest.Job{BasePath: base, MaxFolders: 3, Log: zerolog.Nop()}

	got := extractNames(t, job, nil)
	require.Equal(t, []string{"0001.zip", "0002.zip", "0003.zip"}, got)
}

func TestExtractSkipsMissingFolders(t *testing.T) {
	base := t.TempDir()
	writeCorpus(t, base, map[string][]string{"02": {"0001.zip"}})

	job := &ingest.Job{BasePath: base, MaxFolders: 5, Log: zerolog.Nop()}

	got := extractNames(t, job, nil)
	require.Equal(t, []string{"0001.zip"}, got)
}

func TestExtractResumesMidFolder(t *testing.T) {
	base := t.TempDir()
	writeCorpus(t, base, map[string][]string{
		"01": {"0001.zip"},
		"02": {"0004.zip", "0005.zip", "0006.zip"},
		"03": {"0007.zip"},
	})

	job := &ingest.Job{BasePath: base, MaxFolders: 5, Log: zerolog.Nop()}

	// Mid-folder cursor: folders before 2 are done, and within folder 2
	// everything up to and including 0005.zip is done.
	got := extractNames(t, job, &ingest.Cursor{Folder: 2, File: "0005.zip"})
	require.Equal(t, []string{"0006.zip", "0007.zip"}, got)
}

func TestExtractResumesAfterCompletedFolder(t *testing.T) {
	base := t.TempDir()
	writeCorpus(t, base, map[string][]string{
		"01": {"0001.zip"},
		"02": {"0002.zip"},
	})

	job := &ingest.Job{BasePath: base, MaxFolders: 5, Log: zerolog.Nop()}

	// Folder-completion cursor: folder 1 and everything before it is done.
	got := extractNames(t, job, &ingest.Cursor{Folder: 1, File: ""})
	require.Equal(t, []string{"0002.zip"}, got)
}

func TestExtractYieldsFolderEndMarkers(t *testing.T) {
	base := t.TempDir()
	writeCorpus(t, base, map[string][]string{"00": {"0001.zip"}})

	job := &ingest.Job{BasePath: base, MaxFolders: 1, Log: zerolog.Nop()}

	var items []ingest.Item
	for item, err := range job.Extract(context.Background(), nil) {
		require.NoError(t, err)
		items = append(items, item)
	}
	require.Len(t, items, 2)
	require.Equal(t, "0001.zip", items[0].Name)

	marker := items[1]
	require.Equal(t, "", marker.Name)
	require.Equal(t, 0, marker.Folder)
	require.False(t, job.Include(marker))
	require.True(t, job.Barrier(marker))
	require.Equal(t, ingest.Cursor{Folder: 0, File: ""}, job.Cursor(marker))
}

func TestIngestEndToEnd(t *testing.T) {
	base := t.TempDir()
	out := t.TempDir()
	writeCorpus(t, base, map[string][]string{
		"00": {"0001.zip", "0002.zip"},
		"01": {"0003.zip"},
	})

	job := &ingest.Job{
		BasePath:   base,
		MaxFolders: 2,
		Interval:   10,
		Log:        zerolog.Nop(),
		Checkpoint: &ingest.Checkpoint{Path: filepath.Join(out, "checkpoint.json")},
		Records:    &lattes.RecordLog{Path: filepath.Join(out, "data.jsonl")},
		ErrorLog:   filepath.Join(out, "errors.log"),
		StatsPath:  filepath.Join(out, "statistics.json"),
	}

	err := pipeline.New[ingest.Item, *lattes.Document, ingest.Cursor](job).Run(context.Background())
	require.NoError(t, err)

	var ids []string
	for doc, err := range job.Records.All() {
		require.NoError(t, err)
		ids = append(ids, doc.ID)
	}
	require.Equal(t, []string{"0001", "0002", "0003"}, ids)

	// The final checkpoint marks the last folder as completed.
	cur, stats, err := job.Checkpoint.Load()
	require.NoError(t, err)
	require.Equal(t, &ingest.Cursor{Folder: 1, File: ""}, cur)
	require.Equal(t, int64(3), stats.Loaded())

	raw, err := os.ReadFile(job.StatsPath)
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(raw, &summary))
	require.Equal(t, float64(3), summary["processed_count"])
}

func TestIngestRerunAddsNothing(t *testing.T) {
	base := t.TempDir()
	out := t.TempDir()
	writeCorpus(t, base, map[string][]string{"00": {"0001.zip"}})

	job := &ingest.Job{
		BasePath:   base,
		MaxFolders: 1,
		Interval:   10,
		Log:        zerolog.Nop(),
		Checkpoint: &ingest.Checkpoint{Path: filepath.Join(out, "checkpoint.json")},
		Records:    &lattes.RecordLog{Path: filepath.Join(out, "data.jsonl")},
		ErrorLog:   filepath.Join(out, "errors.log"),
		StatsPath:  filepath.Join(out, "statistics.json"),
	}

	for range 2 {
		err := pipeline.New[ingest.Item, *lattes.Document, ingest.Cursor](job).Run(context.Background())
		require.NoError(t, err)
	}

	var count int
	for _, err := range job.Records.All() {
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 1, count)
}

func TestIngestSkipsCorruptArchive(t *testing.T) {
	base := t.TempDir()
	out := t.TempDir()
	writeCorpus(t, base, map[string][]string{"00": {"0002.zip"}})
	require.NoError(t, os.WriteFile(filepath.Join(base, "00", "0001.zip"), []byte("not a zip"), 0o644))

	job := &ingest.Job{
		BasePath:   base,
		MaxFolders: 1,
		Interval:   10,
		Log:        zerolog.Nop(),
		Checkpoint: &ingest.Checkpoint{Path: filepath.Join(out, "checkpoint.json")},
		Records:    &lattes.RecordLog{Path: filepath.Join(out, "data.jsonl")},
		ErrorLog:   filepath.Join(out, "errors.log"),
		StatsPath:  filepath.Join(out, "statistics.json"),
	}

	err := pipeline.New[ingest.Item, *lattes.Document, ingest.Cursor](job).Run(context.Background())
	require.NoError(t, err)

	var ids []string
	for doc, derr := range job.Records.All() {
		require.NoError(t, derr)
		ids = append(ids, doc.ID)
	}
	require.Equal(t, []string{"0002"}, ids)

	errLog, err := os.ReadFile(job.ErrorLog)
	require.NoError(t, err)
	require.Contains(t, string(errLog), "0001.zip")
}
