package lattes

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"os"
)

// RecordLog is the append-only NDJSON store of parsed documents, one
// document per line, UTF-8 with non-ASCII characters emitted literally.
type RecordLog struct {
	Path string
}

// Append writes each document as one JSON line. The file is opened and
// closed per call, so an interrupt between batches leaves it consistent and
// resumable.
func (l *RecordLog) Append(docs []*Document) error {
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("record log: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			f.Close()
			return fmt.Errorf("record log: encode %s: %w", d.ID, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("record log: %w", err)
	}
	return nil
}

// All yields documents in file order. A line that fails to decode is
// yielded as an error and iteration continues with the next line; an open
// or read failure is yielded once and ends the iteration.
func (l *RecordLog) All() iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		f, err := os.Open(l.Path)
		if err != nil {
			yield(nil, fmt.Errorf("record log: %w", err))
			return
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		line := 0
		for sc.Scan() {
			line++
			raw := bytes.TrimSpace(sc.Bytes())
			if len(raw) == 0 {
				continue
			}
			var doc Document
			if err := json.Unmarshal(raw, &doc); err != nil {
				if !yield(nil, fmt.Errorf("record log: line %d: %w", line, err)) {
					return
				}
				continue
			}
			if !yield(&doc, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(nil, fmt.Errorf("record log: %w", err))
		}
	}
}
