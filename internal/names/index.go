package names

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Index maps a normalized first-name token to its gender category code.
// An empty Index is valid: lookups miss and classification degrades to the
// suffix heuristics.
type Index map[string]string

// candidateEncodings are tried in order when reading the reference dataset.
// A nil encoding means plain UTF-8.
var candidateEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", nil},
	{"iso-8859-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
}

// Load reads the reference dataset and builds the index in two passes over
// the rows, in file order:
//
//  1. Primary names: index[name] = category. A repeated primary name is
//     overwritten, so the last row wins.
//  2. Pipe-delimited variants: a variant is inserted only if it is not a
//     primary name and not already present, so the first row carrying a
//     variant wins and primaries are never overwritten.
//
// Building twice from the same file yields an identical index.
func Load(path string) (Index, error) {
	rows, err := readReference(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reference dataset %s: empty file", path)
	}

	nameCol, classCol, variantsCol, err := locateColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("reference dataset %s: %w", path, err)
	}
	rows = rows[1:]

	idx := Index{}
	primaries := map[string]bool{}

	for _, row := range rows {
		name := Normalize(field(row, nameCol))
		if name == "" {
			continue
		}
		category := strings.ToUpper(strings.TrimSpace(field(row, classCol)))
		idx[name] = category
		primaries[name] = true
	}

	for _, row := range rows {
		category := strings.ToUpper(strings.TrimSpace(field(row, classCol)))
		for _, variant := range strings.Split(field(row, variantsCol), "|") {
			v := Normalize(variant)
			if v == "" || primaries[v] {
				continue
			}
			if _, exists := idx[v]; exists {
				continue
			}
			idx[v] = category
		}
	}

	return idx, nil
}

// readReference reads the whole file and decodes it with the first
// candidate encoding that yields valid text and parseable CSV.
func readReference(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reference dataset: %w", err)
	}

	var lastErr error
	for _, cand := range candidateEncodings {
		decoded := data
		if cand.enc != nil {
			decoded, err = cand.enc.NewDecoder().Bytes(data)
			if err != nil {
				lastErr = fmt.Errorf("%s: %w", cand.name, err)
				continue
			}
		} else if !utf8.Valid(data) {
			lastErr = fmt.Errorf("%s: invalid byte sequence", cand.name)
			continue
		}

		r := csv.NewReader(bytes.NewReader(decoded))
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", cand.name, err)
			continue
		}
		return rows, nil
	}
	return nil, fmt.Errorf("reference dataset %s unreadable in any candidate encoding: %w", path, lastErr)
}

// locateColumns finds the required header columns by name.
func locateColumns(header []string) (name, class, variants int, err error) {
	name, class, variants = -1, -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "name":
			name = i
		case "classification":
			class = i
		case "names":
			variants = i
		}
	}
	var missing []string
	if name < 0 {
		missing = append(missing, "name")
	}
	if class < 0 {
		missing = append(missing, "classification")
	}
	if variants < 0 {
		missing = append(missing, "names")
	}
	if len(missing) > 0 {
		return 0, 0, 0, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return name, class, variants, nil
}

// field returns row[i], tolerating short rows.
func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
