package enrich

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// utf8BOM makes the CSV open correctly in spreadsheet tools that sniff the
// encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvHeader is the final column order, shared by both output formats via
// the Record field order.
var csvHeader = []string{
	"numero_identificador", "genero", "data_atualizacao", "uf_nascimento",
	"capital_nascimento", "regiao_nascimento", "pais_nascimento",
	"tipo_formacao", "curso_concluido", "ano_inicio", "ano_conclusao",
	"grande_area", "area", "flag_bolsa", "sigla_instituicao",
	"uf_instituicao", "regiao_instituicao", "pais_instituicao",
}

// WriteParquet writes the final table as a parquet file.
func WriteParquet(path string, rows []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("parquet output: %w", err)
	}

	w := parquet.NewGenericWriter[Record](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("parquet output %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("parquet output %s: %w", path, err)
	}
	return f.Close()
}

// WriteCSV writes the final table as UTF-8 CSV with a BOM. Missing values
// become empty cells.
func WriteCSV(path string, rows []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv output: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("csv output %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("csv output %s: %w", path, err)
	}
	for _, rec := range rows {
		if err := w.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("csv output %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv output %s: %w", path, err)
	}
	return nil
}

// csvRow renders one record in the header's column order.
func csvRow(rec Record) []string {
	return []string{
		rec.ID,
		deref(rec.Gender),
		deref(rec.UpdatedAt),
		deref(rec.BirthState),
		strconv.FormatBool(rec.BirthCapital),
		deref(rec.BirthRegion),
		deref(rec.BirthCountry),
		rec.FormationType,
		strconv.FormatBool(rec.Completed),
		formatYear(rec.StartYear),
		formatYear(rec.EndYear),
		deref(rec.BroadArea),
		deref(rec.Area),
		strconv.FormatBool(rec.Scholarship),
		deref(rec.InstitutionAcronym),
		deref(rec.InstitutionState),
		deref(rec.InstitutionRegion),
		deref(rec.InstitutionCountry),
	}
}

func formatYear(y *int32) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(int(*y))
}

// WriteUnclassified writes the unresolved first-name tokens, one per line,
// sorted for stable diffs between runs.
func WriteUnclassified(path string, tokens map[string]struct{}) error {
	sorted := make([]string, 0, len(tokens))
	for token := range tokens {
		sorted = append(sorted, token)
	}
	sort.Strings(sorted)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unclassified names: %w", err)
	}
	defer f.Close()

	for _, token := range sorted {
		if _, err := fmt.Fprintln(f, token); err != nil {
			return fmt.Errorf("unclassified names %s: %w", path, err)
		}
	}
	return nil
}
