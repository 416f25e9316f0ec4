package enrich

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Ordep1234555/lattes-analysis/internal/names"
)

// Source-field values coerced to booleans, and the country whose state and
// region fields are meaningful.
const (
	scholarshipYes  = "SIM"
	statusCompleted = "CONCLUIDO"
	homeCountry     = "Brasil"
)

// Enricher turns flat rows into final records and accumulates the first
// names it could not classify. Not safe for concurrent use.
type Enricher struct {
	Index        names.Index
	Unclassified map[string]struct{}
}

// NewEnricher returns an Enricher backed by the given name index.
func NewEnricher(index names.Index) *Enricher {
	return &Enricher{Index: index, Unclassified: map[string]struct{}{}}
}

// Apply runs the full enrichment sequence over one flat row: region
// lookups, area reconciliation and repair, gender inference, boolean and
// date coercions, capital detection, acronym cleanup, blanking of foreign
// state fields, and the final projection.
func (e *Enricher) Apply(flat FlatRecord) Record {
	rec := Record{
		ID:                 flat.ID,
		UpdatedAt:          parseUpdateDate(flat.UpdatedAt),
		BirthState:         flat.BirthState,
		BirthCapital:       IsCapital(flat.BirthState, flat.BirthCity),
		BirthRegion:        Region(flat.BirthState),
		BirthCountry:       flat.BirthCountry,
		FormationType:      flat.FormationType,
		Completed:          deref(flat.Status) == statusCompleted,
		StartYear:          parseYear(flat.StartYear),
		EndYear:            parseYear(flat.EndYear),
		BroadArea:          ReconcileBroadArea(flat.CourseBroadArea, flat.FormationBroadArea),
		Scholarship:        deref(flat.Scholarship) == scholarshipYes,
		InstitutionAcronym: CleanAcronym(flat.InstitutionAcronym),
		InstitutionState:   flat.InstitutionState,
		InstitutionRegion:  Region(flat.InstitutionState),
		InstitutionCountry: flat.InstitutionCountry,
	}

	rec.Area = FixArea(ReconcileArea(flat.CourseArea, flat.FormationArea))

	cls := e.Index.Classify(deref(flat.FullName))
	switch {
	case cls.Category != "":
		category := cls.Category
		rec.Gender = &category
	case cls.Token != "":
		e.Unclassified[cls.Token] = struct{}{}
	}

	// State and region only mean anything inside the home country. A
	// missing institution country blanks too: it cannot be confirmed
	// domestic.
	if deref(flat.InstitutionCountry) != homeCountry {
		rec.InstitutionState = blank()
		rec.InstitutionRegion = blank()
	}
	if deref(flat.BirthCountry) != homeCountry {
		rec.BirthState = blank()
		rec.BirthRegion = blank()
	}

	return rec
}

// parseUpdateDate converts the source's DDMMYYYY stamp to ISO 8601. Nil for
// missing or malformed values.
func parseUpdateDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	t, err := time.Parse("02012006", strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02")
	return &iso
}

// parseYear converts a year field to an integer. Nil for missing or
// non-numeric values.
func parseYear(raw *string) *int32 {
	if raw == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	year := int32(n)
	return &year
}

var nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]`)

// CleanAcronym canonicalizes an institution acronym: decompose and strip
// accents, uppercase, drop literal "%20" fragments left by bad URL
// decoding, then remove everything outside A-Z0-9.
func CleanAcronym(raw *string) *string {
	if raw == nil {
		return nil
	}
	stripped, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), *raw)
	if err != nil {
		stripped = *raw
	}
	s := strings.ToUpper(stripped)
	s = strings.ReplaceAll(s, "Ç", "C")
	s = strings.ReplaceAll(s, "%20", "")
	s = nonAlphanumeric.ReplaceAllString(s, "")
	return &s
}

// blank returns a pointer to the empty string, distinct from nil: the field
// was considered and deliberately cleared.
func blank() *string {
	s := ""
	return &s
}
