package enrich

import (
	"sort"
	"strings"

	"github.com/Ordep1234555/lattes-analysis/internal/lattes"
)

// Flatten denormalizes one document into one FlatRecord per formation,
// joining the institution and course side tables by code. A document with
// no formations flattens to nothing.
func Flatten(doc *lattes.Document) []FlatRecord {
	rows := make([]FlatRecord, 0, len(doc.Formations))

	for _, form := range doc.Formations {
		row := FlatRecord{
			ID:           doc.ID,
			FullName:     doc.General.FullName,
			BirthCountry: doc.General.BirthCountry,
			BirthState:   doc.General.BirthState,
			BirthCity:    doc.General.BirthCity,
			UpdatedAt:    doc.General.UpdatedAt,

			FormationType:   form.Type,
			InstitutionCode: form.InstitutionCode,
			CourseCode:      form.CourseCode,
			CourseAreaCode:  form.CourseAreaCode,
			Status:          form.Status,
			StartYear:       form.StartYear,
			EndYear:         form.EndYear,
			Scholarship:     form.Scholarship,
		}

		if code := deref(form.InstitutionCode); code != "" {
			if inst, ok := doc.Institutions[code]; ok {
				row.InstitutionAcronym = inst.Acronym
				row.InstitutionState = inst.State
				row.InstitutionCountry = inst.Country
			}
		}
		if code := deref(form.CourseCode); code != "" {
			if course, ok := doc.Courses[code]; ok {
				row.CourseBroadArea = course.BroadArea
				row.CourseArea = course.Area
			}
		}

		row.FormationBroadArea = joinUnique(form.KnowledgeAreas, func(a lattes.KnowledgeArea) *string { return a.BroadArea })
		row.FormationArea = joinUnique(form.KnowledgeAreas, func(a lattes.KnowledgeArea) *string { return a.Area })

		rows = append(rows, row)
	}
	return rows
}

// joinUnique collects one field over the knowledge-area tags, drops empty
// values and duplicates, sorts, and joins with "; ". Nil when nothing
// survives.
func joinUnique(areas []lattes.KnowledgeArea, pick func(lattes.KnowledgeArea) *string) *string {
	seen := map[string]bool{}
	var values []string
	for _, a := range areas {
		v := deref(pick(a))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil
	}
	sort.Strings(values)
	joined := strings.Join(values, "; ")
	return &joined
}
