package enrich_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ordep1234555/lattes-analysis/internal/enrich"
	"github.com/Ordep1234555/lattes-analysis/internal/lattes"
	"github.com/Ordep1234555/lattes-analysis/internal/names"
)

func strptr(s string) *string { return &s }

func TestReconcileBroadArea(t *testing.T) {
	tests := []struct {
		name      string
		catalog   *string
		formation *string
		want      *string
	}{
		{"catalog wins", strptr("Engenharias"), strptr("Outras"), strptr("Engenharias")},
		{"empty catalog falls back", nil, strptr("Engenharias"), strptr("Engenharias")},
		{"blank catalog falls back", strptr("  "), strptr("Engenharias"), strptr("Engenharias")},
		{"both empty", nil, nil, nil},
		{"sentinel filtered", strptr("OUTROS"), strptr("Engenharias; Outros"), strptr("Engenharias")},
		{"sentinel no survivors", strptr("OUTROS"), strptr("Outros"), strptr("Outros")},
		{"sentinel no fallback", strptr("OUTROS"), nil, strptr("OUTROS")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enrich.ReconcileBroadArea(tt.catalog, tt.formation)
			if tt.want == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, *tt.want, *got)
		})
	}
}

func TestReconcileArea(t *testing.T) {
	tests := []struct {
		name      string
		catalog   *string
		formation *string
		want      *string
	}{
		{"generic filtered", strptr("MULTIDISCIPLINAR"), strptr("Física; Multidisciplinar; Química"), strptr("Física; Química")},
		{"generic no survivors", strptr("MULTIDISCIPLINAR"), strptr("Multidisciplinar"), strptr("Multidisciplinar")},
		{"empty catalog falls back", strptr(""), strptr("Física"), strptr("Física")},
		{"substring match", strptr("Saúde Coletiva; Administração Hospitalar"), strptr("Medicina"), strptr("Medicina")},
		{"specific catalog wins", strptr("Física"), strptr("Química"), strptr("Física")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enrich.ReconcileArea(tt.catalog, tt.formation)
			require.NotNil(t, got)
			require.Equal(t, *tt.want, *got)
		})
	}
}

func TestRegion(t *testing.T) {
	require.Equal(t, "Sudeste", *enrich.Region(strptr("SP")))
	require.Equal(t, "Sul", *enrich.Region(strptr(" rs ")))
	require.Equal(t, "Centro-Oeste", *enrich.Region(strptr("DF")))
	require.Nil(t, enrich.Region(strptr("XX")))
	require.Nil(t, enrich.Region(nil))
}

func TestIsCapital(t *testing.T) {
	require.True(t, enrich.IsCapital(strptr("SP"), strptr("São Paulo")))
	require.True(t, enrich.IsCapital(strptr("sp"), strptr("SAO PAULO")))
	require.False(t, enrich.IsCapital(strptr("SP"), strptr("Campinas")))
	require.False(t, enrich.IsCapital(strptr("SP"), nil))
	require.False(t, enrich.IsCapital(nil, strptr("São Paulo")))
}

func TestCleanAcronym(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"usp", "USP"},
		{"Fundação%20Getúlio", "FUNDACAOGETULIO"},
		{"U.F.R.J.", "UFRJ"},
		{"ufc-ce", "UFCCE"},
	}
	for _, tt := range tests {
		got := enrich.CleanAcronym(strptr(tt.in))
		require.NotNil(t, got)
		require.Equal(t, tt.want, *got)
	}
	require.Nil(t, enrich.CleanAcronym(nil))
}

func TestFixArea(t *testing.T) {
	require.Equal(t, "Linguística", *enrich.FixArea(strptr("Ling&uuml;&iacute;stica")))
	require.Equal(t, "Engenharia de Energia", *enrich.FixArea(strptr("Energia")))
	require.Equal(t, "Física", *enrich.FixArea(strptr("Física")))
	require.Nil(t, enrich.FixArea(nil))
}

func TestFlatten(t *testing.T) {
	doc := &lattes.Document{
		ID: "42",
		General: lattes.GeneralData{
			FullName:   strptr("Maria"),
			BirthState: strptr("SP"),
		},
		Formations: []lattes.Formation{
			{
				Type:            lattes.FormationMasters,
				InstitutionCode: strptr("7"),
				CourseCode:      strptr("9"),
				KnowledgeAreas: []lattes.KnowledgeArea{
					{BroadArea: strptr("Exatas"), Area: strptr("Química")},
					{BroadArea: strptr("Exatas"), Area: strptr("Física")},
					{BroadArea: nil, Area: strptr("Química")},
				},
			},
			{
				Type:           lattes.FormationDoctorate,
				KnowledgeAreas: []lattes.KnowledgeArea{},
			},
		},
		Institutions: map[string]lattes.Institution{
			"7": {Acronym: strptr("USP"), State: strptr("SP"), Country: strptr("Brasil")},
		},
		Courses: map[string]lattes.Course{
			"9": {BroadArea: strptr("Exatas"), Area: strptr("Física")},
		},
	}

	rows := enrich.Flatten(doc)
	require.Len(t, rows, 2)

	first := rows[0]
	require.Equal(t, "42", first.ID)
	require.Equal(t, lattes.FormationMasters, first.FormationType)
	require.Equal(t, "USP", *first.InstitutionAcronym)
	require.Equal(t, "Exatas", *first.CourseBroadArea)
	// Dedup, sort, join.
	require.Equal(t, "Exatas", *first.FormationBroadArea)
	require.Equal(t, "Física; Química", *first.FormationArea)

	second := rows[1]
	require.Nil(t, second.InstitutionAcronym)
	require.Nil(t, second.FormationBroadArea)
	require.Nil(t, second.FormationArea)
}

func TestFlattenUnknownCodes(t *testing.T) {
	doc := &lattes.Document{
		ID: "1",
		Formations: []lattes.Formation{{
			Type:            lattes.FormationMasters,
			InstitutionCode: strptr("404"),
			CourseCode:      strptr("404"),
		}},
		Institutions: map[string]lattes.Institution{},
		Courses:      map[string]lattes.Course{},
	}

	rows := enrich.Flatten(doc)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].InstitutionAcronym)
	require.Nil(t, rows[0].CourseArea)
}

func TestFlattenNoFormations(t *testing.T) {
	require.Empty(t, enrich.Flatten(&lattes.Document{ID: "1"}))
}

func TestApplyFullRow(t *testing.T) {
	e := enrich.NewEnricher(names.Index{"MARIA": "F"})

	rec := e.Apply(enrich.FlatRecord{
		ID:                 "42",
		FullName:           strptr("Maria José"),
		BirthCountry:       strptr("Brasil"),
		BirthState:         strptr("SP"),
		BirthCity:          strptr("São Paulo"),
		UpdatedAt:          strptr("05032024"),
		FormationType:      lattes.FormationMasters,
		Status:             strptr("CONCLUIDO"),
		StartYear:          strptr("2001"),
		EndYear:            strptr("2003"),
		Scholarship:        strptr("SIM"),
		InstitutionAcronym: strptr("usp"),
		InstitutionState:   strptr("SP"),
		InstitutionCountry: strptr("Brasil"),
		CourseBroadArea:    strptr("Exatas"),
		CourseArea:         strptr("Física"),
	})

	require.Equal(t, "42", rec.ID)
	require.Equal(t, "F", *rec.Gender)
	require.Equal(t, "2024-03-05", *rec.UpdatedAt)
	require.Equal(t, "SP", *rec.BirthState)
	require.True(t, rec.BirthCapital)
	require.Equal(t, "Sudeste", *rec.BirthRegion)
	require.True(t, rec.Completed)
	require.Equal(t, int32(2001), *rec.StartYear)
	require.Equal(t, int32(2003), *rec.EndYear)
	require.Equal(t, "Exatas", *rec.BroadArea)
	require.Equal(t, "Física", *rec.Area)
	require.True(t, rec.Scholarship)
	require.Equal(t, "USP", *rec.InstitutionAcronym)
	require.Equal(t, "Sudeste", *rec.InstitutionRegion)
	require.Empty(t, e.Unclassified)
}

func TestApplyCoercions(t *testing.T) {
	e := enrich.NewEnricher(names.Index{})

	rec := e.Apply(enrich.FlatRecord{
		ID:            "1",
		FormationType: lattes.FormationDoctorate,
		Status:        strptr("EM_ANDAMENTO"),
		StartYear:     strptr("not-a-year"),
		EndYear:       nil,
		Scholarship:   strptr("NAO"),
		UpdatedAt:     strptr("99999999"),
	})

	require.False(t, rec.Completed)
	require.False(t, rec.Scholarship)
	require.Nil(t, rec.StartYear)
	require.Nil(t, rec.EndYear)
	require.Nil(t, rec.UpdatedAt)
}

func TestApplyForeignBlanking(t *testing.T) {
	e := enrich.NewEnricher(names.Index{})

	rec := e.Apply(enrich.FlatRecord{
		ID:                 "1",
		FormationType:      lattes.FormationMasters,
		BirthCountry:       strptr("Argentina"),
		BirthState:         strptr("SP"),
		InstitutionCountry: strptr("Portugal"),
		InstitutionState:   strptr("RJ"),
	})

	require.Equal(t, "", *rec.BirthState)
	require.Equal(t, "", *rec.BirthRegion)
	require.Equal(t, "", *rec.InstitutionState)
	require.Equal(t, "", *rec.InstitutionRegion)
	require.Equal(t, "Argentina", *rec.BirthCountry)
}

func TestApplyMissingCountryBlanksInstitution(t *testing.T) {
	e := enrich.NewEnricher(names.Index{})

	rec := e.Apply(enrich.FlatRecord{
		ID:               "1",
		FormationType:    lattes.FormationMasters,
		InstitutionState: strptr("SP"),
	})

	require.Equal(t, "", *rec.InstitutionState)
}

func TestApplyUnclassifiedAccumulates(t *testing.T) {
	e := enrich.NewEnricher(names.Index{})

	e.Apply(enrich.FlatRecord{ID: "1", FormationType: lattes.FormationMasters, FullName: strptr("Xblrt Silva")})
	e.Apply(enrich.FlatRecord{ID: "2", FormationType: lattes.FormationMasters, FullName: strptr("xblrt lima")})

	require.Len(t, e.Unclassified, 1)
	require.Contains(t, e.Unclassified, "XBLRT")
}

func TestApplySuffixFallbackWithEmptyIndex(t *testing.T) {
	e := enrich.NewEnricher(names.Index{})

	rec := e.Apply(enrich.FlatRecord{
		ID:            "1",
		FormationType: lattes.FormationMasters,
		FullName:      strptr("Fernanda Souza"),
	})
	require.Equal(t, "F", *rec.Gender)
}
