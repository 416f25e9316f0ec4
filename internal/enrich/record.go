// Package enrich flattens the record log into one row per formation and
// applies the enrichment stages that produce the final table: region
// lookup, definitive-area reconciliation, gender inference, type coercions,
// capital detection and cleanup.
package enrich

// FlatRecord is one (document, formation) row before enrichment: the
// personal fields joined with the formation fields and the institution and
// course side-table entries. Nil fields mean the source value was absent or
// the side-table code had no match.
type FlatRecord struct {
	ID           string
	FullName     *string
	BirthCountry *string
	BirthState   *string
	BirthCity    *string
	UpdatedAt    *string

	FormationType   string
	InstitutionCode *string
	CourseCode      *string
	CourseAreaCode  *string
	Status          *string
	StartYear       *string
	EndYear         *string
	Scholarship     *string

	InstitutionAcronym *string
	InstitutionState   *string
	InstitutionCountry *string

	CourseBroadArea *string
	CourseArea      *string

	// Deduplicated, sorted, "; "-joined knowledge-area names.
	FormationBroadArea *string
	FormationArea      *string
}

// Record is one final projected row, in the fixed output column order.
type Record struct {
	ID                 string  `parquet:"numero_identificador"`
	Gender             *string `parquet:"genero,optional"`
	UpdatedAt          *string `parquet:"data_atualizacao,optional"`
	BirthState         *string `parquet:"uf_nascimento,optional"`
	BirthCapital       bool    `parquet:"capital_nascimento"`
	BirthRegion        *string `parquet:"regiao_nascimento,optional"`
	BirthCountry       *string `parquet:"pais_nascimento,optional"`
	FormationType      string  `parquet:"tipo_formacao"`
	Completed          bool    `parquet:"curso_concluido"`
	StartYear          *int32  `parquet:"ano_inicio,optional"`
	EndYear            *int32  `parquet:"ano_conclusao,optional"`
	BroadArea          *string `parquet:"grande_area,optional"`
	Area               *string `parquet:"area,optional"`
	Scholarship        bool    `parquet:"flag_bolsa"`
	InstitutionAcronym *string `parquet:"sigla_instituicao,optional"`
	InstitutionState   *string `parquet:"uf_instituicao,optional"`
	InstitutionRegion  *string `parquet:"regiao_instituicao,optional"`
	InstitutionCountry *string `parquet:"pais_instituicao,optional"`
}

// deref returns the string value or "" for nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
