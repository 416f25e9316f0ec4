// Package lattes holds the parsed résumé model and the readers that produce
// it: zip archive extraction, XML parsing, and the append-only record log.
package lattes

// Formation type tags, matching the source XML element names.
const (
	FormationMasters             = "MESTRADO"
	FormationProfessionalMasters = "MESTRADO-PROFISSIONALIZANTE"
	FormationDoctorate           = "DOUTORADO"
)

// Document is one parsed résumé: the general personal section, the
// graduate formations, and the institution/course side tables restricted to
// the codes those formations reference. Immutable once built; serialized as
// one record-log line.
type Document struct {
	ID           string                 `json:"numero_identificador"`
	General      GeneralData            `json:"dados_gerais"`
	Formations   []Formation            `json:"formacoes"`
	Institutions map[string]Institution `json:"instituicoes"`
	Courses      map[string]Course      `json:"cursos"`
}

// GeneralData carries the personal fields of the résumé. All fields are
// free text and may be absent.
type GeneralData struct {
	FullName     *string `json:"nome_completo"`
	BirthCountry *string `json:"pais_nascimento"`
	BirthState   *string `json:"uf_nascimento"`
	BirthCity    *string `json:"cidade_nascimento"`
	UpdatedAt    *string `json:"data_atualizacao,omitempty"`
}

// Formation is one graduate-degree record. Institution and course codes
// reference the document's side tables; a code with no matching entry is
// not an error, the joined fields just stay empty.
type Formation struct {
	Type            string          `json:"tipo"`
	InstitutionCode *string         `json:"codigo_instituicao"`
	CourseCode      *string         `json:"codigo_curso"`
	CourseAreaCode  *string         `json:"codigo_area_curso"`
	Status          *string         `json:"status"`
	StartYear       *string         `json:"ano_inicio"`
	EndYear         *string         `json:"ano_conclusao"`
	Scholarship     *string         `json:"flag_bolsa"`
	KnowledgeAreas  []KnowledgeArea `json:"areas_conhecimento"`
}

// KnowledgeArea is one broad-field/sub-field tag attached to a formation.
// Tags may repeat within a formation; the flattener deduplicates them.
type KnowledgeArea struct {
	BroadArea *string `json:"nome_grande_area"`
	Area      *string `json:"nome_area"`
}

// Institution is a side-table entry keyed by institution code.
type Institution struct {
	Acronym *string `json:"sigla_instituicao"`
	State   *string `json:"sigla_uf"`
	Country *string `json:"nome_pais"`
}

// Course is a side-table entry keyed by course code.
type Course struct {
	BroadArea *string `json:"nome_grande_area"`
	Area      *string `json:"nome_area"`
}
