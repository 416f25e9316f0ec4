package lattes

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
)

// formationPaths are scanned in order; the element name doubles as the
// formation type tag.
var formationTypes = []string{
	FormationMasters,
	FormationProfessionalMasters,
	FormationDoctorate,
}

// Parse turns one raw résumé document into a Document. fallbackID is the
// archive base name, used (minus its .zip suffix) when the root carries no
// NUMERO-IDENTIFICADOR attribute.
func Parse(data []byte, fallbackID string) (*Document, error) {
	tree := etree.NewDocument()
	tree.ReadSettings.CharsetReader = charsetReader
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	root := tree.Root()
	if root == nil {
		return nil, errors.New("parse xml: empty document")
	}

	id := root.SelectAttrValue("NUMERO-IDENTIFICADOR", "")
	if id == "" && fallbackID != "" {
		id = strings.TrimSuffix(fallbackID, ".zip")
	}

	doc := &Document{
		ID:           id,
		Formations:   []Formation{},
		Institutions: map[string]Institution{},
		Courses:      map[string]Course{},
	}

	if dg := root.FindElement(".//DADOS-GERAIS"); dg != nil {
		doc.General = GeneralData{
			FullName:     attr(dg, "NOME-COMPLETO"),
			BirthCountry: attr(dg, "PAIS-DE-NASCIMENTO"),
			BirthState:   attr(dg, "UF-NASCIMENTO"),
			BirthCity:    attr(dg, "CIDADE-NASCIMENTO"),
		}
	}
	if updated := root.SelectAttrValue("DATA-ATUALIZACAO", ""); updated != "" {
		doc.General.UpdatedAt = &updated
	}

	instCodes := map[string]bool{}
	courseCodes := map[string]bool{}

	for _, typ := range formationTypes {
		for _, el := range root.FindElements(".//FORMACAO-ACADEMICA-TITULACAO/" + typ) {
			f := Formation{
				Type:            typ,
				InstitutionCode: attr(el, "CODIGO-INSTITUICAO"),
				CourseCode:      attr(el, "CODIGO-CURSO"),
				CourseAreaCode:  attr(el, "CODIGO-AREA-CURSO"),
				Status:          attr(el, "STATUS-DO-CURSO"),
				StartYear:       attr(el, "ANO-DE-INICIO"),
				EndYear:         attr(el, "ANO-DE-CONCLUSAO"),
				Scholarship:     attr(el, "FLAG-BOLSA"),
				KnowledgeAreas:  []KnowledgeArea{},
			}
			if f.InstitutionCode != nil && *f.InstitutionCode != "" {
				instCodes[*f.InstitutionCode] = true
			}
			if f.CourseCode != nil && *f.CourseCode != "" {
				courseCodes[*f.CourseCode] = true
			}

			// The container numbers repeated children: AREA-DO-CONHECIMENTO,
			// AREA-DO-CONHECIMENTO-1, AREA-DO-CONHECIMENTO-2, ...
			if areas := el.FindElement(".//AREAS-DO-CONHECIMENTO"); areas != nil {
				for _, child := range areas.ChildElements() {
					if strings.Contains(child.Tag, "AREA-DO-CONHECIMENTO") {
						f.KnowledgeAreas = append(f.KnowledgeAreas, KnowledgeArea{
							BroadArea: attr(child, "NOME-GRANDE-AREA-DO-CONHECIMENTO"),
							Area:      attr(child, "NOME-DA-AREA-DO-CONHECIMENTO"),
						})
					}
				}
			}

			doc.Formations = append(doc.Formations, f)
		}
	}

	// Side tables, restricted to codes referenced by the formations above.
	for _, el := range root.FindElements(".//DADOS-COMPLEMENTARES/INFORMACOES-ADICIONAIS-INSTITUICOES/INFORMACAO-ADICIONAL-INSTITUICAO") {
		code := el.SelectAttrValue("CODIGO-INSTITUICAO", "")
		if instCodes[code] {
			doc.Institutions[code] = Institution{
				Acronym: attr(el, "SIGLA-INSTITUICAO"),
				State:   attr(el, "SIGLA-UF-INSTITUICAO"),
				Country: attr(el, "NOME-PAIS-INSTITUICAO"),
			}
		}
	}
	for _, el := range root.FindElements(".//DADOS-COMPLEMENTARES/INFORMACOES-ADICIONAIS-CURSOS/INFORMACAO-ADICIONAL-CURSO") {
		code := el.SelectAttrValue("CODIGO-CURSO", "")
		if courseCodes[code] {
			doc.Courses[code] = Course{
				BroadArea: attr(el, "NOME-GRANDE-AREA-DO-CONHECIMENTO"),
				Area:      attr(el, "NOME-DA-AREA-DO-CONHECIMENTO"),
			}
		}
	}

	return doc, nil
}

// attr returns the attribute value as a nullable string, distinguishing an
// absent attribute from an empty one.
func attr(e *etree.Element, key string) *string {
	if a := e.SelectAttr(key); a != nil {
		v := a.Value
		return &v
	}
	return nil
}

// charsetReader decodes the legacy encodings Lattes exports declare. The
// XML decoder only calls this for documents not already labeled UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
