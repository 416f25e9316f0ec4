package enrich

// areaFixes repairs fine-area names that reach the corpus with stale HTML
// entities, legacy spellings, or renamed fields. Exact-match replacement.
var areaFixes = map[string]string{
	"Ling&uuml;&iacute;stica":                  "Linguística",
	"Engenharia El&eacute;trica":               "Engenharia Elétrica",
	"Servi&ccedil;o Social":                    "Serviço Social",
	"Medicina Veterin&aacute;ria":              "Medicina Veterinária",
	"Administra&ccedil;&atilde;o":              "Administração",
	"Educa&ccedil;&atilde;o":                   "Educação",
	"Gen&eacute;tica":                          "Genética",
	"Bot&acirc;nica":                           "Botânica",
	"Ci&ecirc;ncia e Tecnologia de Alimentos":  "Ciência e Tecnologia de Alimentos",
	"Ci&ecirc;ncia Pol&iacute":                 "Ciência Política",
	"Ci&ecirc;ncia Pol&iacute;tica":            "Ciência Política",
	"Qu&iacute;mica":                           "Química",
	"Agronomía":                                "Agronomia",
	"Energia":                                  "Engenharia de Energia",
	"Lingüística, Letras e Artes":              "Linguística",
	"Lingüística":                              "Linguística",
}

// FixArea replaces a known-bad fine-area name with its corrected form and
// passes everything else through.
func FixArea(area *string) *string {
	if area == nil {
		return nil
	}
	if fixed, ok := areaFixes[*area]; ok {
		return &fixed
	}
	return area
}
