package enrich

import (
	"strings"

	"github.com/Ordep1234555/lattes-analysis/internal/names"
)

// regionByState maps the 27 federative-unit codes to their macro-region.
var regionByState = map[string]string{
	"AC": "Norte", "AP": "Norte", "AM": "Norte", "PA": "Norte",
	"RO": "Norte", "RR": "Norte", "TO": "Norte",

	"AL": "Nordeste", "BA": "Nordeste", "CE": "Nordeste", "MA": "Nordeste",
	"PB": "Nordeste", "PE": "Nordeste", "PI": "Nordeste", "RN": "Nordeste",
	"SE": "Nordeste",

	"DF": "Centro-Oeste", "GO": "Centro-Oeste", "MT": "Centro-Oeste",
	"MS": "Centro-Oeste",

	"ES": "Sudeste", "MG": "Sudeste", "RJ": "Sudeste", "SP": "Sudeste",

	"PR": "Sul", "RS": "Sul", "SC": "Sul",
}

// Region resolves a state code to its macro-region. Nil for missing or
// unrecognized codes.
func Region(state *string) *string {
	if state == nil {
		return nil
	}
	region, ok := regionByState[strings.ToUpper(strings.TrimSpace(*state))]
	if !ok {
		return nil
	}
	return &region
}

// capitalByState holds each state's capital, pre-normalized the same way
// city names are normalized before comparison.
var capitalByState = map[string]string{
	"AC": "RIO BRANCO", "AL": "MACEIO", "AP": "MACAPA", "AM": "MANAUS",
	"BA": "SALVADOR", "CE": "FORTALEZA", "DF": "BRASILIA", "ES": "VITORIA",
	"GO": "GOIANIA", "MA": "SAO LUIS", "MT": "CUIABA", "MS": "CAMPO GRANDE",
	"MG": "BELO HORIZONTE", "PA": "BELEM", "PB": "JOAO PESSOA", "PR": "CURITIBA",
	"PE": "RECIFE", "PI": "TERESINA", "RJ": "RIO DE JANEIRO", "RN": "NATAL",
	"RS": "PORTO ALEGRE", "RO": "PORTO VELHO", "RR": "BOA VISTA",
	"SC": "FLORIANOPOLIS", "SP": "SAO PAULO", "SE": "ARACAJU", "TO": "PALMAS",
}

// IsCapital reports whether city is the capital of state, ignoring case and
// accents. False when either value is missing.
func IsCapital(state, city *string) bool {
	if state == nil || city == nil {
		return false
	}
	capital, ok := capitalByState[names.Normalize(*state)]
	return ok && names.Normalize(*city) == capital
}
