package names

import "strings"

// Gender category codes used by the reference dataset.
const (
	CategoryFemale = "F"
	CategoryMale   = "M"
)

// Classification is the outcome of classifying one full name. Category is
// empty when the name could not be resolved. Token is the normalized first
// name (empty when the input was blank) so callers can accumulate
// unresolved tokens for diagnostics instead of relying on hidden state.
type Classification struct {
	Category string
	Token    string
}

// suffixRules are evaluated in order against the normalized first token;
// the first matching suffix wins.
var suffixRules = []struct {
	suffixes []string
	category string
}{
	{[]string{"A"}, CategoryFemale},
	{[]string{"O", "OS", "EUS", "EU", "OR"}, CategoryMale},
	{[]string{"NE", "TE", "CE", "SE"}, CategoryFemale},
}

// Classify resolves the gender category for a full name: normalize, take
// the first whitespace-delimited token, look it up in the index, then fall
// back to the ordered suffix rules. A blank name yields a zero
// Classification and records nothing.
func (ix Index) Classify(fullName string) Classification {
	fields := strings.Fields(Normalize(fullName))
	if len(fields) == 0 {
		return Classification{}
	}
	token := fields[0]

	if category, ok := ix[token]; ok {
		return Classification{Category: category, Token: token}
	}

	for _, rule := range suffixRules {
		for _, suffix := range rule.suffixes {
			if strings.HasSuffix(token, suffix) {
				return Classification{Category: rule.category, Token: token}
			}
		}
	}

	return Classification{Token: token}
}
