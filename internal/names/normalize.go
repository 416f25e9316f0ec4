// Package names builds the first-name classification index from the
// reference dataset and classifies full names against it.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize trims, upper-cases and strips diacritics from a name, via
// canonical decomposition with combining marks removed. Index construction
// and lookup must use the same normalization.
func Normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
