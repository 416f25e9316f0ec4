package enrich

import "strings"

// Sentinel values that mark a course-catalog area as uninformative. Broad
// areas match exactly; fine areas match by substring, which also catches
// composites like "Saúde Coletiva; Multidisciplinar".
var (
	broadAreaSentinels = []string{"OUTROS"}
	areaSentinels      = []string{"MULTIDISCIPLINAR", "ADMINISTRAÇÃO HOSPITALAR"}
)

// ReconcileBroadArea picks the definitive broad area from the course
// catalog value and the formation's joined knowledge-area value.
func ReconcileBroadArea(catalog, formation *string) *string {
	return reconcile(catalog, formation, broadAreaSentinels, false)
}

// ReconcileArea picks the definitive fine area.
func ReconcileArea(catalog, formation *string) *string {
	return reconcile(catalog, formation, areaSentinels, true)
}

// reconcile prefers the catalog value, falling back to the formation value
// when the catalog is empty. A catalog value matching a sentinel is
// replaced by the formation value with its own sentinel entries filtered
// out; when every entry is a sentinel the formation value survives
// verbatim, and with no formation value at all the catalog sentinel itself
// is kept.
func reconcile(catalog, formation *string, sentinels []string, substring bool) *string {
	if strings.TrimSpace(deref(catalog)) == "" {
		if strings.TrimSpace(deref(formation)) != "" {
			return formation
		}
		return nil
	}

	if !matchesSentinel(deref(catalog), sentinels, substring) {
		return catalog
	}

	if strings.TrimSpace(deref(formation)) == "" {
		return catalog
	}

	var kept []string
	for _, part := range strings.Split(deref(formation), ";") {
		part = strings.TrimSpace(part)
		if !matchesSentinel(part, sentinels, substring) {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return formation
	}
	joined := strings.Join(kept, "; ")
	return &joined
}

// matchesSentinel reports whether value hits any sentinel, comparing
// case-insensitively: by equality, or by containment in substring mode.
func matchesSentinel(value string, sentinels []string, substring bool) bool {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, s := range sentinels {
		if substring && strings.Contains(upper, s) {
			return true
		}
		if !substring && upper == s {
			return true
		}
	}
	return false
}
