package er

import "strings"

// associativeNameHints are substrings that mark an entity as plausibly being
// the associative (line-item style) participant of a ternary relationship.
var associativeNameHints = []string{"item", "line", "detail", "link", "entry", "assignment"}

// isAssociativeCandidate reports whether an entity looks like the associative
// participant of a ternary relationship: it either has no declared primary
// key, or its name carries one of the line-item hints, and in both cases it
// must carry attributes of its own. declaredKey is the entity's effective
// key, including any override from the compilation input. The predicate is
// fuzzy; it is kept isolated here so the matching rules can be swapped
// without touching the compiler.
func isAssociativeCandidate(e *Entity, declaredKey []string) bool {
	if e == nil || len(e.Attributes) == 0 {
		return false
	}
	if len(declaredKey) == 0 {
		return true
	}
	lower := strings.ToLower(e.Name)
	for _, hint := range associativeNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// associativeEntity resolves a ternary relationship to its associative
// participant when exactly one candidate matches. Candidacy is judged on
// each entity's effective key, so an entity keyed only through the input's
// primary-key overrides is not mistaken for keyless. Zero or multiple
// matches return empty, which sends the relationship down the junction-table
// path.
func (r *compileRun) associativeEntity(rel *Relation) string {
	var match string
	for _, name := range rel.Entities {
		e := r.in.Design.Entity(name)
		if e == nil || !isAssociativeCandidate(e, r.effectiveKey(e)) {
			continue
		}
		if match != "" {
			return ""
		}
		match = name
	}
	return match
}
