package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relforge/relforge/pkg/schema"
)

// FunctionalDependency states that Determinant columns functionally
// determine Dependent columns. Table optionally scopes the dependency to one
// table; unscoped dependencies apply to any table containing both sides.
type FunctionalDependency struct {
	Table       string   `json:"table,omitempty" yaml:"table,omitempty"`
	Determinant []string `json:"determinant" yaml:"determinant"`
	Dependent   []string `json:"dependent" yaml:"dependent"`
}

// String renders the dependency as `a, b -> c`.
func (fd FunctionalDependency) String() string {
	return strings.Join(fd.Determinant, ", ") + " -> " + strings.Join(fd.Dependent, ", ")
}

// appliesTo reports whether the dependency is usable on the table: the scope
// matches, both sides are fully contained in the table's columns, and the
// dependency is non-trivial (the dependent side is not a subset of the
// determinant).
func (fd FunctionalDependency) appliesTo(t *schema.Table) bool {
	if fd.Table != "" && !strings.EqualFold(fd.Table, t.Name) {
		return false
	}
	if len(fd.Determinant) == 0 || len(fd.Dependent) == 0 {
		return false
	}
	for _, col := range fd.Determinant {
		if !t.HasColumn(col) {
			return false
		}
	}
	trivial := true
	for _, col := range fd.Dependent {
		if !t.HasColumn(col) {
			return false
		}
		if !containsFold(fd.Determinant, col) {
			trivial = false
		}
	}
	return !trivial
}

// candidateKeys collects the table's candidate keys: the primary key plus
// table-level and externally supplied unique constraints.
func candidateKeys(t *schema.Table, extra [][]string) [][]string {
	keys := make([][]string, 0, 1+len(t.UniqueConstraints)+len(extra))
	if len(t.PrimaryKey) > 0 {
		keys = append(keys, t.PrimaryKey)
	}
	for _, uc := range t.UniqueConstraints {
		if len(uc) > 0 {
			keys = append(keys, uc)
		}
	}
	for _, uc := range extra {
		if len(uc) > 0 {
			keys = append(keys, uc)
		}
	}
	return keys
}

// primeAttributes is the union of all candidate-key columns, lowercased.
func primeAttributes(keys [][]string) map[string]bool {
	prime := make(map[string]bool)
	for _, key := range keys {
		for _, col := range key {
			prime[strings.ToLower(col)] = true
		}
	}
	return prime
}

// isSuperkey reports whether the column set contains some candidate key.
func isSuperkey(cols []string, keys [][]string) bool {
	return smallestContainedKey(cols, keys) != nil
}

// smallestContainedKey returns the smallest candidate key fully contained in
// cols, or nil. Ties resolve to the earliest-declared key.
func smallestContainedKey(cols []string, keys [][]string) []string {
	var best []string
	for _, key := range keys {
		contained := true
		for _, col := range key {
			if !containsFold(cols, col) {
				contained = false
				break
			}
		}
		if contained && (best == nil || len(key) < len(best)) {
			best = key
		}
	}
	return best
}

// isTrustedDeterminant is the decomposition gate: a determinant is trusted
// when it is key-like (contains a candidate key) or contains no foreign-key
// column at all. Determinants leaning on foreign-key columns without key
// support tend to be spurious (publisher_id -> title) and are skipped. Kept
// isolated so the trust rules can change without touching the decomposition
// loop.
func isTrustedDeterminant(determinant []string, t *schema.Table, keys [][]string) bool {
	if isSuperkey(determinant, keys) {
		return true
	}
	for _, col := range determinant {
		if t.IsForeignKeyColumn(col) {
			return false
		}
	}
	return true
}

// mergeByDeterminant folds dependencies sharing a determinant into one, so
// each determinant decomposes into exactly one table carrying the union of
// the dependents. First-seen order is preserved on both sides.
func mergeByDeterminant(fds []FunctionalDependency) []FunctionalDependency {
	var merged []FunctionalDependency
	index := make(map[string]int)
	for _, fd := range fds {
		key := determinantKey(fd.Determinant)
		if i, ok := index[key]; ok {
			for _, col := range fd.Dependent {
				if !containsFold(merged[i].Dependent, col) {
					merged[i].Dependent = append(merged[i].Dependent, col)
				}
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, FunctionalDependency{
			Table:       fd.Table,
			Determinant: append([]string(nil), fd.Determinant...),
			Dependent:   append([]string(nil), fd.Dependent...),
		})
	}
	return merged
}

// determinantKey canonicalizes a determinant column set for grouping.
func determinantKey(determinant []string) string {
	parts := make([]string, len(determinant))
	for i, col := range determinant {
		parts[i] = strings.ToLower(col)
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x00")
}

// decomposedTableName names the table split out for a violation:
// `<orig>_<sorted determinant>`.
func decomposedTableName(orig string, determinant []string) string {
	parts := make([]string, len(determinant))
	for i, col := range determinant {
		parts[i] = strings.ToLower(col)
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s_%s", orig, strings.Join(parts, "_"))
}

func containsFold(cols []string, name string) bool {
	for _, c := range cols {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
