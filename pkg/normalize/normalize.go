// Package normalize decomposes relational schemas into Third Normal Form
// using externally supplied functional dependencies. Decomposition is
// conservative: tables without a primary key are skipped rather than guessed
// at, and dependencies whose determinants look unreliable are left alone.
// Every decision is recorded as a human-readable step.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/relforge/relforge/pkg/schema"
)

// JoinPath reconstructs a pre-decomposition table: join FromTable to ToTable
// on the parallel attribute lists.
type JoinPath struct {
	FromTable     string        `json:"from_table" yaml:"from_table"`
	ToTable       string        `json:"to_table" yaml:"to_table"`
	JoinCondition JoinCondition `json:"join_condition" yaml:"join_condition"`
	JoinType      string        `json:"join_type" yaml:"join_type"`
}

// JoinCondition pairs the joining attributes positionally.
type JoinCondition struct {
	FromAttributes []string `json:"from_attributes" yaml:"from_attributes"`
	ToAttributes   []string `json:"to_attributes" yaml:"to_attributes"`
}

// NormalizedSchema is the output of one normalization run.
type NormalizedSchema struct {
	Tables           *schema.RelationalSchema `json:"normalized_tables" yaml:"normalized_tables"`
	Steps            []string                 `json:"decomposition_steps" yaml:"decomposition_steps"`
	AttributeMapping map[string]string        `json:"attribute_mapping" yaml:"attribute_mapping"`
	DependencyReport map[string]bool          `json:"dependency_preservation_report" yaml:"dependency_preservation_report"`
	KeyReport        map[string]bool          `json:"key_preservation_report" yaml:"key_preservation_report"`
	JoinPaths        []JoinPath               `json:"join_paths" yaml:"join_paths"`
}

// Normalizer decomposes schemas to 3NF. Like the ER compiler it is a pure
// function of its input and safe to share across goroutines.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer returns a normalizer logging through the given handler. A
// nil logger disables logging.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Normalizer{logger: logger}
}

// Normalize decomposes every table of the schema to 3NF. The input schema is
// not mutated; extraUnique supplies unique constraints per table beyond what
// the tables already declare. For each table the run either finds it already
// in 3NF, skips it for lack of a primary key, or splits out one table per
// trusted violating dependency.
func (n *Normalizer) Normalize(in *schema.RelationalSchema, fds []FunctionalDependency, extraUnique map[string][][]string) *NormalizedSchema {
	out := &NormalizedSchema{
		Tables:           &schema.RelationalSchema{Extra: in.Extra},
		AttributeMapping: map[string]string{},
		DependencyReport: map[string]bool{},
		KeyReport:        map[string]bool{},
	}

	for _, orig := range in.Tables {
		n.normalizeTable(orig, fds, extraUnique[orig.Name], out)
	}
	return out
}

// normalizeTable walks one table through filtered -> (already-3NF |
// skipped-no-key | decomposed).
func (n *Normalizer) normalizeTable(orig *schema.Table, fds []FunctionalDependency, extraUnique [][]string, out *NormalizedSchema) {
	retained := cloneTable(orig)
	out.Tables.AddTable(retained)

	var applicable []FunctionalDependency
	for _, fd := range fds {
		if fd.appliesTo(orig) {
			applicable = append(applicable, fd)
		}
	}

	if len(orig.PrimaryKey) == 0 {
		out.Steps = append(out.Steps, fmt.Sprintf(
			"%s: no primary key, decomposition skipped (a key is never guessed)", orig.Name))
		out.KeyReport[orig.Name] = false
		out.DependencyReport[orig.Name] = true
		n.logger.Debug("normalization skipped", "table", orig.Name, "reason", "no primary key")
		return
	}

	keys := candidateKeys(orig, extraUnique)
	prime := primeAttributes(keys)

	var violations []FunctionalDependency
	for _, fd := range applicable {
		if !n.violates3NF(fd, keys, prime) {
			continue
		}
		if !isTrustedDeterminant(fd.Determinant, orig, keys) {
			out.Steps = append(out.Steps, fmt.Sprintf(
				"%s: dependency %s violates 3NF but its determinant is foreign-key only, skipped",
				orig.Name, fd))
			continue
		}
		violations = append(violations, fd)
	}

	// Violations sharing a determinant decompose into one table, so the
	// split target is never created twice.
	decomposed := false
	for _, fd := range mergeByDeterminant(violations) {
		n.decompose(retained, orig, fd, keys, out)
		decomposed = true
	}

	if !decomposed {
		out.Steps = append(out.Steps, fmt.Sprintf("%s: already in 3NF", orig.Name))
	}

	out.KeyReport[orig.Name] = keyPreserved(retained)
	out.DependencyReport[orig.Name] = dependenciesPreserved(applicable, out.Tables)
}

// violates3NF reports whether X -> Y breaks 3NF on this table: X is not a
// superkey and Y is not entirely prime.
func (n *Normalizer) violates3NF(fd FunctionalDependency, keys [][]string, prime map[string]bool) bool {
	if isSuperkey(fd.Determinant, keys) {
		return false
	}
	for _, col := range fd.Dependent {
		if !prime[strings.ToLower(col)] {
			return true
		}
	}
	return false
}

// decompose splits one trusted violation out of the retained table: the new
// table holds determinant plus dependents; the retained table drops the
// moved dependents but keeps the determinant for traceability. No foreign
// key is asserted between the pair; a join path over the determinant is
// recorded instead, routed through whichever table still holds the
// determinant columns (an earlier decomposition may have moved them out of
// the retained table).
func (n *Normalizer) decompose(retained, orig *schema.Table, fd FunctionalDependency, keys [][]string, out *NormalizedSchema) {
	name := decomposedTableName(orig.Name, fd.Determinant)
	split := &schema.Table{Name: name}

	for _, colName := range fd.Determinant {
		if src := orig.Column(colName); src != nil {
			split.AddColumn(cloneColumn(src))
		}
	}
	for _, colName := range fd.Dependent {
		src := orig.Column(colName)
		if src == nil || containsFold(fd.Determinant, colName) {
			continue
		}
		split.AddColumn(cloneColumn(src))
		out.AttributeMapping[orig.Name+"."+src.Name] = name + "." + src.Name
		if !containsFold(retained.PrimaryKey, colName) {
			removeColumn(retained, colName)
		}
	}

	if key := smallestContainedKey(fd.Determinant, keys); key != nil {
		split.PrimaryKey = append([]string(nil), key...)
	} else {
		split.PrimaryKey = append([]string(nil), fd.Determinant...)
	}
	for _, colName := range split.PrimaryKey {
		if col := split.Column(colName); col != nil {
			col.IsPrimaryKey = true
			col.Nullable = false
		}
	}

	from := retained
	if !allColumnsPresent(from, fd.Determinant) {
		for _, t := range out.Tables.Tables {
			if allColumnsPresent(t, fd.Determinant) {
				from = t
				break
			}
		}
	}

	out.Tables.AddTable(split)
	out.JoinPaths = append(out.JoinPaths, JoinPath{
		FromTable: from.Name,
		ToTable:   name,
		JoinCondition: JoinCondition{
			FromAttributes: append([]string(nil), fd.Determinant...),
			ToAttributes:   append([]string(nil), fd.Determinant...),
		},
		JoinType: "INNER",
	})
	out.Steps = append(out.Steps, fmt.Sprintf(
		"%s: dependency %s violates 3NF, decomposed into %s", orig.Name, fd, name))
	n.logger.Debug("table decomposed", "table", orig.Name, "into", name, "dependency", fd.String())
}

// keyPreserved reports whether the retained table still has a usable primary
// key: non-empty and with every key column present.
func keyPreserved(t *schema.Table) bool {
	if len(t.PrimaryKey) == 0 {
		return false
	}
	for _, col := range t.PrimaryKey {
		if !t.HasColumn(col) {
			return false
		}
	}
	return true
}

// dependenciesPreserved reports whether every applicable dependency is still
// checkable within a single table of the normalized schema.
func dependenciesPreserved(fds []FunctionalDependency, out *schema.RelationalSchema) bool {
	for _, fd := range fds {
		held := false
		for _, t := range out.Tables {
			if allColumnsPresent(t, fd.Determinant) && allColumnsPresent(t, fd.Dependent) {
				held = true
				break
			}
		}
		if !held {
			return false
		}
	}
	return true
}

func allColumnsPresent(t *schema.Table, cols []string) bool {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return false
		}
	}
	return true
}

func removeColumn(t *schema.Table, name string) {
	for i, col := range t.Columns {
		if strings.EqualFold(col.Name, name) {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return
		}
	}
}

func cloneColumn(c *schema.Column) *schema.Column {
	dup := *c
	return &dup
}

func cloneTable(t *schema.Table) *schema.Table {
	dup := &schema.Table{
		Name:               t.Name,
		PrimaryKey:         append([]string(nil), t.PrimaryKey...),
		IsJunctionTable:    t.IsJunctionTable,
		IsMultivaluedTable: t.IsMultivaluedTable,
		Extra:              t.Extra,
	}
	for _, col := range t.Columns {
		dup.Columns = append(dup.Columns, cloneColumn(col))
	}
	for _, fk := range t.ForeignKeys {
		dup.ForeignKeys = append(dup.ForeignKeys, schema.ForeignKey{
			Columns:    append([]string(nil), fk.Columns...),
			RefTable:   fk.RefTable,
			RefColumns: append([]string(nil), fk.RefColumns...),
		})
	}
	for _, uc := range t.UniqueConstraints {
		dup.UniqueConstraints = append(dup.UniqueConstraints, append([]string(nil), uc...))
	}
	return dup
}
