// Package schema defines the relational schema model produced by the ER
// compiler and consumed by the 3NF normalizer and the DSL semantic analyzer.
// Structures are created once per compilation run and never mutated
// concurrently.
package schema

import "strings"

// Column is one column of a table. Type holds the engine-specific type
// string (VARCHAR(255), DECIMAL(10,2), ...); coarse typing happens in the
// semantic layer. Extra preserves unrecognized fields from upstream phases.
type Column struct {
	Name         string         `json:"name" yaml:"name"`
	Type         string         `json:"type" yaml:"type"`
	Nullable     bool           `json:"nullable" yaml:"nullable"`
	IsPrimaryKey bool           `json:"is_primary_key" yaml:"is_primary_key"`
	Extra        map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// ForeignKey is a foreign-key constraint. Columns and RefColumns are
// parallel: the i-th local column references the i-th referenced column.
type ForeignKey struct {
	Columns    []string `json:"columns" yaml:"columns"`
	RefTable   string   `json:"ref_table" yaml:"ref_table"`
	RefColumns []string `json:"ref_columns" yaml:"ref_columns"`
}

// Table is one relational table.
type Table struct {
	Name               string         `json:"name" yaml:"name"`
	Columns            []*Column      `json:"columns" yaml:"columns"`
	PrimaryKey         []string       `json:"primary_key" yaml:"primary_key"`
	ForeignKeys        []ForeignKey   `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
	UniqueConstraints  [][]string     `json:"unique_constraints,omitempty" yaml:"unique_constraints,omitempty"`
	IsJunctionTable    bool           `json:"is_junction_table,omitempty" yaml:"is_junction_table,omitempty"`
	IsMultivaluedTable bool           `json:"is_multivalued_table,omitempty" yaml:"is_multivalued_table,omitempty"`
	Extra              map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Column returns the column with the given name (case-insensitive), or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// AddColumn appends a column unless one with the same name already exists,
// returning the column now present under that name.
func (t *Table) AddColumn(col *Column) *Column {
	if existing := t.Column(col.Name); existing != nil {
		return existing
	}
	t.Columns = append(t.Columns, col)
	return col
}

// ColumnNames returns all column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsForeignKeyColumn reports whether the named column participates in any
// foreign key of the table.
func (t *Table) IsForeignKeyColumn(name string) bool {
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if strings.EqualFold(c, name) {
				return true
			}
		}
	}
	return false
}

// IsUniqueColumn reports whether the named column alone is unique: either a
// single-column primary key or a single-column unique constraint.
func (t *Table) IsUniqueColumn(name string) bool {
	if len(t.PrimaryKey) == 1 && strings.EqualFold(t.PrimaryKey[0], name) {
		return true
	}
	for _, uc := range t.UniqueConstraints {
		if len(uc) == 1 && strings.EqualFold(uc[0], name) {
			return true
		}
	}
	return false
}

// RelationalSchema is a set of tables produced by one compilation run.
type RelationalSchema struct {
	Tables []*Table       `json:"tables" yaml:"tables"`
	Extra  map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Table returns the table with the given name (case-insensitive), or nil.
func (s *RelationalSchema) Table(name string) *Table {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// AddTable appends a table unless one with the same name exists, returning
// the table now present under that name.
func (s *RelationalSchema) AddTable(t *Table) *Table {
	if existing := s.Table(t.Name); existing != nil {
		return existing
	}
	s.Tables = append(s.Tables, t)
	return t
}
