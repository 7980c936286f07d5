// Package semantic type-checks relforge expressions against a relational
// schema. The analyzer accumulates every semantic error in one pass instead
// of stopping at the first; parsing must already have succeeded.
package semantic

import (
	"strings"

	"github.com/relforge/relforge/pkg/schema"
)

// CoarseType is the analyzer's view of a column or expression type. Engine
// type strings are collapsed into this small set; unknown types are
// provisionally compatible with any requirement.
type CoarseType string

// Coarse types.
const (
	TypeNumber   CoarseType = "number"
	TypeString   CoarseType = "string"
	TypeBoolean  CoarseType = "boolean"
	TypeDate     CoarseType = "date"
	TypeTime     CoarseType = "time"
	TypeDatetime CoarseType = "datetime"
	TypeUnknown  CoarseType = "unknown"
)

// IsTemporal reports whether the type is date, time, or datetime.
func (t CoarseType) IsTemporal() bool {
	return t == TypeDate || t == TypeTime || t == TypeDatetime
}

// coarsePrefixes maps engine type-string prefixes to coarse types.
// Parameterization like VARCHAR(255) or DECIMAL(10,2) is stripped first.
var coarsePrefixes = []struct {
	prefix string
	coarse CoarseType
}{
	{"TINYINT", TypeNumber}, {"SMALLINT", TypeNumber}, {"MEDIUMINT", TypeNumber},
	{"BIGINT", TypeNumber}, {"INTEGER", TypeNumber}, {"INT", TypeNumber},
	{"DECIMAL", TypeNumber}, {"NUMERIC", TypeNumber}, {"NUMBER", TypeNumber},
	{"FLOAT", TypeNumber}, {"DOUBLE", TypeNumber}, {"REAL", TypeNumber},
	{"SERIAL", TypeNumber}, {"MONEY", TypeNumber},
	{"VARCHAR", TypeString}, {"NVARCHAR", TypeString}, {"CHARACTER", TypeString},
	{"CHAR", TypeString}, {"TEXT", TypeString}, {"STRING", TypeString},
	{"CLOB", TypeString}, {"UUID", TypeString}, {"ENUM", TypeString},
	{"BOOLEAN", TypeBoolean}, {"BOOL", TypeBoolean},
	{"TIMESTAMP", TypeDatetime}, {"DATETIME", TypeDatetime},
	{"DATE", TypeDate},
	{"TIME", TypeTime},
}

// Coarse maps an engine type string (or loose type hint) to a coarse type.
func Coarse(typeString string) CoarseType {
	s := strings.ToUpper(strings.TrimSpace(typeString))
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeUnknown
	}
	for _, m := range coarsePrefixes {
		if strings.HasPrefix(s, m.prefix) {
			return m.coarse
		}
	}
	return TypeUnknown
}

// TableContext holds the coarse-typed columns of one table, plus which
// columns are individually unique (single-column primary key or unique
// constraint) for LOOKUP validation.
type TableContext struct {
	Name    string
	Columns map[string]CoarseType // keyed by lower-case column name
	Unique  map[string]bool       // keyed by lower-case column name
	names   map[string]string     // lower-case -> original spelling
}

// Column returns a column's coarse type, matching case-insensitively.
func (t *TableContext) Column(name string) (CoarseType, bool) {
	ct, ok := t.Columns[strings.ToLower(name)]
	return ct, ok
}

// IsUnique reports whether the named column is individually unique.
func (t *TableContext) IsUnique(name string) bool {
	return t.Unique[strings.ToLower(name)]
}

// ColumnName returns the original spelling for a column name.
func (t *TableContext) ColumnName(name string) string {
	if orig, ok := t.names[strings.ToLower(name)]; ok {
		return orig
	}
	return name
}

// SchemaContext maps tables to coarse-typed columns. The analyzer treats it
// as read-only for the duration of one validation call.
type SchemaContext struct {
	tables map[string]*TableContext // keyed by lower-case table name
	order  []string                 // original table names in insertion order
}

// NewContext creates an empty schema context.
func NewContext() *SchemaContext {
	return &SchemaContext{tables: make(map[string]*TableContext)}
}

// AddTable registers a table, returning its context for column additions.
func (c *SchemaContext) AddTable(name string) *TableContext {
	key := strings.ToLower(name)
	if t, ok := c.tables[key]; ok {
		return t
	}
	t := &TableContext{
		Name:    name,
		Columns: make(map[string]CoarseType),
		Unique:  make(map[string]bool),
		names:   make(map[string]string),
	}
	c.tables[key] = t
	c.order = append(c.order, name)
	return t
}

// AddColumn registers a column with an engine type string.
func (t *TableContext) AddColumn(name, typeString string) {
	key := strings.ToLower(name)
	t.Columns[key] = Coarse(typeString)
	t.names[key] = name
}

// Table returns a table context, matching case-insensitively.
func (c *SchemaContext) Table(name string) (*TableContext, bool) {
	t, ok := c.tables[strings.ToLower(name)]
	return t, ok
}

// Tables returns table names in insertion order.
func (c *SchemaContext) Tables() []string {
	return append([]string(nil), c.order...)
}

// TablesWithColumn returns every table containing a column of the given
// name, in insertion order.
func (c *SchemaContext) TablesWithColumn(column string) []*TableContext {
	var out []*TableContext
	for _, name := range c.order {
		t := c.tables[strings.ToLower(name)]
		if _, ok := t.Column(column); ok {
			out = append(out, t)
		}
	}
	return out
}

// FromRelational builds a schema context from a compiled relational schema,
// collapsing engine types to coarse types and recording single-column
// uniqueness from primary keys and unique constraints.
func FromRelational(s *schema.RelationalSchema) *SchemaContext {
	ctx := NewContext()
	for _, table := range s.Tables {
		tc := ctx.AddTable(table.Name)
		for _, col := range table.Columns {
			tc.AddColumn(col.Name, col.Type)
			if table.IsUniqueColumn(col.Name) {
				tc.Unique[strings.ToLower(col.Name)] = true
			}
		}
	}
	return ctx
}
