package er

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/relforge/relforge/pkg/schema"
)

// defaultColumnType is used when an attribute carries no type hint.
const defaultColumnType = "VARCHAR(255)"

// surrogateKeyType is the type of synthesized surrogate key columns.
const surrogateKeyType = "INTEGER"

// Input bundles an ER design with the artifacts earlier pipeline phases may
// have established: explicit primary keys per entity, pre-named foreign-key
// attributes, and unique constraints per entity.
type Input struct {
	Design            *Design
	PrimaryKeys       map[string][]string
	ForeignKeys       []FKHint
	UniqueConstraints map[string][][]string
}

// Result is one compilation run: the produced schema, a human-readable trace
// of every mapping decision, and a unique run identifier.
type Result struct {
	Schema *schema.RelationalSchema `json:"schema" yaml:"schema"`
	Trace  []string                 `json:"trace" yaml:"trace"`
	RunID  string                   `json:"run_id" yaml:"run_id"`
}

// Compiler turns ER designs into relational schemas. The mapping is a pure
// function of its input: compiling the same design twice yields identical
// schemas, and decisions never depend on map iteration order.
type Compiler struct {
	logger *slog.Logger
}

// NewCompiler returns a compiler logging through the given handler. A nil
// logger disables logging.
func NewCompiler(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{logger: logger}
}

// Compile maps the design to a relational schema:
//
//  1. one table per entity, composite attributes flattened to their atomic
//     components;
//  2. one side table per multivalued attribute;
//  3. relationships folded in by cardinality (1:1 and 1:N as foreign keys,
//     M:N and higher arities as junction tables, ternary relationships
//     enriched into an associative entity when exactly one participant
//     qualifies);
//  4. a finalization pass that guarantees every table has a primary key and
//     that key columns are non-nullable.
func (c *Compiler) Compile(in Input) *Result {
	run := &compileRun{
		in:     in,
		schema: &schema.RelationalSchema{},
		hints:  indexHints(in.ForeignKeys),
		logger: c.logger,
	}

	for i := range in.Design.Entities {
		run.entityTable(&in.Design.Entities[i])
	}
	for i := range in.Design.Entities {
		run.extractMultivalued(&in.Design.Entities[i])
	}
	for i := range in.Design.Relations {
		run.relation(&in.Design.Relations[i])
	}
	run.finalize()

	return &Result{
		Schema: run.schema,
		Trace:  run.trace,
		RunID:  uuid.NewString(),
	}
}

type compileRun struct {
	in     Input
	schema *schema.RelationalSchema
	hints  map[string][]string
	trace  []string
	logger *slog.Logger
}

func (r *compileRun) tracef(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.trace = append(r.trace, msg)
	r.logger.Debug(msg)
}

// entityTable maps one entity to a table. Multivalued attributes are skipped
// here and extracted later; composite attributes contribute their atomic
// components instead of themselves.
func (r *compileRun) entityTable(e *Entity) {
	table := &schema.Table{Name: e.Name}

	for _, attr := range e.Attributes {
		if attr.IsMultivalued {
			continue
		}
		if attr.IsComposite {
			for _, part := range attr.Decomposition {
				table.AddColumn(attributeColumn(part))
			}
			r.tracef("entity %s: composite attribute %s flattened to %d columns",
				e.Name, attr.Name, len(attr.Decomposition))
			continue
		}
		table.AddColumn(attributeColumn(attr))
	}

	table.PrimaryKey = r.declaredKey(e, table)
	for _, uc := range r.in.UniqueConstraints[e.Name] {
		table.UniqueConstraints = append(table.UniqueConstraints, uc)
	}

	r.schema.AddTable(table)
	r.tracef("entity %s -> table %s (%d columns)", e.Name, table.Name, len(table.Columns))
}

// effectiveKey is the entity's declared primary key, preferring an explicit
// override from the input over the inline declaration.
func (r *compileRun) effectiveKey(e *Entity) []string {
	if key := r.in.PrimaryKeys[e.Name]; len(key) > 0 {
		return key
	}
	return e.PrimaryKey
}

// declaredKey resolves the entity's primary key for its table. Key columns
// that do not exist on the table are dropped with a trace entry rather than
// failing the run.
func (r *compileRun) declaredKey(e *Entity, table *schema.Table) []string {
	declared := r.effectiveKey(e)
	key := make([]string, 0, len(declared))
	for _, col := range declared {
		if table.HasColumn(col) {
			key = append(key, col)
			continue
		}
		r.tracef("entity %s: declared key column %s has no matching attribute, ignored", e.Name, col)
	}
	return key
}

// extractMultivalued creates one side table per multivalued attribute,
// keyed by the owner's primary key plus the value column(s).
func (r *compileRun) extractMultivalued(e *Entity) {
	owner := r.schema.Table(e.Name)
	if owner == nil {
		return
	}
	for _, attr := range e.Attributes {
		if !attr.IsMultivalued {
			continue
		}

		side := &schema.Table{
			Name:               sideTableName(e.Name, attr.Name),
			IsMultivaluedTable: true,
		}
		fkCols, refCols := r.referenceColumns(side, owner, false)
		pk := append([]string(nil), fkCols...)

		if attr.IsComposite {
			for _, part := range attr.Decomposition {
				col := attributeColumn(part)
				side.AddColumn(col)
				pk = append(pk, col.Name)
			}
		} else {
			col := attributeColumn(attr)
			col.Nullable = false
			side.AddColumn(col)
			pk = append(pk, col.Name)
		}

		side.PrimaryKey = pk
		side.ForeignKeys = append(side.ForeignKeys, schema.ForeignKey{
			Columns:    fkCols,
			RefTable:   owner.Name,
			RefColumns: refCols,
		})
		r.schema.AddTable(side)
		r.tracef("entity %s: multivalued attribute %s -> side table %s", e.Name, attr.Name, side.Name)
	}
}

// relation folds one relationship into the schema according to its arity and
// cardinalities.
func (r *compileRun) relation(rel *Relation) {
	arity := rel.Arity
	if arity == 0 {
		arity = len(rel.Entities)
	}
	if arity != len(rel.Entities) {
		r.tracef("relationship %s: declared arity %d does not match %d participants, using participant count",
			relName(rel), arity, len(rel.Entities))
		arity = len(rel.Entities)
	}

	switch {
	case arity < 2:
		r.tracef("relationship %s: fewer than two participants, skipped", relName(rel))
	case arity == 2:
		r.binaryRelation(rel)
	case arity == 3:
		if assoc := r.associativeEntity(rel); assoc != "" {
			r.enrichAssociative(rel, assoc)
			return
		}
		r.junctionTable(rel)
	default:
		r.junctionTable(rel)
	}
}

// binaryRelation handles the three binary cardinality shapes.
func (r *compileRun) binaryRelation(rel *Relation) {
	first, second := rel.Entities[0], rel.Entities[1]
	c1, c2 := rel.CardinalityOf(first), rel.CardinalityOf(second)

	switch {
	case c1 == CardinalityOne && c2 == CardinalityOne:
		// The total-participation side holds the key; ties go to the first
		// participant.
		holder, referenced := first, second
		if rel.ParticipationOf(second) == ParticipationTotal &&
			rel.ParticipationOf(first) != ParticipationTotal {
			holder, referenced = second, first
		}
		r.foreignKey(rel, holder, referenced, true)
		r.tracef("relationship %s: 1:1, %s holds a unique key to %s", relName(rel), holder, referenced)

	case c1 == CardinalityOne: // 1:N, second is the many side
		r.foreignKey(rel, second, first, false)
		r.tracef("relationship %s: 1:N, %s holds a key to %s", relName(rel), second, first)

	case c2 == CardinalityOne: // N:1
		r.foreignKey(rel, first, second, false)
		r.tracef("relationship %s: 1:N, %s holds a key to %s", relName(rel), first, second)

	default: // M:N
		r.junctionTable(rel)
	}
}

// foreignKey adds a foreign key on holder referencing the other entity's
// primary key, plus the relationship's own attributes. Pre-established
// foreign-key attributes are promoted in place instead of creating a second
// column.
func (r *compileRun) foreignKey(rel *Relation, holderName, refName string, unique bool) {
	holder := r.schema.Table(holderName)
	ref := r.schema.Table(refName)
	if holder == nil || ref == nil {
		r.tracef("relationship %s: participant table missing, skipped", relName(rel))
		return
	}

	nullable := rel.ParticipationOf(holderName) != ParticipationTotal
	fkCols, refCols := r.hintedReferenceColumns(holder, ref, nullable)
	if !fkExists(holder, fkCols, ref.Name) {
		holder.ForeignKeys = append(holder.ForeignKeys, schema.ForeignKey{
			Columns:    fkCols,
			RefTable:   ref.Name,
			RefColumns: refCols,
		})
	}
	if unique && !hasUniqueConstraint(holder, fkCols) {
		holder.UniqueConstraints = append(holder.UniqueConstraints, fkCols)
	}

	for _, attr := range rel.Attributes {
		holder.AddColumn(attributeColumn(attr))
	}
	if len(rel.Attributes) > 0 {
		r.tracef("relationship %s: %d attributes placed on %s", relName(rel), len(rel.Attributes), holder.Name)
	}
}

// enrichAssociative resolves a ternary relationship by attaching foreign
// keys to the associative participant rather than materializing a junction.
func (r *compileRun) enrichAssociative(rel *Relation, assoc string) {
	r.tracef("relationship %s: %s identified as associative entity", relName(rel), assoc)
	holder := r.schema.Table(assoc)
	if holder == nil {
		r.junctionTable(rel)
		return
	}
	for _, name := range rel.Entities {
		if strings.EqualFold(name, assoc) {
			continue
		}
		r.foreignKey(rel, assoc, name, false)
	}
	for _, attr := range rel.Attributes {
		holder.AddColumn(attributeColumn(attr))
	}
}

// junctionTable materializes a relationship as its own table keyed by the
// union of all participant keys.
func (r *compileRun) junctionTable(rel *Relation) {
	name := junctionTableName(rel)
	if existing := r.schema.Table(name); existing != nil {
		r.tracef("relationship %s: table %s already exists, skipped", relName(rel), name)
		return
	}

	junction := &schema.Table{Name: name, IsJunctionTable: true}
	var pk []string
	for _, entityName := range rel.Entities {
		ref := r.schema.Table(entityName)
		if ref == nil {
			r.tracef("relationship %s: participant %s has no table, skipped", relName(rel), entityName)
			return
		}
		fkCols, refCols := r.referenceColumns(junction, ref, false)
		junction.ForeignKeys = append(junction.ForeignKeys, schema.ForeignKey{
			Columns:    fkCols,
			RefTable:   ref.Name,
			RefColumns: refCols,
		})
		pk = append(pk, fkCols...)
	}

	junction.PrimaryKey = pk
	for _, attr := range rel.Attributes {
		junction.AddColumn(attributeColumn(attr))
	}
	r.schema.AddTable(junction)
	r.tracef("relationship %s: M:N (or n-ary) -> junction table %s", relName(rel), name)
}

// referenceColumns adds one column to holder per primary-key column of ref
// and returns the parallel local and referenced column name lists. The
// referenced table is given a surrogate key first if it has none.
func (r *compileRun) referenceColumns(holder, ref *schema.Table, nullable bool) (fkCols, refCols []string) {
	refKey := r.ensureKey(ref)
	for _, refCol := range refKey {
		name := foreignKeyName(holder, ref.Name, refCol)
		colType := defaultColumnType
		if src := ref.Column(refCol); src != nil {
			colType = src.Type
		}
		holder.AddColumn(&schema.Column{Name: name, Type: colType, Nullable: nullable})
		fkCols = append(fkCols, name)
		refCols = append(refCols, refCol)
	}
	return fkCols, refCols
}

// hintedReferenceColumns is referenceColumns with promotion: when an earlier
// phase already named a foreign-key attribute on the holder for this
// reference, that column is reused instead of a new one.
func (r *compileRun) hintedReferenceColumns(holder, ref *schema.Table, nullable bool) (fkCols, refCols []string) {
	refKey := r.ensureKey(ref)
	hinted := r.hints[hintKey(holder.Name, ref.Name)]

	for i, refCol := range refKey {
		var name string
		if i < len(hinted) && holder.HasColumn(hinted[i]) {
			name = hinted[i]
			r.tracef("table %s: attribute %s promoted to foreign key referencing %s.%s",
				holder.Name, name, ref.Name, refCol)
		} else {
			name = foreignKeyName(holder, ref.Name, refCol)
		}
		colType := defaultColumnType
		if src := ref.Column(refCol); src != nil {
			colType = src.Type
		}
		col := holder.AddColumn(&schema.Column{Name: name, Type: colType, Nullable: nullable})
		// A promoted column keeps its declared name and type, but
		// participation still decides nullability.
		col.Nullable = nullable
		fkCols = append(fkCols, name)
		refCols = append(refCols, refCol)
	}
	return fkCols, refCols
}

// ensureKey returns the table's primary key, synthesizing a surrogate
// `<table>_id` column when no key was declared. Referencing tables need the
// key before the finalization pass runs.
func (r *compileRun) ensureKey(t *schema.Table) []string {
	if len(t.PrimaryKey) > 0 {
		return t.PrimaryKey
	}
	name := surrogateKeyName(t.Name)
	t.AddColumn(&schema.Column{Name: name, Type: surrogateKeyType, Nullable: false})
	t.PrimaryKey = []string{name}
	r.tracef("table %s: no declared key, surrogate %s added", t.Name, name)
	return t.PrimaryKey
}

// finalize guarantees the schema's key invariants: every table has a primary
// key, every key column exists, is non-nullable, and is flagged as such.
// Keyless tables with two or more foreign keys and no id-like column are
// keyed by their foreign-key columns; everything else gets a surrogate.
func (r *compileRun) finalize() {
	for _, t := range r.schema.Tables {
		if len(t.PrimaryKey) == 0 {
			switch {
			case len(t.ForeignKeys) >= 2 && r.idLikeColumn(t) == nil:
				for _, fk := range t.ForeignKeys {
					t.PrimaryKey = append(t.PrimaryKey, fk.Columns...)
				}
				r.tracef("table %s: keyed by its %d foreign keys", t.Name, len(t.ForeignKeys))
			case r.idLikeColumn(t) != nil:
				t.PrimaryKey = []string{r.idLikeColumn(t).Name}
				r.tracef("table %s: existing id column adopted as primary key", t.Name)
			default:
				r.ensureKey(t)
			}
		}
		for _, name := range t.PrimaryKey {
			col := t.Column(name)
			if col == nil {
				col = t.AddColumn(&schema.Column{Name: name, Type: surrogateKeyType})
			}
			col.IsPrimaryKey = true
			col.Nullable = false
		}
	}
}

// idLikeColumn finds a column usable as an adopted key: named id or
// `<table>_id` and not part of a foreign key.
func (r *compileRun) idLikeColumn(t *schema.Table) *schema.Column {
	for _, name := range []string{"id", surrogateKeyName(t.Name)} {
		if col := t.Column(name); col != nil && !t.IsForeignKeyColumn(col.Name) {
			return col
		}
	}
	return nil
}

func attributeColumn(a Attribute) *schema.Column {
	colType := a.TypeHint
	if colType == "" {
		colType = defaultColumnType
	}
	col := &schema.Column{Name: a.Name, Type: colType, Nullable: a.IsNullable()}
	if a.IsDerived {
		col.Extra = map[string]any{"is_derived": true}
	}
	return col
}

func indexHints(hints []FKHint) map[string][]string {
	index := make(map[string][]string, len(hints))
	for _, h := range hints {
		key := hintKey(h.Entity, h.RefEntity)
		index[key] = append(index[key], h.Attribute)
	}
	return index
}

func hintKey(entity, refEntity string) string {
	return strings.ToLower(entity) + "\x00" + strings.ToLower(refEntity)
}

func fkExists(t *schema.Table, cols []string, refTable string) bool {
	for _, fk := range t.ForeignKeys {
		if fk.RefTable != refTable || len(fk.Columns) != len(cols) {
			continue
		}
		same := true
		for i := range cols {
			if !strings.EqualFold(fk.Columns[i], cols[i]) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func hasUniqueConstraint(t *schema.Table, cols []string) bool {
	for _, uc := range t.UniqueConstraints {
		if len(uc) != len(cols) {
			continue
		}
		same := true
		for i := range cols {
			if !strings.EqualFold(uc[i], cols[i]) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func relName(rel *Relation) string {
	if rel.Name != "" {
		return rel.Name
	}
	return strings.Join(rel.Entities, "-")
}
