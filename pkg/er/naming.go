package er

import (
	"strings"

	"github.com/relforge/relforge/pkg/schema"
)

// foreignKeyName picks the column name a foreign key uses in the holding
// table. The referenced column's own name is reused when the holder has no
// column with that name; on collision the name is prefixed with the
// referenced table, `<RefTable>_<column>`.
func foreignKeyName(holder *schema.Table, refTable, refColumn string) string {
	if !holder.HasColumn(refColumn) {
		return refColumn
	}
	prefixed := refTable + "_" + refColumn
	if !holder.HasColumn(prefixed) {
		return prefixed
	}
	// Both taken: the plain name is already this exact reference (promotion
	// case) or the caller re-ran compilation over its own output. Either way
	// the prefixed form is the stable answer.
	return prefixed
}

// surrogateKeyName is the synthesized key column for tables without a
// declared primary key: `<table>_id`, lowercased.
func surrogateKeyName(tableName string) string {
	return strings.ToLower(tableName) + "_id"
}

// junctionTableName names the table materialized for an M:N or n-ary
// relationship: the relationship's own name when it has one, otherwise the
// participant names joined with underscores.
func junctionTableName(rel *Relation) string {
	if rel.Name != "" {
		return rel.Name
	}
	return strings.Join(rel.Entities, "_")
}

// sideTableName names the table extracted for a multivalued attribute.
func sideTableName(entity, attribute string) string {
	return entity + "_" + attribute
}
