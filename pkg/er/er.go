// Package er models entity-relationship designs and compiles them into
// relational schemas. Compilation is deterministic and never fails on
// malformed-but-plausible input: fallback decisions are recorded in a trace
// instead of aborting the run.
package er

import "strings"

// Cardinality of one entity's participation in a relationship.
type Cardinality string

// Cardinalities.
const (
	CardinalityOne  Cardinality = "1"
	CardinalityMany Cardinality = "N"
)

// Participation of one entity in a relationship.
type Participation string

// Participations.
const (
	ParticipationTotal   Participation = "total"
	ParticipationPartial Participation = "partial"
)

// Attribute is one attribute of an entity or relationship. Composite
// attributes carry their atomic components in Decomposition; multivalued
// attributes are extracted into side tables during compilation. Extra
// preserves fields from upstream phases this core does not interpret.
type Attribute struct {
	Name          string         `json:"name" yaml:"name"`
	TypeHint      string         `json:"type_hint,omitempty" yaml:"type_hint,omitempty"`
	Nullable      *bool          `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	IsDerived     bool           `json:"is_derived,omitempty" yaml:"is_derived,omitempty"`
	IsMultivalued bool           `json:"is_multivalued,omitempty" yaml:"is_multivalued,omitempty"`
	IsComposite   bool           `json:"is_composite,omitempty" yaml:"is_composite,omitempty"`
	Decomposition []Attribute    `json:"decomposition,omitempty" yaml:"decomposition,omitempty"`
	Extra         map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// IsNullable resolves the optional nullability flag; attributes default to
// nullable.
func (a Attribute) IsNullable() bool {
	if a.Nullable == nil {
		return true
	}
	return *a.Nullable
}

// Entity is one entity of the design.
type Entity struct {
	Name       string         `json:"name" yaml:"name"`
	Attributes []Attribute    `json:"attributes" yaml:"attributes"`
	PrimaryKey []string       `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Extra      map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Relation is an n-ary relationship. Entities lists the participant names;
// Arity equals len(Entities). Cardinalities and Participations are keyed by
// entity name.
type Relation struct {
	Name           string                   `json:"name,omitempty" yaml:"name,omitempty"`
	Entities       []string                 `json:"entities" yaml:"entities"`
	Arity          int                      `json:"arity,omitempty" yaml:"arity,omitempty"`
	Cardinalities  map[string]Cardinality   `json:"entity_cardinalities,omitempty" yaml:"entity_cardinalities,omitempty"`
	Participations map[string]Participation `json:"entity_participations,omitempty" yaml:"entity_participations,omitempty"`
	Attributes     []Attribute              `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Extra          map[string]any           `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// CardinalityOf returns the declared cardinality for an entity, defaulting
// to many.
func (r *Relation) CardinalityOf(entity string) Cardinality {
	for name, c := range r.Cardinalities {
		if strings.EqualFold(name, entity) {
			return c
		}
	}
	return CardinalityMany
}

// ParticipationOf returns the declared participation for an entity,
// defaulting to partial.
func (r *Relation) ParticipationOf(entity string) Participation {
	for name, p := range r.Participations {
		if strings.EqualFold(name, entity) {
			return p
		}
	}
	return ParticipationPartial
}

// Design is a complete ER design.
type Design struct {
	Entities  []Entity       `json:"entities" yaml:"entities"`
	Relations []Relation     `json:"relationships" yaml:"relationships"`
	Extra     map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Entity returns the named entity (case-insensitive), or nil.
func (d *Design) Entity(name string) *Entity {
	for i := range d.Entities {
		if strings.EqualFold(d.Entities[i].Name, name) {
			return &d.Entities[i]
		}
	}
	return nil
}

// FKHint records a foreign-key attribute pre-established by an earlier
// pipeline phase: the named attribute of Entity references RefEntity.
type FKHint struct {
	Entity    string `json:"entity" yaml:"entity"`
	Attribute string `json:"attribute" yaml:"attribute"`
	RefEntity string `json:"ref_entity" yaml:"ref_entity"`
}
