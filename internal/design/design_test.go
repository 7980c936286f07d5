package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/pkg/er"
	"github.com/relforge/relforge/pkg/grammar"
)

const sampleDocument = `
version: "1"
grammar:
  version: "1.0"
  features: [between, relational_constraints]
entities:
  - name: Customer
    primary_key: [id]
    attributes:
      - name: id
        type_hint: INTEGER
        nullable: false
      - name: email
      - name: phone
        is_multivalued: true
  - name: Order
    attributes:
      - name: total
        type_hint: DECIMAL(10,2)
relationships:
  - name: places
    entities: [Customer, Order]
    entity_cardinalities:
      Customer: "1"
      Order: "N"
    entity_participations:
      Order: total
primary_keys:
  Order: [order_id]
unique_constraints:
  Customer:
    - [email]
functional_dependencies:
  - determinant: [email]
    dependent: [phone]
expressions:
  - table: Order
    column: total
    expression: "total ~ NORMAL(100, 15)"
`

func TestParse_FullDocument(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	require.Len(t, doc.Entities, 2)
	customer := doc.Entities[0]
	assert.Equal(t, "Customer", customer.Name)
	assert.Equal(t, []string{"id"}, customer.PrimaryKey)
	require.Len(t, customer.Attributes, 3)
	assert.False(t, customer.Attributes[0].IsNullable())
	assert.True(t, customer.Attributes[1].IsNullable(), "nullability defaults to true")
	assert.True(t, customer.Attributes[2].IsMultivalued)

	require.Len(t, doc.Relationships, 1)
	rel := doc.Relationships[0]
	assert.Equal(t, er.CardinalityOne, rel.CardinalityOf("Customer"))
	assert.Equal(t, er.ParticipationTotal, rel.ParticipationOf("Order"))

	assert.Equal(t, [][]string{{"email"}}, doc.UniqueConstraints["Customer"])
	require.Len(t, doc.FunctionalDependencies, 1)
	require.Len(t, doc.Expressions, 1)
	assert.Equal(t, "Order", doc.Expressions[0].Table)

	in := doc.CompileInput()
	assert.Equal(t, []string{"order_id"}, in.PrimaryKeys["Order"])
	assert.Len(t, in.Design.Entities, 2)
}

func TestParse_Profile(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	profile, err := doc.Profile()
	require.NoError(t, err)
	assert.True(t, profile.Supports(grammar.FeatureBetween))
	assert.True(t, profile.Supports(grammar.FeatureRelationalConstraints))
	assert.False(t, profile.Supports(grammar.FeatureIsNull))
}

func TestParse_DefaultsToBaseProfile(t *testing.T) {
	doc, err := Parse([]byte("entities:\n  - name: A\n    attributes:\n      - name: x\n"))
	require.NoError(t, err)

	profile, err := doc.Profile()
	require.NoError(t, err)
	assert.Equal(t, grammar.BaseVersion, profile.Version)
	assert.Empty(t, profile.Features)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not yaml", ":\n:::"},
		{"no entities", "version: '1'\n"},
		{"unnamed entity", "entities:\n  - attributes: []\n"},
		{"degenerate relationship", "entities:\n  - name: A\nrelationships:\n  - entities: [A]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParse_UnknownGrammarFeature(t *testing.T) {
	doc, err := Parse([]byte("grammar:\n  features: [warp_drive]\nentities:\n  - name: A\n"))
	require.NoError(t, err)
	_, err = doc.Profile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warp_drive")
}
