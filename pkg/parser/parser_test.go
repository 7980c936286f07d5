package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/grammar"
	"github.com/relforge/relforge/pkg/token"
)

func parseOK(t *testing.T, input string, p grammar.Profile) ast.Expr {
	t.Helper()
	expr, err := Parse(input, grammar.Build(p))
	require.NoError(t, err, "input: %s", input)
	return expr
}

func TestParser_ValidExpressions(t *testing.T) {
	// Representative expressions that must parse under the full profile.
	inputs := []string{
		"quantity * unit_price",
		"price * (1 - discount / 100)",
		"-balance + 10",
		"IF age >= 18 AND is_active = true THEN 1 ELSE 0",
		"IF age >= 18 THEN 'adult'",
		"CASE WHEN score > 90 THEN 'A' WHEN score > 80 THEN 'B' ELSE 'C' END",
		"x ~ NORMAL(0, 1)",
		"category ~ CATEGORICAL(('a', 0.5), ('b', 0.5))",
		"status IN ['active', 'inactive']",
		"status NOT IN ('a', 'b')",
		"COALESCE(nickname, first_name, 'unknown')",
		"DATEADD('day', 30, created_at)",
		"Order.total > 100",
		"name LIKE 'A%'",
		"amount BETWEEN 0 AND 100",
		"amount NOT BETWEEN 0 AND 100",
		"ended_at IS NULL",
		"ended_at IS NOT NULL",
		"EXISTS(Customer.id, customer_id)",
		"NOT is_deleted",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			parseOK(t, input, grammar.Full())
		})
	}
}

func TestParser_Precedence(t *testing.T) {
	// a + b * c parses as a + (b * c)
	expr := parseOK(t, "a + b * c", grammar.Base())
	add, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, add.Op)
	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, mul.Op)

	// a = 1 OR b = 2 AND c = 3 parses as a=1 OR (b=2 AND c=3)
	expr = parseOK(t, "a = 1 OR b = 2 AND c = 3", grammar.Base())
	or, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.OR, or.Op)
	and, ok := or.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AND, and.Op)
}

func TestParser_SampleBindsLoosest(t *testing.T) {
	expr := parseOK(t, "x + y ~ NORMAL(0, 1)", grammar.Base())
	sample, ok := expr.(*ast.SampleExpr)
	require.True(t, ok)
	_, ok = sample.Target.(*ast.BinaryExpr)
	assert.True(t, ok, "the whole left side is the sample target")
	assert.Equal(t, "NORMAL", sample.Dist.Name)
	assert.Len(t, sample.Dist.Args, 2)
}

func TestParser_DottedIdentifier(t *testing.T) {
	expr := parseOK(t, "Order.total", grammar.Base())
	id, ok := expr.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "Order", id.Qualifier)
	assert.Equal(t, "total", id.Name)
	assert.Equal(t, "Order.total", id.Raw)
}

func TestParser_PairVersusParen(t *testing.T) {
	// A parenthesized expression with a comma is a (value, weight) pair.
	expr := parseOK(t, "('yes', 0.7)", grammar.Base())
	pair, ok := expr.(*ast.PairLiteral)
	require.True(t, ok)
	lit, ok := pair.Value.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "yes", lit.Value)

	// Without a comma it is plain grouping.
	expr = parseOK(t, "(1 + 2)", grammar.Base())
	_, ok = expr.(*ast.ParenExpr)
	assert.True(t, ok)
}

func TestParser_GatedSyntaxDisabled(t *testing.T) {
	// Without the between feature, BETWEEN is an identifier and the
	// expression no longer parses as a range check.
	_, err := Parse("amount BETWEEN 0 AND 100", grammar.Build(grammar.Base()))
	require.Error(t, err)

	_, err = Parse("ended_at IS NULL", grammar.Build(grammar.Base()))
	require.Error(t, err)
}

func TestParser_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"unbalanced paren", "(1 + 2"},
		{"unbalanced bracket", "a IN [1, 2"},
		{"trailing operator", "a +"},
		{"double operator", "a * * b"},
		{"missing then", "IF a > 1 2 ELSE 3"},
		{"case without when", "CASE ELSE 1 END"},
		{"case without end", "CASE WHEN a THEN 1"},
		{"dangling input", "1 + 2 3"},
		{"tilde without call", "x ~ 5"},
		{"between missing and", "a BETWEEN 1 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, grammar.Build(grammar.Full()))
			require.Error(t, err)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.NotEmpty(t, parseErr.Message)
		})
	}
}

func TestParser_FailFast(t *testing.T) {
	_, err := Parse("a + + b * * c", grammar.Build(grammar.Base()))
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	// The reported error is the first one encountered.
	assert.Equal(t, 1, parseErr.Pos.Line)
	assert.LessOrEqual(t, parseErr.Pos.Column, 6)
}

func TestCache_SharedGrammar(t *testing.T) {
	cache := NewCache()

	g1 := cache.Grammar(grammar.Full())
	g2 := cache.Grammar(grammar.Profile{
		Version: grammar.BaseVersion,
		Features: []grammar.Feature{
			grammar.FeatureRelationalConstraints,
			grammar.FeatureIsNull,
			grammar.FeatureBetween,
		},
	})
	// Same version and feature set, regardless of declaration order.
	assert.Equal(t, g1, g2)

	expr, err := cache.Parse("a BETWEEN 1 AND 2", grammar.Full())
	require.NoError(t, err)
	_, ok := expr.(*ast.BetweenExpr)
	assert.True(t, ok)
}
