package semantic

import (
	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/grammar"
	"github.com/relforge/relforge/pkg/parser"
	"github.com/relforge/relforge/pkg/registry"
)

// ColumnBoundDSL is an expression bound to one column: bare identifiers
// resolve against the anchor table before schema-wide fallback. Used for
// per-column constraints and derived-formula validation.
type ColumnBoundDSL struct {
	AnchorTable  string          `json:"anchor_table" yaml:"anchor_table"`
	AnchorColumn string          `json:"anchor_column" yaml:"anchor_column"`
	Expression   string          `json:"expression" yaml:"expression"`
	Profile      grammar.Profile `json:"-" yaml:"-"`
}

// Validate parses the bound expression with the cached parser for its
// profile and type-checks it against the schema context. Lexical and syntax
// failures are returned as the error; the ValidationResult carries only
// semantic diagnostics.
func (b ColumnBoundDSL) Validate(cache *parser.Cache, reg *registry.Registry, ctx *SchemaContext) (ValidationResult, error) {
	return ValidateExpression(b.Expression, b.Profile, cache, reg, ctx, b.AnchorTable, b.AnchorColumn)
}

// ValidateExpression is the strict end-to-end entry point: tokenize, parse,
// then analyze. Parse-stage failures abort immediately (fail-fast) and are
// returned as the error; otherwise the semantic result is returned with all
// accumulated diagnostics.
func ValidateExpression(input string, profile grammar.Profile, cache *parser.Cache, reg *registry.Registry, ctx *SchemaContext, anchorTable, anchorColumn string) (ValidationResult, error) {
	g := cache.Grammar(profile)
	expr, err := parser.Parse(input, g)
	if err != nil {
		return ValidationResult{}, err
	}
	analyzer := NewAnalyzer(reg, g)
	return analyzer.Check(expr, ctx, anchorTable, anchorColumn), nil
}

// CheckParsed analyzes an already-parsed expression under a profile,
// for callers that manage parsing themselves.
func CheckParsed(expr ast.Expr, profile grammar.Profile, cache *parser.Cache, reg *registry.Registry, ctx *SchemaContext, anchorTable, anchorColumn string) ValidationResult {
	analyzer := NewAnalyzer(reg, cache.Grammar(profile))
	return analyzer.Check(expr, ctx, anchorTable, anchorColumn)
}
