package semantic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/grammar"
	"github.com/relforge/relforge/pkg/registry"
	"github.com/relforge/relforge/pkg/token"
)

// Analyzer type-checks parsed expressions against a schema context. It is
// stateless across calls and safe for concurrent use; all per-call state
// lives in an internal checker.
type Analyzer struct {
	reg     *registry.Registry
	grammar grammar.Grammar
}

// NewAnalyzer creates an analyzer bound to a function registry and grammar.
func NewAnalyzer(reg *registry.Registry, g grammar.Grammar) *Analyzer {
	return &Analyzer{reg: reg, grammar: g}
}

// Check validates an expression against the schema context. anchorTable and
// anchorColumn may be empty; when set, bare identifiers resolve against the
// anchor table before falling back to schema-wide search. The analyzer is
// conservative: unknown types are provisionally compatible with any
// requirement, and it never fails on a type it cannot infer unless the
// identifier itself is invalid. All errors are accumulated.
func (a *Analyzer) Check(expr ast.Expr, ctx *SchemaContext, anchorTable, anchorColumn string) ValidationResult {
	c := &checker{
		reg:     a.reg,
		grammar: a.grammar,
		ctx:     ctx,
	}

	if anchorTable != "" {
		t, ok := ctx.Table(anchorTable)
		if !ok {
			c.add(SemanticError{
				Category:   CategoryInvalidAnchor,
				Message:    fmt.Sprintf("anchor table %q does not exist in the schema", anchorTable),
				Identifier: anchorTable,
			})
		} else {
			c.anchor = t
			if anchorColumn != "" {
				if _, ok := t.Column(anchorColumn); !ok {
					c.add(SemanticError{
						Category:   CategoryInvalidAnchor,
						Message:    fmt.Sprintf("anchor column %q does not exist in table %q", anchorColumn, anchorTable),
						Identifier: anchorColumn,
					})
				}
			}
		}
	}

	inferred := c.infer(expr)

	return ValidationResult{
		Valid:        len(c.errors) == 0,
		Errors:       c.errors,
		Warnings:     c.warnings,
		InferredType: inferred,
	}
}

// checker threads the error accumulator through one recursive traversal.
type checker struct {
	reg      *registry.Registry
	grammar  grammar.Grammar
	ctx      *SchemaContext
	anchor   *TableContext
	errors   []SemanticError
	warnings []SemanticError
}

func (c *checker) add(e SemanticError) {
	c.errors = append(c.errors, e)
}

func (c *checker) errorf(cat ErrorCategory, identifier, format string, args ...any) {
	c.add(SemanticError{Category: cat, Identifier: identifier, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) mismatch(identifier string, expected, actual CoarseType, format string, args ...any) {
	c.add(SemanticError{
		Category:   CategoryTypeMismatch,
		Identifier: identifier,
		Expected:   expected,
		Actual:     actual,
		Message:    fmt.Sprintf(format, args...),
	})
}

// infer computes the coarse type of an expression, accumulating errors as
// it goes. It never stops early: every subtree is visited exactly once.
func (c *checker) infer(expr ast.Expr) CoarseType {
	switch e := expr.(type) {
	case nil:
		return TypeUnknown

	case *ast.Literal:
		return literalType(e)

	case *ast.Identifier:
		return c.resolveIdentifier(e)

	case *ast.ParenExpr:
		return c.infer(e.Inner)

	case *ast.UnaryExpr:
		return c.inferUnary(e)

	case *ast.BinaryExpr:
		return c.inferBinary(e)

	case *ast.InExpr:
		return c.inferIn(e)

	case *ast.BetweenExpr:
		return c.inferBetween(e)

	case *ast.IsNullExpr:
		c.infer(e.Operand)
		return TypeBoolean

	case *ast.IfExpr:
		return c.inferIf(e)

	case *ast.CaseExpr:
		return c.inferCase(e)

	case *ast.FuncCall:
		return c.inferCall(e)

	case *ast.SampleExpr:
		return c.inferSample(e)

	case *ast.ListLiteral:
		return c.inferList(e.Elements)

	case *ast.PairLiteral:
		return c.inferPair(e)

	default:
		return TypeUnknown
	}
}

func literalType(l *ast.Literal) CoarseType {
	switch l.Kind {
	case ast.LiteralNumber:
		return TypeNumber
	case ast.LiteralString:
		return TypeString
	case ast.LiteralBool:
		return TypeBoolean
	default:
		return TypeUnknown
	}
}

// ---------- Identifier resolution ----------

// resolveIdentifier implements anchor-first resolution:
//  1. a dotted identifier must name an existing table and column;
//  2. a bare identifier resolves to the anchor table's column if present,
//     else to the single table containing it, else is ambiguous/unknown;
//  3. THIS.column resolves leniently against any table with that column;
//  4. paths deeper than two segments are rejected.
func (c *checker) resolveIdentifier(id *ast.Identifier) CoarseType {
	if strings.Count(id.Raw, ".") > 1 {
		c.errorf(CategoryUnknownIdentifier, id.Raw,
			"identifier %q has too many path segments; use column or table.column", id.Raw)
		return TypeUnknown
	}

	if id.Qualifier != "" {
		if strings.EqualFold(id.Qualifier, "this") {
			// Row-local reference: accept any table containing the column.
			tables := c.ctx.TablesWithColumn(id.Name)
			if len(tables) == 0 {
				c.errorf(CategoryUnknownIdentifier, id.Raw,
					"no table has a column named %q", id.Name)
				return TypeUnknown
			}
			ct, _ := tables[0].Column(id.Name)
			return ct
		}

		t, ok := c.ctx.Table(id.Qualifier)
		if !ok {
			c.errorf(CategoryUnknownIdentifier, id.Raw, "unknown table %q", id.Qualifier)
			return TypeUnknown
		}
		ct, ok := t.Column(id.Name)
		if !ok {
			c.errorf(CategoryUnknownIdentifier, id.Raw,
				"table %q has no column %q", t.Name, id.Name)
			return TypeUnknown
		}
		return ct
	}

	// Bare identifier: anchor first.
	if c.anchor != nil {
		if ct, ok := c.anchor.Column(id.Name); ok {
			return ct
		}
	}

	tables := c.ctx.TablesWithColumn(id.Name)
	switch len(tables) {
	case 0:
		c.errorf(CategoryUnknownIdentifier, id.Raw, "unknown identifier %q", id.Raw)
		return TypeUnknown
	case 1:
		ct, _ := tables[0].Column(id.Name)
		return ct
	default:
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = t.Name
		}
		c.add(SemanticError{
			Category:   CategoryAmbiguousIdentifier,
			Identifier: id.Raw,
			Message:    fmt.Sprintf("identifier %q is ambiguous across tables %s", id.Raw, strings.Join(names, ", ")),
			Suggestion: fmt.Sprintf("qualify it, e.g. %s.%s", names[0], id.Name),
		})
		return TypeUnknown
	}
}

// ---------- Operators ----------

func (c *checker) inferUnary(e *ast.UnaryExpr) CoarseType {
	operand := c.infer(e.Operand)
	switch e.Op {
	case token.MINUS:
		if operand != TypeUnknown && operand != TypeNumber {
			c.mismatch("", TypeNumber, operand, "unary minus requires a numeric operand, got %s", operand)
		}
		return TypeNumber
	case token.NOT:
		if operand != TypeUnknown && operand != TypeBoolean {
			c.mismatch("", TypeBoolean, operand, "NOT requires a boolean operand, got %s", operand)
		}
		return TypeBoolean
	default:
		return TypeUnknown
	}
}

func (c *checker) inferBinary(e *ast.BinaryExpr) CoarseType {
	left := c.infer(e.Left)
	right := c.infer(e.Right)

	switch e.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if left != TypeUnknown && left != TypeNumber {
			c.mismatch("", TypeNumber, left, "operator %s requires numeric operands, left side is %s", e.Op, left)
		}
		if right != TypeUnknown && right != TypeNumber {
			c.mismatch("", TypeNumber, right, "operator %s requires numeric operands, right side is %s", e.Op, right)
		}
		return TypeNumber

	case token.AND, token.OR:
		if left != TypeUnknown && left != TypeBoolean {
			c.mismatch("", TypeBoolean, left, "%s requires boolean operands, left side is %s", e.Op, left)
		}
		if right != TypeUnknown && right != TypeBoolean {
			c.mismatch("", TypeBoolean, right, "%s requires boolean operands, right side is %s", e.Op, right)
		}
		return TypeBoolean

	case token.LIKE:
		if left != TypeUnknown && left != TypeString {
			c.mismatch("", TypeString, left, "LIKE requires string operands, left side is %s", left)
		}
		if right != TypeUnknown && right != TypeString {
			c.mismatch("", TypeString, right, "LIKE requires string operands, right side is %s", right)
		}
		return TypeBoolean

	case token.EQ, token.NE:
		if left != TypeUnknown && right != TypeUnknown && left != right {
			c.mismatch("", left, right, "cannot compare %s with %s", left, right)
		}
		return TypeBoolean

	case token.LT, token.LE, token.GT, token.GE:
		if left == TypeBoolean || right == TypeBoolean {
			c.mismatch("", "", TypeBoolean, "ordering comparison %s does not apply to boolean operands", e.Op)
		} else if left != TypeUnknown && right != TypeUnknown && left != right {
			c.mismatch("", left, right, "cannot compare %s with %s", left, right)
		}
		return TypeBoolean

	default:
		return TypeUnknown
	}
}

func (c *checker) inferIn(e *ast.InExpr) CoarseType {
	left := c.infer(e.Operand)
	elem := c.inferList(e.Values)
	if left != TypeUnknown && elem != TypeUnknown && left != elem {
		c.mismatch("", elem, left, "IN list elements are %s but the tested value is %s", elem, left)
	}
	return TypeBoolean
}

// inferList types the elements of a list, requiring homogeneity among the
// known element types. Returns the shared element type or unknown.
func (c *checker) inferList(elems []ast.Expr) CoarseType {
	elemType := TypeUnknown
	for _, el := range elems {
		t := c.infer(el)
		if t == TypeUnknown {
			continue
		}
		if elemType == TypeUnknown {
			elemType = t
			continue
		}
		if t != elemType {
			c.mismatch("", elemType, t, "list elements must share one type, found %s and %s", elemType, t)
		}
	}
	return elemType
}

func (c *checker) inferBetween(e *ast.BetweenExpr) CoarseType {
	val := c.infer(e.Operand)
	low := c.infer(e.Low)
	high := c.infer(e.High)

	for _, t := range []CoarseType{val, low, high} {
		if t == TypeBoolean {
			c.mismatch("", "", TypeBoolean, "BETWEEN does not apply to boolean operands")
			return TypeBoolean
		}
	}
	known := TypeUnknown
	for _, t := range []CoarseType{val, low, high} {
		if t == TypeUnknown {
			continue
		}
		if known == TypeUnknown {
			known = t
		} else if t != known {
			c.mismatch("", known, t, "BETWEEN operands must share one type, found %s and %s", known, t)
		}
	}

	// With literal numeric bounds the range must be well-formed.
	if lowV, ok := literalNumber(e.Low); ok {
		if highV, ok2 := literalNumber(e.High); ok2 && lowV > highV {
			c.errorf(CategoryInvalidParameter, "",
				"BETWEEN bounds are inverted: %v > %v", lowV, highV)
		}
	}
	return TypeBoolean
}

func (c *checker) inferIf(e *ast.IfExpr) CoarseType {
	cond := c.infer(e.Cond)
	if cond != TypeUnknown && cond != TypeBoolean {
		c.mismatch("", TypeBoolean, cond, "IF condition must be boolean, got %s", cond)
	}
	thenType := c.infer(e.Then)
	if e.Else == nil {
		return thenType
	}
	elseType := c.infer(e.Else)
	if thenType != TypeUnknown && elseType != TypeUnknown && thenType != elseType {
		c.mismatch("", thenType, elseType,
			"IF branches disagree: THEN is %s but ELSE is %s", thenType, elseType)
	}
	if thenType != TypeUnknown {
		return thenType
	}
	return elseType
}

func (c *checker) inferCase(e *ast.CaseExpr) CoarseType {
	result := TypeUnknown
	for _, when := range e.Whens {
		cond := c.infer(when.Cond)
		if cond != TypeUnknown && cond != TypeBoolean {
			c.mismatch("", TypeBoolean, cond, "WHEN condition must be boolean, got %s", cond)
		}
		t := c.infer(when.Result)
		if t == TypeUnknown {
			continue
		}
		if result == TypeUnknown {
			result = t
		} else if t != result {
			c.mismatch("", result, t, "CASE branches disagree: %s vs %s", result, t)
		}
	}
	if e.Else != nil {
		t := c.infer(e.Else)
		if t != TypeUnknown {
			if result == TypeUnknown {
				result = t
			} else if t != result {
				c.mismatch("", result, t, "CASE ELSE branch is %s but WHEN branches are %s", t, result)
			}
		}
	}
	return result
}

func (c *checker) inferPair(e *ast.PairLiteral) CoarseType {
	valueType := c.infer(e.Value)
	weightType := c.infer(e.Weight)
	if weightType != TypeUnknown && weightType != TypeNumber {
		c.mismatch("", TypeNumber, weightType, "pair weight must be numeric, got %s", weightType)
	}
	return valueType
}

// literalNumber extracts the value of a (possibly negated) numeric literal.
func literalNumber(e ast.Expr) (float64, bool) {
	switch n := ast.Unwrap(e).(type) {
	case *ast.Literal:
		if n.Kind != ast.LiteralNumber {
			return 0, false
		}
		v, err := strconv.ParseFloat(n.Value, 64)
		return v, err == nil
	case *ast.UnaryExpr:
		if n.Op != token.MINUS {
			return 0, false
		}
		v, ok := literalNumber(n.Operand)
		return -v, ok
	default:
		return 0, false
	}
}
