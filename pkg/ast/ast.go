// Package ast defines the abstract syntax tree of the relforge expression
// language. Trees are immutable once parsed; no node is shared cyclically.
package ast

import "github.com/relforge/relforge/pkg/token"

// Expr is the interface implemented by all expression nodes.
type Expr interface {
	Pos() token.Position
	exprNode()
}

// Identifier is a bare or dotted column reference. For `Order.total`,
// Qualifier is "Order" and Name is "total"; for `total` the Qualifier is
// empty. Raw preserves the original spelling including all dots, so the
// analyzer can reject paths deeper than two segments.
type Identifier struct {
	Qualifier string
	Name      string
	Raw       string
	Position  token.Position
}

func (*Identifier) exprNode() {}

// Pos implements Expr.
func (i *Identifier) Pos() token.Position { return i.Position }

// LiteralKind distinguishes literal value types.
type LiteralKind int

// Literal kinds.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a number, string, boolean, or null literal. Value holds the
// raw spelling for numbers and the unquoted text for strings.
type Literal struct {
	Kind     LiteralKind
	Value    string
	Position token.Position
}

func (*Literal) exprNode() {}

// Pos implements Expr.
func (l *Literal) Pos() token.Position { return l.Position }

// UnaryExpr is a prefix operator application (unary minus, NOT).
type UnaryExpr struct {
	Op       token.Type
	Operand  Expr
	Position token.Position
}

func (*UnaryExpr) exprNode() {}

// Pos implements Expr.
func (u *UnaryExpr) Pos() token.Position { return u.Position }

// BinaryExpr covers arithmetic (+ - * / %), comparison (= != < <= > >=),
// boolean (AND OR), and LIKE, with the operator as the token type.
type BinaryExpr struct {
	Left  Expr
	Op    token.Type
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// Pos implements Expr.
func (b *BinaryExpr) Pos() token.Position {
	if b.Left != nil {
		return b.Left.Pos()
	}
	return token.Position{}
}

// InExpr is `expr [NOT] IN [list]`.
type InExpr struct {
	Operand Expr
	Not     bool
	Values  []Expr
}

func (*InExpr) exprNode() {}

// Pos implements Expr.
func (i *InExpr) Pos() token.Position {
	if i.Operand != nil {
		return i.Operand.Pos()
	}
	return token.Position{}
}

// BetweenExpr is `expr [NOT] BETWEEN low AND high` (profile-gated).
type BetweenExpr struct {
	Operand Expr
	Not     bool
	Low     Expr
	High    Expr
}

func (*BetweenExpr) exprNode() {}

// Pos implements Expr.
func (b *BetweenExpr) Pos() token.Position {
	if b.Operand != nil {
		return b.Operand.Pos()
	}
	return token.Position{}
}

// IsNullExpr is `expr IS [NOT] NULL` (profile-gated).
type IsNullExpr struct {
	Operand Expr
	Not     bool
}

func (*IsNullExpr) exprNode() {}

// Pos implements Expr.
func (i *IsNullExpr) Pos() token.Position {
	if i.Operand != nil {
		return i.Operand.Pos()
	}
	return token.Position{}
}

// IfExpr is `IF cond THEN then ELSE else`.
type IfExpr struct {
	Cond     Expr
	Then     Expr
	Else     Expr
	Position token.Position
}

func (*IfExpr) exprNode() {}

// Pos implements Expr.
func (e *IfExpr) Pos() token.Position { return e.Position }

// WhenClause is one WHEN/THEN arm of a CASE expression.
type WhenClause struct {
	Cond   Expr
	Result Expr
}

// CaseExpr is `CASE WHEN ... THEN ... [ELSE ...] END`.
type CaseExpr struct {
	Whens    []WhenClause
	Else     Expr
	Position token.Position
}

func (*CaseExpr) exprNode() {}

// Pos implements Expr.
func (c *CaseExpr) Pos() token.Position { return c.Position }

// FuncCall is a function or distribution invocation `NAME(args...)`.
type FuncCall struct {
	Name     string
	Args     []Expr
	Position token.Position
}

func (*FuncCall) exprNode() {}

// Pos implements Expr.
func (f *FuncCall) Pos() token.Position { return f.Position }

// SampleExpr is a distribution-sampling binding `target ~ DIST(args...)`.
// The parser accepts any expression as Target; the analyzer requires a bare
// or qualified identifier.
type SampleExpr struct {
	Target Expr
	Dist   *FuncCall
}

func (*SampleExpr) exprNode() {}

// Pos implements Expr.
func (s *SampleExpr) Pos() token.Position {
	if s.Target != nil {
		return s.Target.Pos()
	}
	return token.Position{}
}

// ListLiteral is `[a, b, c]`.
type ListLiteral struct {
	Elements []Expr
	Position token.Position
}

func (*ListLiteral) exprNode() {}

// Pos implements Expr.
func (l *ListLiteral) Pos() token.Position { return l.Position }

// PairLiteral is a (value, weight) pair, used as CATEGORICAL arguments.
type PairLiteral struct {
	Value    Expr
	Weight   Expr
	Position token.Position
}

func (*PairLiteral) exprNode() {}

// Pos implements Expr.
func (p *PairLiteral) Pos() token.Position { return p.Position }

// ParenExpr is a parenthesized sub-expression kept for position fidelity.
type ParenExpr struct {
	Inner Expr
}

func (*ParenExpr) exprNode() {}

// Pos implements Expr.
func (p *ParenExpr) Pos() token.Position {
	if p.Inner != nil {
		return p.Inner.Pos()
	}
	return token.Position{}
}

// Unwrap strips any parenthesis wrappers around an expression.
func Unwrap(e Expr) Expr {
	for {
		paren, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = paren.Inner
	}
}
