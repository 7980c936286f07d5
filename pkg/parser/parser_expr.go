package parser

import (
	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/token"
)

// parseExpression parses a full expression including an optional
// distribution-sampling tail `target ~ DIST(args)`. The sampling operator
// binds loosest and may appear at most once.
func (p *Parser) parseExpression() ast.Expr {
	left := p.parseOr()
	if p.failed() || !p.check(token.TILDE) {
		return left
	}
	p.nextToken() // consume ~

	pos := p.token.Pos
	call := p.parseCallAfterTilde(pos)
	if p.failed() {
		return nil
	}
	return &ast.SampleExpr{Target: left, Dist: call}
}

// parseCallAfterTilde requires a function-call form on the right side of ~.
func (p *Parser) parseCallAfterTilde(pos token.Position) *ast.FuncCall {
	if !p.check(token.IDENT) {
		p.errorf("expected a distribution call after '~', got %s", p.token.Type)
		return nil
	}
	name := p.token.Literal
	p.nextToken()
	if !p.expect(token.LPAREN) {
		return nil
	}
	args := p.parseArgList()
	if p.failed() {
		return nil
	}
	return &ast.FuncCall{Name: name, Args: args, Position: pos}
}

// parseOr parses OR chains (lowest boolean precedence).
func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for !p.failed() && p.check(token.OR) {
		p.nextToken()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Left: left, Op: token.OR, Right: right}
	}
	return left
}

// parseAnd parses AND chains.
func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for !p.failed() && p.check(token.AND) {
		p.nextToken()
		right := p.parseNot()
		left = &ast.BinaryExpr{Left: left, Op: token.AND, Right: right}
	}
	return left
}

// parseNot parses prefix NOT.
func (p *Parser) parseNot() ast.Expr {
	if p.check(token.NOT) {
		pos := p.token.Pos
		p.nextToken()
		operand := p.parseNot()
		return &ast.UnaryExpr{Op: token.NOT, Operand: operand, Position: pos}
	}
	return p.parseComparison()
}

// parseComparison parses an additive expression followed by comparison
// tails: the six relational operators, LIKE, [NOT] IN, and the
// profile-gated [NOT] BETWEEN and IS [NOT] NULL forms.
func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()

	for !p.failed() {
		switch p.token.Type {
		case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE, token.LIKE:
			op := p.token.Type
			p.nextToken()
			right := p.parseAdditive()
			left = &ast.BinaryExpr{Left: left, Op: op, Right: right}

		case token.IN:
			p.nextToken()
			left = p.parseInTail(left, false)

		case token.BETWEEN:
			p.nextToken()
			left = p.parseBetweenTail(left, false)

		case token.IS:
			left = p.parseIsTail(left)

		case token.NOT:
			// NOT as comparison tail introduces NOT IN / NOT BETWEEN / NOT LIKE.
			left = p.parseNotTail(left)

		default:
			return left
		}
	}
	return left
}

// parseNotTail handles `expr NOT IN ...`, `expr NOT BETWEEN ...` and
// `expr NOT LIKE ...`.
func (p *Parser) parseNotTail(left ast.Expr) ast.Expr {
	p.nextToken() // consume NOT

	switch p.token.Type {
	case token.IN:
		p.nextToken()
		return p.parseInTail(left, true)
	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenTail(left, true)
	case token.LIKE:
		p.nextToken()
		right := p.parseAdditive()
		like := &ast.BinaryExpr{Left: left, Op: token.LIKE, Right: right}
		return &ast.UnaryExpr{Op: token.NOT, Operand: like, Position: like.Pos()}
	default:
		if p.grammar.Between {
			p.errorf("expected IN, BETWEEN, or LIKE after NOT")
		} else {
			p.errorf("expected IN or LIKE after NOT")
		}
		return left
	}
}

// parseInTail parses the membership list of an IN expression.
func (p *Parser) parseInTail(left ast.Expr, not bool) ast.Expr {
	var values []ast.Expr
	switch {
	case p.match(token.LBRACKET):
		values = p.parseExpressionList(token.RBRACKET)
	case p.match(token.LPAREN):
		values = p.parseExpressionList(token.RPAREN)
	default:
		p.errorf("expected a list after IN, got %s", p.token.Type)
		return left
	}
	return &ast.InExpr{Operand: left, Not: not, Values: values}
}

// parseBetweenTail parses `low AND high`. Bounds parse at additive
// precedence so the separating AND is not captured by the bound expression.
func (p *Parser) parseBetweenTail(left ast.Expr, not bool) ast.Expr {
	low := p.parseAdditive()
	if !p.expect(token.AND) {
		return left
	}
	high := p.parseAdditive()
	return &ast.BetweenExpr{Operand: left, Not: not, Low: low, High: high}
}

// parseIsTail parses `IS [NOT] NULL`.
func (p *Parser) parseIsTail(left ast.Expr) ast.Expr {
	p.nextToken() // consume IS
	isNot := p.match(token.NOT)
	if !p.expect(token.NULL) {
		return left
	}
	return &ast.IsNullExpr{Operand: left, Not: isNot}
}

// parseAdditive parses + and - chains.
func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for !p.failed() && (p.check(token.PLUS) || p.check(token.MINUS)) {
		op := p.token.Type
		p.nextToken()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

// parseMultiplicative parses *, / and % chains.
func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for !p.failed() && (p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT)) {
		op := p.token.Type
		p.nextToken()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

// parseUnary parses prefix minus.
func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.MINUS) {
		pos := p.token.Pos
		p.nextToken()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Op: token.MINUS, Operand: operand, Position: pos}
	}
	return p.parsePrimary()
}

// parseExpressionList parses a comma-separated expression list up to and
// including the closing token.
func (p *Parser) parseExpressionList(closing token.Type) []ast.Expr {
	var exprs []ast.Expr
	if p.match(closing) {
		return exprs
	}
	for {
		exprs = append(exprs, p.parseOr())
		if p.failed() {
			return exprs
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(closing)
	return exprs
}

// parseArgList parses a function argument list up to and including the
// closing parenthesis. Arguments may be pair literals `(value, weight)`.
func (p *Parser) parseArgList() []ast.Expr {
	return p.parseExpressionList(token.RPAREN)
}
