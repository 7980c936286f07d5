package parser

import (
	"strings"

	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/token"
)

// parsePrimary parses an atom: a literal, identifier, function call,
// IF or CASE conditional, list literal, or parenthesized expression /
// pair literal.
func (p *Parser) parsePrimary() ast.Expr {
	pos := p.token.Pos

	switch p.token.Type {
	case token.NUMBER:
		lit := &ast.Literal{Kind: ast.LiteralNumber, Value: p.token.Literal, Position: pos}
		p.nextToken()
		return lit

	case token.STRING:
		lit := &ast.Literal{Kind: ast.LiteralString, Value: p.token.Literal, Position: pos}
		p.nextToken()
		return lit

	case token.TRUE, token.FALSE:
		lit := &ast.Literal{Kind: ast.LiteralBool, Value: strings.ToLower(p.token.Literal), Position: pos}
		p.nextToken()
		return lit

	case token.NULL:
		lit := &ast.Literal{Kind: ast.LiteralNull, Value: "null", Position: pos}
		p.nextToken()
		return lit

	case token.IDENT:
		return p.parseIdentOrCall()

	case token.IF:
		return p.parseIfExpr()

	case token.CASE:
		return p.parseCaseExpr()

	case token.LBRACKET:
		p.nextToken()
		elems := p.parseExpressionList(token.RBRACKET)
		return &ast.ListLiteral{Elements: elems, Position: pos}

	case token.LPAREN:
		return p.parseParenOrPair()

	case token.EOF:
		p.errorf(errUnexpectedEOF)
		return nil

	default:
		p.errorf("unexpected token %s", p.token.Type)
		return nil
	}
}

// parseIdentOrCall parses an identifier reference or, when immediately
// followed by '(', a function call.
func (p *Parser) parseIdentOrCall() ast.Expr {
	pos := p.token.Pos
	raw := p.token.Literal
	p.nextToken()

	if p.match(token.LPAREN) {
		args := p.parseArgList()
		return &ast.FuncCall{Name: raw, Args: args, Position: pos}
	}

	ident := &ast.Identifier{Raw: raw, Position: pos}
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		ident.Qualifier = raw[:i]
		ident.Name = raw[i+1:]
	} else {
		ident.Name = raw
	}
	return ident
}

// parseIfExpr parses `IF cond THEN then [ELSE else]`.
func (p *Parser) parseIfExpr() ast.Expr {
	pos := p.token.Pos
	p.nextToken() // consume IF

	cond := p.parseOr()
	if !p.expect(token.THEN) {
		return nil
	}
	then := p.parseOr()

	var elseExpr ast.Expr
	if p.match(token.ELSE) {
		elseExpr = p.parseOr()
	}
	return &ast.IfExpr{Cond: cond, Then: then, Else: elseExpr, Position: pos}
}

// parseCaseExpr parses `CASE WHEN cond THEN result ... [ELSE else] END`.
func (p *Parser) parseCaseExpr() ast.Expr {
	pos := p.token.Pos
	p.nextToken() // consume CASE

	caseExpr := &ast.CaseExpr{Position: pos}
	if !p.check(token.WHEN) {
		p.errorf("expected WHEN after CASE, got %s", p.token.Type)
		return nil
	}
	for p.match(token.WHEN) {
		cond := p.parseOr()
		if !p.expect(token.THEN) {
			return nil
		}
		result := p.parseOr()
		caseExpr.Whens = append(caseExpr.Whens, ast.WhenClause{Cond: cond, Result: result})
		if p.failed() {
			return nil
		}
	}
	if p.match(token.ELSE) {
		caseExpr.Else = p.parseOr()
	}
	if !p.expect(token.END) {
		return nil
	}
	return caseExpr
}

// parseParenOrPair parses either a grouping `(expr)` or a pair literal
// `(value, weight)`, disambiguated by the comma.
func (p *Parser) parseParenOrPair() ast.Expr {
	pos := p.token.Pos
	p.nextToken() // consume (

	first := p.parseOr()
	if p.failed() {
		return nil
	}

	if p.match(token.COMMA) {
		weight := p.parseOr()
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.PairLiteral{Value: first, Weight: weight, Position: pos}
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	return &ast.ParenExpr{Inner: first}
}
