package parser

import (
	"fmt"
	"strings"

	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/grammar"
	"github.com/relforge/relforge/pkg/token"
)

// Parser parses a single expression into an AST.
//
// Grammar overview (precedence low to high):
//
//	expression  → or_expr [~ func_call]
//	or_expr     → and_expr (OR and_expr)*
//	and_expr    → not_expr (AND not_expr)*
//	not_expr    → NOT not_expr | comparison
//	comparison  → additive (comp_tail)*
//	comp_tail   → (= != < <= > >= LIKE) additive
//	            | [NOT] IN list
//	            | [NOT] BETWEEN additive AND additive   (profile-gated)
//	            | IS [NOT] NULL                         (profile-gated)
//	additive    → multiplicative ((+ -) multiplicative)*
//	multiplicative → unary ((* / %) unary)*
//	unary       → - unary | atom
//	atom        → literal | identifier | func_call | IF | CASE | list | ( expr [, expr] )
//
// Parsing is fail-fast: the first syntax error aborts and is returned.
type Parser struct {
	lexer   *Lexer
	input   string
	grammar grammar.Grammar
	token   token.Token // current token
	peek    token.Token // lookahead token
	err     error
}

// New creates a parser for the given input and grammar.
func New(input string, g grammar.Grammar) *Parser {
	p := &Parser{
		lexer:   NewLexer(input, g),
		input:   input,
		grammar: g,
	}
	// Read two tokens to initialize current and peek.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the input as a single expression under the given grammar.
func Parse(input string, g grammar.Grammar) (ast.Expr, error) {
	p := New(input, g)
	expr := p.parseExpression()
	if p.err != nil {
		return nil, p.err
	}
	if !p.check(token.EOF) {
		p.errorf(errUnexpectedToken, p.token.Type, token.EOF)
		return nil, p.err
	}
	return expr, nil
}

// ---------- Token helpers ----------

// nextToken advances to the next token, capturing lexical errors.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
	if lexErr := p.lexer.Err(); lexErr != nil && p.err == nil {
		p.err = lexErr
	}
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.Type) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise records an
// error and returns false.
func (p *Parser) expect(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	if p.check(token.EOF) {
		p.errorf(errUnexpectedEOF+", expected %s", t)
	} else {
		p.errorf(errUnexpectedToken, p.token.Type, t)
	}
	return false
}

// errorf records the first parse error; later calls are ignored so the
// error reported is the one closest to the true failure point.
func (p *Parser) errorf(format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{
		Pos:     p.token.Pos,
		Message: fmt.Sprintf(format, args...),
		Snippet: sourceLine(p.input, p.token.Pos.Line),
	}
}

// failed reports whether parsing already hit an error. Recursive parse
// functions bail out early when set to avoid cascading diagnostics.
func (p *Parser) failed() bool { return p.err != nil }

// sourceLine extracts one line of the original input for error context.
func sourceLine(input string, line int) string {
	lines := strings.Split(input, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], " \t\r")
}
