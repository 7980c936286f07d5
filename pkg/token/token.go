// Package token defines the lexical tokens of the relforge expression
// language and their source positions.
package token

import "fmt"

// Type identifies the lexical class of a token.
type Type int

// Token types.
const (
	EOF Type = iota
	ILLEGAL

	// Literals and identifiers
	IDENT  // quantity, Order.total
	NUMBER // 42, 3.14, 1e-5
	STRING // 'abc', "abc"

	// Operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	EQ      // =
	NE      // !=
	LT      // <
	LE      // <=
	GT      // >
	GE      // >=
	TILDE   // ~ (distribution sampling)

	// Punctuation
	DOT      // .
	COMMA    // ,
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Keywords
	IF
	THEN
	ELSE
	CASE
	WHEN
	END
	AND
	OR
	NOT
	LIKE
	IN
	TRUE
	FALSE
	NULL

	// Profile-gated keywords
	BETWEEN
	IS
)

var typeNames = map[Type]string{
	EOF:      "EOF",
	ILLEGAL:  "ILLEGAL",
	IDENT:    "IDENT",
	NUMBER:   "NUMBER",
	STRING:   "STRING",
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	EQ:       "=",
	NE:       "!=",
	LT:       "<",
	LE:       "<=",
	GT:       ">",
	GE:       ">=",
	TILDE:    "~",
	DOT:      ".",
	COMMA:    ",",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	IF:       "IF",
	THEN:     "THEN",
	ELSE:     "ELSE",
	CASE:     "CASE",
	WHEN:     "WHEN",
	END:      "END",
	AND:      "AND",
	OR:       "OR",
	NOT:      "NOT",
	LIKE:     "LIKE",
	IN:       "IN",
	TRUE:     "TRUE",
	FALSE:    "FALSE",
	NULL:     "NULL",
	BETWEEN:  "BETWEEN",
	IS:       "IS",
}

// String returns the display name of the token type.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Category is the coarse lexical category of a token.
type Category string

// Token categories.
const (
	CategoryKeyword     Category = "keyword"
	CategoryOperator    Category = "operator"
	CategoryIdentifier  Category = "identifier"
	CategoryLiteral     Category = "literal"
	CategoryPunctuation Category = "punctuation"
)

// CategoryOf returns the category for a token type.
func CategoryOf(t Type) Category {
	switch t {
	case IDENT:
		return CategoryIdentifier
	case NUMBER, STRING, TRUE, FALSE, NULL:
		return CategoryLiteral
	case PLUS, MINUS, STAR, SLASH, PERCENT, EQ, NE, LT, LE, GT, GE, TILDE:
		return CategoryOperator
	case DOT, COMMA, LPAREN, RPAREN, LBRACKET, RBRACKET:
		return CategoryPunctuation
	default:
		return CategoryKeyword
	}
}

// Position is a source location within an expression.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset
}

// String renders the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token with its source position.
type Token struct {
	Type     Type
	Literal  string
	Category Category
	Pos      Position
}

// New builds a token, deriving its category from the type.
func New(t Type, literal string, pos Position) Token {
	return Token{Type: t, Literal: literal, Category: CategoryOf(t), Pos: pos}
}
