package parser

import (
	"fmt"

	"github.com/relforge/relforge/pkg/token"
)

// LexError is a lexical analysis failure. Lexing is fail-fast: the first
// invalid character aborts tokenization.
type LexError struct {
	Pos         token.Position
	Message     string
	InvalidChar rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexical error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// ParseError is a syntax failure with position and source context.
type ParseError struct {
	Pos     token.Position
	Message string
	Snippet string // the offending source line
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages.
const (
	errUnexpectedToken = "unexpected token %s, expected %s"
	errUnexpectedEOF   = "unexpected end of expression"
)
