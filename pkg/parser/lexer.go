// Package parser provides lexing and parsing of relforge expressions into
// abstract syntax trees. Syntax errors are fail-fast; semantic checking is
// the job of pkg/semantic.
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/relforge/relforge/pkg/grammar"
	"github.com/relforge/relforge/pkg/token"
)

// Lexer tokenizes expression input for one grammar.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	grammar grammar.Grammar
	err     *LexError
}

// NewLexer creates a lexer for the given input and grammar.
func NewLexer(input string, g grammar.Grammar) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		col:     0,
		grammar: g,
	}
	l.readChar()
	return l
}

// Err returns the lexical error encountered, if any.
func (l *Lexer) Err() *LexError { return l.err }

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// NextToken returns the next token. After an error it returns ILLEGAL and
// records the error in Err.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	pos := l.currentPos()

	var tok token.Token
	switch l.ch {
	case 0:
		tok = token.New(token.EOF, "", pos)
		return tok
	case '+':
		tok = token.New(token.PLUS, "+", pos)
	case '-':
		tok = token.New(token.MINUS, "-", pos)
	case '*':
		tok = token.New(token.STAR, "*", pos)
	case '/':
		tok = token.New(token.SLASH, "/", pos)
	case '%':
		tok = token.New(token.PERCENT, "%", pos)
	case '~':
		tok = token.New(token.TILDE, "~", pos)
	case '=':
		tok = token.New(token.EQ, "=", pos)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.New(token.NE, "!=", pos)
		} else {
			return l.fail(pos, '!', "'!' must be followed by '='")
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = token.New(token.LE, "<=", pos)
		case '>':
			l.readChar()
			tok = token.New(token.NE, "<>", pos)
		default:
			tok = token.New(token.LT, "<", pos)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.New(token.GE, ">=", pos)
		} else {
			tok = token.New(token.GT, ">", pos)
		}
	case ',':
		tok = token.New(token.COMMA, ",", pos)
	case '(':
		tok = token.New(token.LPAREN, "(", pos)
	case ')':
		tok = token.New(token.RPAREN, ")", pos)
	case '[':
		tok = token.New(token.LBRACKET, "[", pos)
	case ']':
		tok = token.New(token.RBRACKET, "]", pos)
	case '.':
		tok = token.New(token.DOT, ".", pos)
	case '\'', '"':
		lit, ok := l.readString(l.ch)
		if !ok {
			return l.fail(pos, rune(l.input[pos.Offset]), "unterminated string literal")
		}
		return token.New(token.STRING, lit, pos)
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			raw := l.readIdentifier()
			t := token.LookupIdent(raw)
			if t == token.IDENT {
				// Gated keywords (BETWEEN, IS) only lex as keywords when the
				// grammar profile enables them.
				if gt, ok := token.LookupGated(raw); ok {
					if _, enabled := l.grammar.LookupKeyword(raw); enabled {
						t = gt
					}
				}
			}
			return token.New(t, raw, pos)
		case isDigit(l.ch):
			return token.New(token.NUMBER, l.readNumber(), pos)
		default:
			// Decode the full rune so a multi-byte character is reported as
			// itself, not as its first byte.
			r := rune(l.ch)
			if r >= utf8.RuneSelf {
				r, _ = utf8.DecodeRuneInString(l.input[l.pos:])
			}
			return l.fail(pos, r, "character not allowed in expressions")
		}
	}

	l.readChar()
	return tok
}

// fail records a lexical error and returns an ILLEGAL token.
func (l *Lexer) fail(pos token.Position, ch rune, msg string) token.Token {
	if l.err == nil {
		l.err = &LexError{Pos: pos, Message: msg, InvalidChar: ch}
	}
	l.readChar()
	return token.New(token.ILLEGAL, string(ch), pos)
}

// skipWhitespace skips spaces, tabs and newlines.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString reads a quoted string literal. Both single and double quotes
// are accepted; a doubled quote is an escape ('it''s' -> it's).
func (l *Lexer) readString(quote byte) (string, bool) {
	l.readChar() // skip opening quote

	var result strings.Builder
	for l.ch != 0 {
		if l.ch == quote {
			if l.peekChar() == quote {
				result.WriteByte(quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return result.String(), true
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return "", false
}

// readIdentifier reads an identifier, including dots, so `Order.total`
// arrives as one token. The lexer does not restrict dot depth; the semantic
// analyzer rejects paths deeper than two segments.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		// A dot must be followed by a name character to belong to the
		// identifier, otherwise it is left for the next token.
		if l.ch == '.' {
			next := l.peekChar()
			if !isLetter(next) && next != '_' {
				break
			}
		}
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		if next := l.peekChar(); isDigit(next) || next == '+' || next == '-' {
			l.readChar() // skip 'e' or 'E'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return l.input[start:l.pos]
}

// isLetter accepts ASCII letters only. Identifiers are ASCII; anything
// beyond that hits the invalid-character path, which decodes the full rune
// for the error report.
func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens for the input under the given grammar, or the
// first lexical error.
func Tokenize(input string, g grammar.Grammar) ([]token.Token, error) {
	l := NewLexer(input, g)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if l.Err() != nil {
			return nil, l.Err()
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens, nil
}
