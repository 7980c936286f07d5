package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/pkg/grammar"
	"github.com/relforge/relforge/pkg/token"
)

func tokenTypes(t *testing.T, input string, g grammar.Grammar) []token.Type {
	t.Helper()
	toks, err := Tokenize(input, g)
	require.NoError(t, err)
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestLexer_BasicTokens(t *testing.T) {
	g := grammar.Build(grammar.Base())

	tests := []struct {
		name  string
		input string
		want  []token.Type
	}{
		{
			name:  "arithmetic",
			input: "quantity * unit_price + 1",
			want:  []token.Type{token.IDENT, token.STAR, token.IDENT, token.PLUS, token.NUMBER, token.EOF},
		},
		{
			name:  "comparison operators",
			input: "a >= 1 and b != 2 or c <> 3",
			want: []token.Type{token.IDENT, token.GE, token.NUMBER, token.AND,
				token.IDENT, token.NE, token.NUMBER, token.OR,
				token.IDENT, token.NE, token.NUMBER, token.EOF},
		},
		{
			name:  "sampling",
			input: "x ~ NORMAL(0, 1)",
			want: []token.Type{token.IDENT, token.TILDE, token.IDENT, token.LPAREN,
				token.NUMBER, token.COMMA, token.NUMBER, token.RPAREN, token.EOF},
		},
		{
			name:  "list literal",
			input: "status IN ['a', 'b']",
			want: []token.Type{token.IDENT, token.IN, token.LBRACKET, token.STRING,
				token.COMMA, token.STRING, token.RBRACKET, token.EOF},
		},
		{
			name:  "keywords are case-insensitive",
			input: "if true then 1 else 0",
			want: []token.Type{token.IF, token.TRUE, token.THEN, token.NUMBER,
				token.ELSE, token.NUMBER, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenTypes(t, tt.input, g))
		})
	}
}

func TestLexer_DottedIdentifiers(t *testing.T) {
	g := grammar.Build(grammar.Base())

	toks, err := Tokenize("Order.total + customer.region.name", g)
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, "Order.total", toks[0].Literal)
	assert.Equal(t, token.IDENT, toks[0].Type)
	assert.Equal(t, "customer.region.name", toks[2].Literal)
}

func TestLexer_TrailingDotStaysSeparate(t *testing.T) {
	g := grammar.Build(grammar.Base())

	toks, err := Tokenize("total. ", g)
	require.NoError(t, err)
	assert.Equal(t, "total", toks[0].Literal)
	assert.Equal(t, token.DOT, toks[1].Type)
}

func TestLexer_Numbers(t *testing.T) {
	g := grammar.Build(grammar.Base())

	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e6", "1e6"},
		{"2.5E-3", "2.5E-3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input, g)
			require.NoError(t, err)
			assert.Equal(t, token.NUMBER, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
		})
	}
}

func TestLexer_Strings(t *testing.T) {
	g := grammar.Build(grammar.Base())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single quotes", "'hello'", "hello"},
		{"double quotes", `"hello"`, "hello"},
		{"doubled quote escape", "'it''s'", "it's"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input, g)
			require.NoError(t, err)
			assert.Equal(t, token.STRING, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
		})
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	g := grammar.Build(grammar.Base())

	_, err := Tokenize("'oops", g)
	require.Error(t, err)
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, lexErr.Message, "unterminated")
}

func TestLexer_InvalidCharacter(t *testing.T) {
	g := grammar.Build(grammar.Base())

	_, err := Tokenize("a @ b", g)
	require.Error(t, err)
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, '@', lexErr.InvalidChar)
	assert.Equal(t, 1, lexErr.Pos.Line)
	assert.Equal(t, 3, lexErr.Pos.Column)
}

func TestLexer_InvalidMultiByteCharacter(t *testing.T) {
	g := grammar.Build(grammar.Base())

	tests := []struct {
		name  string
		input string
		want  rune
		col   int
	}{
		{"accented letter", "é", 'é', 1},
		{"symbol after identifier", "price_€", '€', 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input, g)
			require.Error(t, err)
			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			// The error reports the whole character, not its first byte.
			assert.Equal(t, tt.want, lexErr.InvalidChar)
			assert.Equal(t, 1, lexErr.Pos.Line)
			assert.Equal(t, tt.col, lexErr.Pos.Column)
		})
	}
}

func TestLexer_GatedKeywords(t *testing.T) {
	base := grammar.Build(grammar.Base())
	full := grammar.Build(grammar.Full())

	// Without the features BETWEEN and IS lex as plain identifiers.
	toks, err := Tokenize("between is", base)
	require.NoError(t, err)
	assert.Equal(t, token.IDENT, toks[0].Type)
	assert.Equal(t, token.IDENT, toks[1].Type)

	toks, err = Tokenize("between is", full)
	require.NoError(t, err)
	assert.Equal(t, token.BETWEEN, toks[0].Type)
	assert.Equal(t, token.IS, toks[1].Type)
}

func TestLexer_Positions(t *testing.T) {
	g := grammar.Build(grammar.Base())

	toks, err := Tokenize("a +\n  b", g)
	require.NoError(t, err)
	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 3, Offset: 2}, toks[1].Pos)
	assert.Equal(t, 2, toks[2].Pos.Line)
	assert.Equal(t, 3, toks[2].Pos.Column)
}
