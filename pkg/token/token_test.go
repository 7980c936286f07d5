package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		input string
		want  Type
	}{
		{"and", AND},
		{"AND", AND},
		{"If", IF},
		{"null", NULL},
		{"true", TRUE},
		{"between", IDENT}, // gated, not a base keyword
		{"is", IDENT},
		{"total", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIdent(tt.input))
		})
	}
}

func TestLookupGated(t *testing.T) {
	typ, ok := LookupGated("BETWEEN")
	assert.True(t, ok)
	assert.Equal(t, BETWEEN, typ)

	typ, ok = LookupGated("is")
	assert.True(t, ok)
	assert.Equal(t, IS, typ)

	_, ok = LookupGated("and")
	assert.False(t, ok)
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryKeyword, CategoryOf(AND))
	assert.Equal(t, CategoryOperator, CategoryOf(PLUS))
	assert.Equal(t, CategoryIdentifier, CategoryOf(IDENT))
	assert.Equal(t, CategoryLiteral, CategoryOf(NUMBER))
	assert.Equal(t, CategoryPunctuation, CategoryOf(LPAREN))
}

func TestNewAttachesCategory(t *testing.T) {
	tok := New(NUMBER, "42", Position{Line: 1, Column: 1})
	assert.Equal(t, CategoryLiteral, tok.Category)
	assert.Equal(t, "42", tok.Literal)
}
