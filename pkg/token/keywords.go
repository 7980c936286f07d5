package token

import "strings"

// baseKeywords are always recognized, case-insensitively.
var baseKeywords = map[string]Type{
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"case":  CASE,
	"when":  WHEN,
	"end":   END,
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"like":  LIKE,
	"in":    IN,
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

// gatedKeywords are only recognized when a grammar profile enables them.
// Without the gate they lex as plain identifiers.
var gatedKeywords = map[string]Type{
	"between": BETWEEN,
	"is":      IS,
}

// LookupIdent maps an identifier to its keyword type, or IDENT if it is not
// a base keyword. Keyword matching is case-insensitive.
func LookupIdent(ident string) Type {
	if t, ok := baseKeywords[strings.ToLower(ident)]; ok {
		return t
	}
	return IDENT
}

// LookupGated maps an identifier to a profile-gated keyword type.
func LookupGated(ident string) (Type, bool) {
	t, ok := gatedKeywords[strings.ToLower(ident)]
	return t, ok
}
