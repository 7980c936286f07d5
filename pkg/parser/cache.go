package parser

import (
	"sync"

	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/grammar"
)

// Cache resolves grammar profiles to built grammars once and reuses them.
// Profiles form a small closed set and building a grammar is the expensive
// step, so the cache is read-mostly behind an RWMutex. Construct one Cache
// at startup and inject it; there is no package-level instance.
type Cache struct {
	mu       sync.RWMutex
	grammars map[string]grammar.Grammar
}

// NewCache creates an empty parser cache.
func NewCache() *Cache {
	return &Cache{grammars: make(map[string]grammar.Grammar)}
}

// Grammar returns the built grammar for a profile, building it on first use.
func (c *Cache) Grammar(p grammar.Profile) grammar.Grammar {
	key := p.Key()

	c.mu.RLock()
	g, ok := c.grammars[key]
	c.mu.RUnlock()
	if ok {
		return g
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok = c.grammars[key]; ok {
		return g
	}
	g = grammar.Build(p)
	c.grammars[key] = g
	return g
}

// Parse parses input under the profile's cached grammar.
func (c *Cache) Parse(input string, p grammar.Profile) (ast.Expr, error) {
	return Parse(input, c.Grammar(p))
}
