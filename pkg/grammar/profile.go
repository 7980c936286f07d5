// Package grammar defines grammar profiles for the relforge expression
// language. A profile is a (version, feature set) pair. The base grammar is
// a fixed value; features add to it only at named extension points, and a
// feature without a registered extension point leaves the base grammar
// unchanged (fail-closed).
package grammar

import (
	"sort"
	"strings"

	"github.com/relforge/relforge/pkg/token"
)

// Feature names an optional grammar extension.
type Feature string

// Supported grammar features.
const (
	// FeatureBetween enables `x BETWEEN lo AND hi`.
	FeatureBetween Feature = "between"
	// FeatureIsNull enables `x IS [NOT] NULL`.
	FeatureIsNull Feature = "is_null"
	// FeatureRelationalConstraints enables cross-table constraint functions
	// (EXISTS, LOOKUP, COUNT_WHERE and friends, IN_RANGE).
	FeatureRelationalConstraints Feature = "relational_constraints"
)

// BaseVersion is the version of the unextended grammar.
const BaseVersion = "1.0"

// Profile selects a grammar version and the features layered on top of it.
type Profile struct {
	Version  string
	Features []Feature
}

// Base returns the profile for the unextended grammar.
func Base() Profile {
	return Profile{Version: BaseVersion}
}

// Full returns the profile with every known feature enabled.
func Full() Profile {
	return Profile{
		Version:  BaseVersion,
		Features: []Feature{FeatureBetween, FeatureIsNull, FeatureRelationalConstraints},
	}
}

// Supports reports whether the profile enables the given feature.
func (p Profile) Supports(f Feature) bool {
	for _, have := range p.Features {
		if have == f {
			return true
		}
	}
	return false
}

// Key returns a canonical cache key: version plus sorted feature names.
// Two profiles with the same version and feature set share one key.
func (p Profile) Key() string {
	names := make([]string, len(p.Features))
	for i, f := range p.Features {
		names[i] = string(f)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return p.Version
	}
	return p.Version + "+" + strings.Join(names, ",")
}

// ParseFeatures converts feature names (e.g. from a config file) into
// Features. Unknown names are kept verbatim; they hit no extension point and
// therefore have no effect on the grammar.
func ParseFeatures(names []string) []Feature {
	features := make([]Feature, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		features = append(features, Feature(n))
	}
	return features
}

// Grammar is the resolved token-level surface of the language for one
// profile: which gated keywords lex as keywords and which function families
// the registry exposes. The parser and registry consult it instead of the
// profile directly.
type Grammar struct {
	Version      string
	Keywords     map[string]token.Type // gated keywords enabled by features
	IsNull       bool                  // IS [NOT] NULL comparison tail
	Between      bool                  // BETWEEN comparison tail
	RelationalFn bool                  // relational constraint functions
}

// extensionPoints maps each feature to the grammar mutation it performs.
// Features absent from this map are ignored: the base grammar is never
// destabilized by an unknown or unsupported feature.
var extensionPoints = map[Feature]func(*Grammar){
	FeatureBetween: func(g *Grammar) {
		g.Between = true
		g.Keywords["between"] = token.BETWEEN
	},
	FeatureIsNull: func(g *Grammar) {
		g.IsNull = true
		g.Keywords["is"] = token.IS
	},
	FeatureRelationalConstraints: func(g *Grammar) {
		g.RelationalFn = true
	},
}

// Build resolves a profile into its grammar. The returned value is owned by
// the caller; Build never mutates shared state.
func Build(p Profile) Grammar {
	g := Grammar{
		Version:  p.Version,
		Keywords: make(map[string]token.Type),
	}
	for _, f := range p.Features {
		ext, ok := extensionPoints[f]
		if !ok {
			continue
		}
		ext(&g)
	}
	return g
}

// LookupKeyword returns the token type for a gated keyword enabled in this
// grammar, matching case-insensitively.
func (g Grammar) LookupKeyword(ident string) (token.Type, bool) {
	t, ok := g.Keywords[strings.ToLower(ident)]
	return t, ok
}
