// Package design loads pipeline design documents: YAML files carrying an ER
// design, key and dependency declarations, and column-bound expressions to
// validate. The document is the on-disk contract between the upstream
// drafting phases and this core.
package design

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/relforge/relforge/pkg/er"
	"github.com/relforge/relforge/pkg/grammar"
	"github.com/relforge/relforge/pkg/normalize"
)

// Expression is one column-bound DSL expression declared in the document.
type Expression struct {
	Table      string `yaml:"table" json:"table"`
	Column     string `yaml:"column" json:"column"`
	Expression string `yaml:"expression" json:"expression"`
	Kind       string `yaml:"kind,omitempty" json:"kind,omitempty"`
}

// GrammarSpec selects the grammar profile the document's expressions are
// written against.
type GrammarSpec struct {
	Version  string   `yaml:"version,omitempty" json:"version,omitempty"`
	Features []string `yaml:"features,omitempty" json:"features,omitempty"`
}

// Document is a complete design document.
type Document struct {
	Version                string                           `yaml:"version,omitempty" json:"version,omitempty"`
	Grammar                GrammarSpec                      `yaml:"grammar,omitempty" json:"grammar,omitempty"`
	Entities               []er.Entity                      `yaml:"entities" json:"entities"`
	Relationships          []er.Relation                    `yaml:"relationships,omitempty" json:"relationships,omitempty"`
	PrimaryKeys            map[string][]string              `yaml:"primary_keys,omitempty" json:"primary_keys,omitempty"`
	ForeignKeys            []er.FKHint                      `yaml:"foreign_keys,omitempty" json:"foreign_keys,omitempty"`
	UniqueConstraints      map[string][][]string            `yaml:"unique_constraints,omitempty" json:"unique_constraints,omitempty"`
	FunctionalDependencies []normalize.FunctionalDependency `yaml:"functional_dependencies,omitempty" json:"functional_dependencies,omitempty"`
	Expressions            []Expression                     `yaml:"expressions,omitempty" json:"expressions,omitempty"`
	Extra                  map[string]any                   `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// Load reads and parses a design document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading design document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse parses a design document and checks its structural minimums.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Entities) == 0 {
		return nil, fmt.Errorf("design document declares no entities")
	}
	for i, e := range doc.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("entity %d has no name", i)
		}
	}
	for i, rel := range doc.Relationships {
		if len(rel.Entities) < 2 {
			return nil, fmt.Errorf("relationship %d (%s) names fewer than two entities", i, rel.Name)
		}
	}
	return &doc, nil
}

// Design assembles the ER design from the document.
func (d *Document) Design() *er.Design {
	return &er.Design{
		Entities:  d.Entities,
		Relations: d.Relationships,
		Extra:     d.Extra,
	}
}

// CompileInput assembles the full ER compiler input.
func (d *Document) CompileInput() er.Input {
	return er.Input{
		Design:            d.Design(),
		PrimaryKeys:       d.PrimaryKeys,
		ForeignKeys:       d.ForeignKeys,
		UniqueConstraints: d.UniqueConstraints,
	}
}

// Profile resolves the document's grammar selection, defaulting to the base
// profile. Unknown feature names are rejected here so a typo fails loudly
// instead of silently disabling a feature.
func (d *Document) Profile() (grammar.Profile, error) {
	version := d.Grammar.Version
	if version == "" {
		version = grammar.BaseVersion
	}
	features := grammar.ParseFeatures(d.Grammar.Features)
	for _, f := range features {
		switch f {
		case grammar.FeatureBetween, grammar.FeatureIsNull, grammar.FeatureRelationalConstraints:
		default:
			return grammar.Profile{}, fmt.Errorf("unknown grammar feature %q", f)
		}
	}
	return grammar.Profile{Version: version, Features: features}, nil
}
