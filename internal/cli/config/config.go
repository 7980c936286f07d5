// Package config loads relforge CLI configuration. Precedence, highest to
// lowest: flags > RELFORGE_ environment variables > relforge.yaml > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/relforge/relforge/pkg/grammar"
)

// Defaults.
const (
	DefaultDesignFile = "design.yaml"
	DefaultOutput     = "table"
)

// GrammarConfig selects the expression-grammar profile.
type GrammarConfig struct {
	Version  string   `koanf:"version"`
	Features []string `koanf:"features"`
}

// Config is the resolved CLI configuration.
type Config struct {
	Design  string        `koanf:"design"`
	Output  string        `koanf:"output"`
	Verbose bool          `koanf:"verbose"`
	Grammar GrammarConfig `koanf:"grammar"`
}

// Profile resolves the configured grammar profile.
func (c *Config) Profile() grammar.Profile {
	version := c.Grammar.Version
	if version == "" {
		version = grammar.BaseVersion
	}
	return grammar.Profile{
		Version:  version,
		Features: grammar.ParseFeatures(c.Grammar.Features),
	}
}

// findConfigFile picks the config file: explicit path, then relforge.yaml,
// then relforge.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"relforge.yaml", "relforge.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load layers defaults, the config file, RELFORGE_ environment variables and
// explicitly set flags into a Config.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"design":          DefaultDesignFile,
		"output":          DefaultOutput,
		"verbose":         false,
		"grammar.version": grammar.BaseVersion,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if used := findConfigFile(cfgFile); used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// RELFORGE_GRAMMAR_FEATURES -> grammar.features
	if err := k.Load(env.Provider("RELFORGE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RELFORGE_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", ".")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
