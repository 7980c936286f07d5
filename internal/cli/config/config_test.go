package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/pkg/grammar"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	// A missing explicit config path is reported.
	require.Error(t, err)

	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDesignFile, cfg.Design)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, grammar.BaseVersion, cfg.Profile().Version)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relforge.yaml")
	content := `
design: schemas/shop.yaml
output: json
grammar:
  features: [between, is_null]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "schemas/shop.yaml", cfg.Design)
	assert.Equal(t, "json", cfg.Output)

	profile := cfg.Profile()
	assert.True(t, profile.Supports(grammar.FeatureBetween))
	assert.True(t, profile.Supports(grammar.FeatureIsNull))
	assert.False(t, profile.Supports(grammar.FeatureRelationalConstraints))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o600))
	t.Setenv("RELFORGE_OUTPUT", "yaml")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	t.Setenv("RELFORGE_OUTPUT", "yaml")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	flags.String("design", "", "")
	require.NoError(t, flags.Parse([]string{"--output=table", "--design=x.yaml"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "x.yaml", cfg.Design)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	t.Setenv("RELFORGE_DESIGN", "from_env.yaml")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("design", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_env.yaml", cfg.Design)
}
