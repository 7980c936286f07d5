package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Key(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{"base", Base(), "1.0"},
		{"full", Full(), "1.0+between,is_null,relational_constraints"},
		{
			"feature order is canonical",
			Profile{Version: "1.0", Features: []Feature{FeatureIsNull, FeatureBetween}},
			"1.0+between,is_null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.Key())
		})
	}
}

func TestBuild_FeatureGating(t *testing.T) {
	base := Build(Base())
	assert.False(t, base.Between)
	assert.False(t, base.IsNull)
	assert.False(t, base.RelationalFn)

	full := Build(Full())
	assert.True(t, full.Between)
	assert.True(t, full.IsNull)
	assert.True(t, full.RelationalFn)

	_, ok := base.LookupKeyword("between")
	assert.False(t, ok)
	_, ok = full.LookupKeyword("BETWEEN")
	assert.True(t, ok)
}

func TestBuild_UnknownFeatureIsFailClosed(t *testing.T) {
	g := Build(Profile{Version: BaseVersion, Features: []Feature{"hyperloops"}})
	// An unregistered feature must leave the base grammar untouched.
	assert.Equal(t, Build(Base()).Between, g.Between)
	assert.Equal(t, Build(Base()).IsNull, g.IsNull)
	assert.Empty(t, g.Keywords)
}

func TestParseFeatures(t *testing.T) {
	features := ParseFeatures([]string{" Between ", "IS_NULL", ""})
	assert.Equal(t, []Feature{FeatureBetween, FeatureIsNull}, features)
}
