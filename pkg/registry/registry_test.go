package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := Default()

	tests := []struct {
		name  string
		query string
		found bool
	}{
		{"exact", "UPPER", true},
		{"lower case", "upper", true},
		{"mixed case", "CoAlEsCe", true},
		{"dotted suffix ignored", "ROUND.something", true},
		{"distribution as function", "NORMAL", true},
		{"unknown", "FOO", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := reg.Lookup(tt.query)
			assert.Equal(t, tt.found, ok)
		})
	}
}

func TestRegistry_Arity(t *testing.T) {
	reg := Default()

	round, ok := reg.Lookup("ROUND")
	require.True(t, ok)
	assert.True(t, round.AcceptsArity(1))
	assert.True(t, round.AcceptsArity(2))
	assert.False(t, round.AcceptsArity(3))

	coalesce, ok := reg.Lookup("COALESCE")
	require.True(t, ok)
	assert.Equal(t, Variadic, coalesce.MaxArgs)
	assert.True(t, coalesce.AcceptsArity(7))
	assert.False(t, coalesce.AcceptsArity(0))
}

func TestRegistry_Distributions(t *testing.T) {
	reg := Default()

	assert.True(t, reg.IsDistribution("normal"))
	assert.False(t, reg.IsDistribution("UPPER"))

	normal, ok := reg.Distribution("NORMAL")
	require.True(t, ok)
	assert.Equal(t, TargetNumeric, normal.Target)

	bernoulli, ok := reg.Distribution("BERNOULLI")
	require.True(t, ok)
	assert.Equal(t, TargetBoolNumeric, bernoulli.Target)

	categorical, ok := reg.Distribution("CATEGORICAL")
	require.True(t, ok)
	assert.Equal(t, TargetAny, categorical.Target)
	assert.Equal(t, Variadic, categorical.MaxArgs)
}

func TestDistribution_CallReturnTypes(t *testing.T) {
	reg := Default()

	// Numeric distributions return numbers in call position; CATEGORICAL
	// samples its pair values, so its return type is unconstrained.
	normal, ok := reg.Lookup("NORMAL")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, normal.Returns)

	categorical, ok := reg.Lookup("CATEGORICAL")
	require.True(t, ok)
	assert.Equal(t, TypeAny, categorical.Returns)
}

func TestDistribution_ParamDomains(t *testing.T) {
	reg := Default()

	tests := []struct {
		dist   string
		params []float64
		valid  bool
	}{
		{"UNIFORM", []float64{0, 10}, true},
		{"UNIFORM", []float64{10, 0}, false},
		{"NORMAL", []float64{0, 1}, true},
		{"NORMAL", []float64{0, 0}, false},
		{"BETA", []float64{2, 3}, true},
		{"BETA", []float64{0, 3}, false},
		{"TRIANGULAR", []float64{0, 5, 10}, true},
		{"TRIANGULAR", []float64{0, 11, 10}, false},
		{"TRIANGULAR", []float64{10, 5, 0}, false},
		{"ZIPF", []float64{1.5, 100}, true},
		{"ZIPF", []float64{1.5, 2.5}, false},
		{"ZIPF", []float64{0, 100}, false},
		{"BERNOULLI", []float64{0.5}, true},
		{"BERNOULLI", []float64{1.5}, false},
		{"POISSON", []float64{3}, true},
		{"POISSON", []float64{-1}, false},
		{"EXPONENTIAL", []float64{0.5}, true},
		{"EXPONENTIAL", []float64{0}, false},
		{"CATEGORICAL", []float64{0.5, 0.5}, true},
		{"CATEGORICAL", []float64{0, 0}, false},
		{"CATEGORICAL", []float64{-1, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.dist, func(t *testing.T) {
			d, ok := reg.Distribution(tt.dist)
			require.True(t, ok)
			require.NotNil(t, d.CheckParams)
			err := d.CheckParams(tt.params)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegistry_FunctionsByCategory(t *testing.T) {
	reg := Default()

	strings := reg.Functions(CategoryString)
	require.NotEmpty(t, strings)
	for _, f := range strings {
		assert.Equal(t, CategoryString, f.Category)
	}

	all := reg.Functions("")
	assert.Greater(t, len(all), len(strings))

	dists := reg.Functions(CategoryDistribution)
	assert.Len(t, dists, 13)
}
