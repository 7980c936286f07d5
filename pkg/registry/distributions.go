package registry

import (
	"fmt"
	"math"
)

// TargetKind constrains the column type a distribution may be sampled into.
type TargetKind string

// Target kinds.
const (
	// TargetNumeric requires a numeric target column.
	TargetNumeric TargetKind = "numeric"
	// TargetBoolNumeric accepts a boolean or numeric target (BERNOULLI).
	TargetBoolNumeric TargetKind = "bool_or_numeric"
	// TargetAny accepts any target column (CATEGORICAL).
	TargetAny TargetKind = "any"
)

// DistributionInfo describes a probability distribution: its parameter
// names, arity, admissible target column types, and the domain constraints
// applied when all parameters are literal numbers.
type DistributionInfo struct {
	Name      string
	Signature string
	Params    []string
	MinArgs   int
	MaxArgs   int // Variadic for CATEGORICAL
	Target    TargetKind

	// CheckParams validates literal parameter values. It is only invoked
	// when every argument is a literal number; expressions and column
	// references are accepted without domain checking.
	CheckParams func(args []float64) error
}

// FunctionInfo exposes the distribution as a plain callable, so it can also
// appear in ordinary call position.
func (d DistributionInfo) FunctionInfo() FunctionInfo {
	argTypes := []string{TypeNumber}
	returns := TypeNumber
	if d.Name == "CATEGORICAL" {
		// CATEGORICAL samples whatever its pair values are, so its type is
		// not known statically.
		argTypes = []string{TypeAny}
		returns = TypeAny
	}
	return FunctionInfo{
		Name:      d.Name,
		Signature: d.Signature,
		Category:  CategoryDistribution,
		MinArgs:   d.MinArgs,
		MaxArgs:   d.MaxArgs,
		ArgTypes:  argTypes,
		Returns:   returns,
	}
}

func positive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, v)
	}
	return nil
}

var distributions = []DistributionInfo{
	{
		Name: "UNIFORM", Signature: "UNIFORM(min, max)",
		Params: []string{"min", "max"}, MinArgs: 2, MaxArgs: 2, Target: TargetNumeric,
		CheckParams: func(a []float64) error {
			if a[0] >= a[1] {
				return fmt.Errorf("min must be less than max, got min=%v max=%v", a[0], a[1])
			}
			return nil
		},
	},
	{
		Name: "NORMAL", Signature: "NORMAL(mean, std_dev)",
		Params: []string{"mean", "std_dev"}, MinArgs: 2, MaxArgs: 2, Target: TargetNumeric,
		CheckParams: func(a []float64) error { return positive("std_dev", a[1]) },
	},
	{
		Name: "LOGNORMAL", Signature: "LOGNORMAL(mu, sigma)",
		Params: []string{"mu", "sigma"}, MinArgs: 2, MaxArgs: 2, Target: TargetNumeric,
		CheckParams: func(a []float64) error { return positive("sigma", a[1]) },
	},
	{
		Name: "BETA", Signature: "BETA(alpha, beta)",
		Params: []string{"alpha", "beta"}, MinArgs: 2, MaxArgs: 2, Target: TargetNumeric,
		CheckParams: func(a []float64) error {
			if err := positive("alpha", a[0]); err != nil {
				return err
			}
			return positive("beta", a[1])
		},
	},
	{
		Name: "GAMMA", Signature: "GAMMA(shape, scale)",
		Params: []string{"shape", "scale"}, MinArgs: 2, MaxArgs: 2, Target: TargetNumeric,
		CheckParams: func(a []float64) error {
			if err := positive("shape", a[0]); err != nil {
				return err
			}
			return positive("scale", a[1])
		},
	},
	{
		Name: "EXPONENTIAL", Signature: "EXPONENTIAL(rate)",
		Params: []string{"rate"}, MinArgs: 1, MaxArgs: 1, Target: TargetNumeric,
		CheckParams: func(a []float64) error { return positive("rate", a[0]) },
	},
	{
		Name: "TRIANGULAR", Signature: "TRIANGULAR(min, mode, max)",
		Params: []string{"min", "mode", "max"}, MinArgs: 3, MaxArgs: 3, Target: TargetNumeric,
		CheckParams: func(a []float64) error {
			minV, mode, maxV := a[0], a[1], a[2]
			if minV >= maxV {
				return fmt.Errorf("min must be less than max, got min=%v max=%v", minV, maxV)
			}
			if mode < minV || mode > maxV {
				return fmt.Errorf("mode must lie between min and max, got mode=%v", mode)
			}
			return nil
		},
	},
	{
		Name: "WEIBULL", Signature: "WEIBULL(shape, scale)",
		Params: []string{"shape", "scale"}, MinArgs: 2, MaxArgs: 2, Target: TargetNumeric,
		CheckParams: func(a []float64) error {
			if err := positive("shape", a[0]); err != nil {
				return err
			}
			return positive("scale", a[1])
		},
	},
	{
		Name: "POISSON", Signature: "POISSON(lambda)",
		Params: []string{"lambda"}, MinArgs: 1, MaxArgs: 1, Target: TargetNumeric,
		CheckParams: func(a []float64) error { return positive("lambda", a[0]) },
	},
	{
		Name: "ZIPF", Signature: "ZIPF(s, n)",
		Params: []string{"s", "n"}, MinArgs: 2, MaxArgs: 2, Target: TargetNumeric,
		CheckParams: func(a []float64) error {
			if err := positive("s", a[0]); err != nil {
				return err
			}
			if a[1] < 1 || a[1] != math.Trunc(a[1]) {
				return fmt.Errorf("n must be an integer >= 1, got %v", a[1])
			}
			return nil
		},
	},
	{
		Name: "PARETO", Signature: "PARETO(alpha, scale)",
		Params: []string{"alpha", "scale"}, MinArgs: 2, MaxArgs: 2, Target: TargetNumeric,
		CheckParams: func(a []float64) error {
			if err := positive("alpha", a[0]); err != nil {
				return err
			}
			return positive("scale", a[1])
		},
	},
	{
		Name: "BERNOULLI", Signature: "BERNOULLI(p)",
		Params: []string{"p"}, MinArgs: 1, MaxArgs: 1, Target: TargetBoolNumeric,
		CheckParams: func(a []float64) error {
			if a[0] < 0 || a[0] > 1 {
				return fmt.Errorf("p must be between 0 and 1, got %v", a[0])
			}
			return nil
		},
	},
	{
		// CATEGORICAL takes (value, weight) pairs; the pair structure is
		// checked by the analyzer, the weight domain here.
		Name: "CATEGORICAL", Signature: "CATEGORICAL((value, weight), ...)",
		Params: []string{"pairs"}, MinArgs: 2, MaxArgs: Variadic, Target: TargetAny,
		CheckParams: func(weights []float64) error {
			sum := 0.0
			for _, w := range weights {
				if w < 0 {
					return fmt.Errorf("weights must be non-negative, got %v", w)
				}
				sum += w
			}
			if sum <= 0 {
				return fmt.Errorf("weights must sum to a positive value")
			}
			return nil
		},
	},
}
