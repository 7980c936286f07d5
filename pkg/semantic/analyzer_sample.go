package semantic

import (
	"fmt"
	"strings"

	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/registry"
)

// inferSample validates a distribution-sampling expression
// `target ~ DIST(args)`. The left side must be a bare or qualified column
// reference; the distribution must be registered; target and parameter
// rules follow the distribution's declaration.
func (c *checker) inferSample(e *ast.SampleExpr) CoarseType {
	target, ok := ast.Unwrap(e.Target).(*ast.Identifier)
	if !ok {
		c.errorf(CategoryInvalidParameter, "",
			"the left side of '~' must be a column reference, not a compound expression")
		c.infer(e.Target)
	}

	targetType := TypeUnknown
	if target != nil {
		targetType = c.infer(target)
	}

	if e.Dist == nil {
		return targetType
	}

	dist, found := c.reg.Distribution(e.Dist.Name)
	if !found {
		c.errorf(CategoryInvalidDistribution, e.Dist.Name,
			"unknown distribution %q", e.Dist.Name)
		for _, arg := range e.Dist.Args {
			c.infer(arg)
		}
		return targetType
	}

	if n := len(e.Dist.Args); n < dist.MinArgs || (dist.MaxArgs != registry.Variadic && n > dist.MaxArgs) {
		c.add(SemanticError{
			Category:   CategoryInvalidParameter,
			Identifier: dist.Name,
			Message:    fmt.Sprintf("%s expects %s, got %d arguments", dist.Name, paramString(dist), n),
			Suggestion: dist.Signature,
		})
	}

	c.checkSampleTarget(dist, targetType)
	c.checkDistributionArgs(e.Dist, dist)
	return targetType
}

// checkSampleTarget enforces the distribution's admissible target types.
func (c *checker) checkSampleTarget(dist registry.DistributionInfo, targetType CoarseType) {
	if targetType == TypeUnknown {
		return
	}
	switch dist.Target {
	case registry.TargetNumeric:
		if targetType != TypeNumber {
			c.mismatch(dist.Name, TypeNumber, targetType,
				"%s samples numeric values but the target column is %s", dist.Name, targetType)
		}
	case registry.TargetBoolNumeric:
		if targetType != TypeBoolean && targetType != TypeNumber {
			c.mismatch(dist.Name, TypeBoolean, targetType,
				"%s requires a boolean or numeric target column, got %s", dist.Name, targetType)
		}
	case registry.TargetAny:
		// No restriction.
	}
}

// checkDistributionArgs validates distribution arguments both in sampling
// position and as plain calls. CATEGORICAL is structural: every argument
// must be a (value, weight) pair. For the other distributions the
// parameter-domain check runs only when every argument is a literal number;
// column references and computed parameters are accepted unchecked.
func (c *checker) checkDistributionArgs(call *ast.FuncCall, dist registry.DistributionInfo) {
	if strings.EqualFold(dist.Name, "CATEGORICAL") {
		c.checkCategoricalArgs(call, dist)
		return
	}

	values := make([]float64, 0, len(call.Args))
	allLiteral := true
	for i, arg := range call.Args {
		t := c.infer(arg)
		if t != TypeUnknown && t != TypeNumber {
			c.mismatch(dist.Name, TypeNumber, t,
				"%s parameter %d must be numeric, got %s", dist.Name, i+1, t)
			allLiteral = false
			continue
		}
		v, isLit := literalNumber(arg)
		if !isLit {
			allLiteral = false
			continue
		}
		values = append(values, v)
	}

	if !allLiteral || len(values) != len(call.Args) || len(call.Args) < dist.MinArgs {
		return
	}
	if dist.CheckParams != nil {
		if err := dist.CheckParams(values); err != nil {
			c.add(SemanticError{
				Category:   CategoryInvalidParameter,
				Identifier: dist.Name,
				Message:    fmt.Sprintf("%s: %v", dist.Name, err),
				Suggestion: dist.Signature,
			})
		}
	}
}

// checkCategoricalArgs enforces the pair structure of CATEGORICAL and, when
// all weights are literal, their domain (non-negative, positive sum).
func (c *checker) checkCategoricalArgs(call *ast.FuncCall, dist registry.DistributionInfo) {
	weights := make([]float64, 0, len(call.Args))
	allLiteral := true

	for i, arg := range call.Args {
		pair, ok := ast.Unwrap(arg).(*ast.PairLiteral)
		if !ok {
			c.add(SemanticError{
				Category:   CategoryInvalidParameter,
				Identifier: dist.Name,
				Message:    fmt.Sprintf("CATEGORICAL argument %d must be a (value, weight) pair", i+1),
				Suggestion: dist.Signature,
			})
			c.infer(arg)
			allLiteral = false
			continue
		}
		c.inferPair(pair)
		w, isLit := literalNumber(pair.Weight)
		if !isLit {
			allLiteral = false
			continue
		}
		weights = append(weights, w)
	}

	if allLiteral && len(weights) == len(call.Args) && len(weights) > 0 && dist.CheckParams != nil {
		if err := dist.CheckParams(weights); err != nil {
			c.add(SemanticError{
				Category:   CategoryInvalidParameter,
				Identifier: dist.Name,
				Message:    fmt.Sprintf("CATEGORICAL: %v", err),
				Suggestion: dist.Signature,
			})
		}
	}
}

func paramString(dist registry.DistributionInfo) string {
	if dist.MaxArgs == registry.Variadic {
		return fmt.Sprintf("at least %d parameters", dist.MinArgs)
	}
	if dist.MinArgs == dist.MaxArgs {
		if dist.MinArgs == 1 {
			return "1 parameter"
		}
		return fmt.Sprintf("%d parameters", dist.MinArgs)
	}
	return fmt.Sprintf("%d to %d parameters", dist.MinArgs, dist.MaxArgs)
}
