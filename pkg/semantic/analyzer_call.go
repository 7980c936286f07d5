package semantic

import (
	"fmt"
	"strings"

	"github.com/relforge/relforge/pkg/ast"
	"github.com/relforge/relforge/pkg/registry"
)

// inferCall validates a function or distribution invocation in ordinary
// call position.
func (c *checker) inferCall(call *ast.FuncCall) CoarseType {
	info, ok := c.reg.Lookup(call.Name)
	if !ok {
		c.errorf(CategoryInvalidFunction, call.Name,
			"unknown function %q; only registered functions may be called", call.Name)
		// Still type the arguments so their own errors surface.
		for _, arg := range call.Args {
			c.infer(arg)
		}
		return TypeUnknown
	}

	if info.Category == registry.CategoryRelational && !c.grammar.RelationalFn {
		c.errorf(CategoryInvalidFunction, call.Name,
			"function %s requires the %s grammar feature", info.Name, "relational_constraints")
		for _, arg := range call.Args {
			c.infer(arg)
		}
		return TypeUnknown
	}

	if !info.AcceptsArity(len(call.Args)) {
		c.add(SemanticError{
			Category:   CategoryInvalidParameter,
			Identifier: info.Name,
			Message:    fmt.Sprintf("%s expects %s arguments, got %d", info.Name, arityString(info), len(call.Args)),
			Suggestion: info.Signature,
		})
	}

	if dist, isDist := c.reg.Distribution(call.Name); isDist {
		c.checkDistributionArgs(call, dist)
		return coarseFromName(info.Returns)
	}

	if info.Category == registry.CategoryRelational {
		return c.inferRelationalCall(call, info)
	}

	argTypes := make([]CoarseType, len(call.Args))
	for i, arg := range call.Args {
		argTypes[i] = c.infer(arg)
		expected := info.ArgTypeAt(i)
		if !argCompatible(expected, argTypes[i]) {
			c.add(SemanticError{
				Category:   CategoryTypeMismatch,
				Identifier: info.Name,
				Expected:   coarseFromName(expected),
				Actual:     argTypes[i],
				Message: fmt.Sprintf("%s argument %d must be %s, got %s",
					info.Name, i+1, expected, argTypes[i]),
				Suggestion: info.Signature,
			})
		}
	}

	if info.Returns == registry.TypeSame {
		// COALESCE and friends: the first known argument type wins.
		for _, t := range argTypes {
			if t != TypeUnknown {
				return t
			}
		}
		return TypeUnknown
	}
	return coarseFromName(info.Returns)
}

// inferRelationalCall validates the profile-gated cross-table constraint
// functions, which need identifier-shaped arguments rather than plain
// positional types.
func (c *checker) inferRelationalCall(call *ast.FuncCall, info registry.FunctionInfo) CoarseType {
	name := strings.ToUpper(info.Name)

	switch name {
	case "IN_RANGE":
		for i, arg := range call.Args {
			t := c.infer(arg)
			if t != TypeUnknown && t != TypeNumber {
				c.mismatch(info.Name, TypeNumber, t, "IN_RANGE argument %d must be numeric, got %s", i+1, t)
			}
		}
		return TypeBoolean

	case "EXISTS":
		targetType := c.requireQualifiedColumn(call, 0, info)
		if len(call.Args) > 1 {
			valType := c.infer(call.Args[1])
			if targetType != TypeUnknown && valType != TypeUnknown && targetType != valType {
				c.mismatch(info.Name, targetType, valType,
					"EXISTS value is %s but the referenced column is %s", valType, targetType)
			}
		}
		return TypeBoolean

	case "LOOKUP":
		return c.inferLookup(call, info)

	default: // COUNT_WHERE, SUM_WHERE, AVG_WHERE, MIN_WHERE, MAX_WHERE
		colType := c.requireQualifiedColumn(call, 0, info)
		if (name == "SUM_WHERE" || name == "AVG_WHERE") && colType != TypeUnknown && colType != TypeNumber {
			c.mismatch(info.Name, TypeNumber, colType, "%s requires a numeric column, got %s", info.Name, colType)
		}
		if len(call.Args) > 1 {
			condType := c.infer(call.Args[1])
			if condType != TypeUnknown && condType != TypeBoolean {
				c.mismatch(info.Name, TypeBoolean, condType, "%s condition must be boolean, got %s", info.Name, condType)
			}
		}
		return TypeNumber
	}
}

// inferLookup validates LOOKUP(table.column, match_column, match_value):
// the match column must be individually unique in the target table,
// otherwise the lookup could return multiple rows.
func (c *checker) inferLookup(call *ast.FuncCall, info registry.FunctionInfo) CoarseType {
	resultType := c.requireQualifiedColumn(call, 0, info)
	if len(call.Args) < 3 {
		return resultType
	}

	target, _ := ast.Unwrap(call.Args[0]).(*ast.Identifier)
	matchName := columnNameArg(call.Args[1])
	if target == nil || matchName == "" {
		c.infer(call.Args[1])
		c.infer(call.Args[2])
		return resultType
	}

	table, ok := c.ctx.Table(target.Qualifier)
	if !ok {
		c.infer(call.Args[2])
		return resultType
	}
	matchType, exists := table.Column(matchName)
	if !exists {
		c.errorf(CategoryUnknownIdentifier, matchName,
			"table %q has no column %q to match on", table.Name, matchName)
		c.infer(call.Args[2])
		return resultType
	}
	if !table.IsUnique(matchName) {
		c.add(SemanticError{
			Category:   CategoryLookupUniqueness,
			Identifier: matchName,
			Message: fmt.Sprintf("LOOKUP match column %q in table %q is not unique; the lookup may return multiple rows",
				matchName, table.Name),
			Suggestion: "match on a primary-key or unique column",
		})
	}

	valueType := c.infer(call.Args[2])
	if matchType != TypeUnknown && valueType != TypeUnknown && matchType != valueType {
		c.mismatch(info.Name, matchType, valueType,
			"LOOKUP match value is %s but column %q is %s", valueType, matchName, matchType)
	}
	return resultType
}

// requireQualifiedColumn checks that argument i is a table.column reference
// and returns its resolved type.
func (c *checker) requireQualifiedColumn(call *ast.FuncCall, i int, info registry.FunctionInfo) CoarseType {
	if i >= len(call.Args) {
		return TypeUnknown
	}
	id, ok := ast.Unwrap(call.Args[i]).(*ast.Identifier)
	if !ok || id.Qualifier == "" || strings.EqualFold(id.Qualifier, "this") {
		c.add(SemanticError{
			Category:   CategoryInvalidParameter,
			Identifier: info.Name,
			Message:    fmt.Sprintf("%s argument %d must be a table.column reference", info.Name, i+1),
			Suggestion: info.Signature,
		})
		c.infer(call.Args[i])
		return TypeUnknown
	}
	return c.infer(id)
}

// columnNameArg extracts a column name from an identifier or string-literal
// argument.
func columnNameArg(e ast.Expr) string {
	switch v := ast.Unwrap(e).(type) {
	case *ast.Identifier:
		if v.Qualifier == "" {
			return v.Name
		}
		return ""
	case *ast.Literal:
		if v.Kind == ast.LiteralString {
			return v.Value
		}
		return ""
	default:
		return ""
	}
}

func arityString(info registry.FunctionInfo) string {
	if info.MaxArgs == registry.Variadic {
		return fmt.Sprintf("at least %d", info.MinArgs)
	}
	if info.MinArgs == info.MaxArgs {
		return fmt.Sprintf("%d", info.MinArgs)
	}
	return fmt.Sprintf("%d to %d", info.MinArgs, info.MaxArgs)
}

// argCompatible reports whether an inferred type satisfies an expected
// registry type name. Unknown always passes (conservative analysis).
func argCompatible(expected string, actual CoarseType) bool {
	if actual == TypeUnknown || expected == registry.TypeAny || expected == registry.TypeSame {
		return true
	}
	switch expected {
	case registry.TypeNumber:
		return actual == TypeNumber
	case registry.TypeString:
		return actual == TypeString
	case registry.TypeBoolean:
		return actual == TypeBoolean
	case registry.TypeDatetime, registry.TypeDate:
		return actual.IsTemporal()
	default:
		return true
	}
}

func coarseFromName(name string) CoarseType {
	switch name {
	case registry.TypeNumber:
		return TypeNumber
	case registry.TypeString:
		return TypeString
	case registry.TypeBoolean:
		return TypeBoolean
	case registry.TypeDate:
		return TypeDate
	case registry.TypeDatetime:
		return TypeDatetime
	default:
		return TypeUnknown
	}
}
