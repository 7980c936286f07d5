// Package registry is the single allowlist of callable names in relforge
// expressions: scalar functions, aggregates, probability distributions, and
// the profile-gated relational constraint functions. The semantic analyzer
// consults it for every call, and the functions command lists it. No
// identifier is callable unless present here.
package registry

import "strings"

// Category classifies callables by purpose.
type Category string

// Callable categories.
const (
	CategoryString       Category = "string"
	CategoryNumeric      Category = "numeric"
	CategoryDate         Category = "date"
	CategoryAggregate    Category = "aggregate"
	CategoryConditional  Category = "conditional"
	CategoryDistribution Category = "distribution"
	CategoryRelational   Category = "relational"
)

// Variadic marks an unbounded maximum arity.
const Variadic = -1

// Argument/return type names. These are coarse-type names shared with the
// semantic analyzer, plus the pseudo-types "any" (no constraint) and "same"
// (return type follows the arguments, e.g. COALESCE).
const (
	TypeNumber   = "number"
	TypeString   = "string"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeDatetime = "datetime"
	TypeAny      = "any"
	TypeSame     = "same"
)

// FunctionInfo describes one callable in the allowlist.
type FunctionInfo struct {
	Name      string   // canonical upper-case name
	Signature string   // stable signature string, e.g. "DATEADD(unit, amount, ts)"
	Category  Category
	MinArgs   int
	MaxArgs   int      // Variadic for unbounded
	ArgTypes  []string // per-position; with variadic arity the last repeats
	Returns   string
}

// AcceptsArity reports whether n arguments satisfy the arity bounds.
func (f FunctionInfo) AcceptsArity(n int) bool {
	if n < f.MinArgs {
		return false
	}
	return f.MaxArgs == Variadic || n <= f.MaxArgs
}

// ArgTypeAt returns the expected type for the i-th argument (0-based),
// repeating the final declared type for variadic tails.
func (f FunctionInfo) ArgTypeAt(i int) string {
	if len(f.ArgTypes) == 0 {
		return TypeAny
	}
	if i >= len(f.ArgTypes) {
		return f.ArgTypes[len(f.ArgTypes)-1]
	}
	return f.ArgTypes[i]
}

// catalog is the full allowlist. Distributions appear both here (as plain
// calls) and in the distribution table with their parameter domains.
var catalog = []FunctionInfo{
	// ---------- String functions ----------
	{Name: "UPPER", Signature: "UPPER(str)", Category: CategoryString, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeString}, Returns: TypeString},
	{Name: "LOWER", Signature: "LOWER(str)", Category: CategoryString, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeString}, Returns: TypeString},
	{Name: "TRIM", Signature: "TRIM(str)", Category: CategoryString, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeString}, Returns: TypeString},
	{Name: "LTRIM", Signature: "LTRIM(str)", Category: CategoryString, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeString}, Returns: TypeString},
	{Name: "RTRIM", Signature: "RTRIM(str)", Category: CategoryString, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeString}, Returns: TypeString},
	{Name: "CONCAT", Signature: "CONCAT(str1, str2, ...)", Category: CategoryString, MinArgs: 2, MaxArgs: Variadic, ArgTypes: []string{TypeString}, Returns: TypeString},
	{Name: "REPLACE", Signature: "REPLACE(str, from, to)", Category: CategoryString, MinArgs: 3, MaxArgs: 3, ArgTypes: []string{TypeString, TypeString, TypeString}, Returns: TypeString},
	{Name: "SUBSTRING", Signature: "SUBSTRING(str, start, length)", Category: CategoryString, MinArgs: 2, MaxArgs: 3, ArgTypes: []string{TypeString, TypeNumber, TypeNumber}, Returns: TypeString},
	{Name: "LEFT", Signature: "LEFT(str, n)", Category: CategoryString, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeString, TypeNumber}, Returns: TypeString},
	{Name: "RIGHT", Signature: "RIGHT(str, n)", Category: CategoryString, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeString, TypeNumber}, Returns: TypeString},
	{Name: "LENGTH", Signature: "LENGTH(str)", Category: CategoryString, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeString}, Returns: TypeNumber},

	// ---------- Numeric functions ----------
	{Name: "ABS", Signature: "ABS(x)", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "ROUND", Signature: "ROUND(x, places)", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 2, ArgTypes: []string{TypeNumber, TypeNumber}, Returns: TypeNumber},
	{Name: "FLOOR", Signature: "FLOOR(x)", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "CEIL", Signature: "CEIL(x)", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "SQRT", Signature: "SQRT(x)", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "POWER", Signature: "POWER(x, y)", Category: CategoryNumeric, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeNumber, TypeNumber}, Returns: TypeNumber},
	{Name: "EXP", Signature: "EXP(x)", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "LN", Signature: "LN(x)", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "LOG", Signature: "LOG(x)", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "MOD", Signature: "MOD(x, y)", Category: CategoryNumeric, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeNumber, TypeNumber}, Returns: TypeNumber},

	// ---------- Date/time functions ----------
	{Name: "NOW", Signature: "NOW()", Category: CategoryDate, MinArgs: 0, MaxArgs: 0, Returns: TypeDatetime},
	{Name: "TODAY", Signature: "TODAY()", Category: CategoryDate, MinArgs: 0, MaxArgs: 0, Returns: TypeDate},
	{Name: "YEAR", Signature: "YEAR(ts)", Category: CategoryDate, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeDatetime}, Returns: TypeNumber},
	{Name: "MONTH", Signature: "MONTH(ts)", Category: CategoryDate, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeDatetime}, Returns: TypeNumber},
	{Name: "DAY", Signature: "DAY(ts)", Category: CategoryDate, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeDatetime}, Returns: TypeNumber},
	{Name: "DATEADD", Signature: "DATEADD(unit, amount, ts)", Category: CategoryDate, MinArgs: 3, MaxArgs: 3, ArgTypes: []string{TypeString, TypeNumber, TypeDatetime}, Returns: TypeDatetime},
	{Name: "DATEDIFF", Signature: "DATEDIFF(unit, start, end)", Category: CategoryDate, MinArgs: 3, MaxArgs: 3, ArgTypes: []string{TypeString, TypeDatetime, TypeDatetime}, Returns: TypeNumber},

	// ---------- Aggregates ----------
	{Name: "COUNT", Signature: "COUNT(expr)", Category: CategoryAggregate, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeAny}, Returns: TypeNumber},
	{Name: "SUM", Signature: "SUM(expr)", Category: CategoryAggregate, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "AVG", Signature: "AVG(expr)", Category: CategoryAggregate, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeNumber}, Returns: TypeNumber},
	{Name: "MIN", Signature: "MIN(expr)", Category: CategoryAggregate, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeAny}, Returns: TypeNumber},
	{Name: "MAX", Signature: "MAX(expr)", Category: CategoryAggregate, MinArgs: 1, MaxArgs: 1, ArgTypes: []string{TypeAny}, Returns: TypeNumber},

	// ---------- Conditional ----------
	{Name: "COALESCE", Signature: "COALESCE(expr1, expr2, ...)", Category: CategoryConditional, MinArgs: 2, MaxArgs: Variadic, ArgTypes: []string{TypeAny}, Returns: TypeSame},
	{Name: "NULLIF", Signature: "NULLIF(expr1, expr2)", Category: CategoryConditional, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeAny, TypeAny}, Returns: TypeSame},

	// ---------- Relational constraints (profile-gated) ----------
	{Name: "EXISTS", Signature: "EXISTS(table.column, value)", Category: CategoryRelational, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeAny, TypeAny}, Returns: TypeBoolean},
	{Name: "LOOKUP", Signature: "LOOKUP(table.column, match_column, match_value)", Category: CategoryRelational, MinArgs: 3, MaxArgs: 3, ArgTypes: []string{TypeAny, TypeAny, TypeAny}, Returns: TypeSame},
	{Name: "COUNT_WHERE", Signature: "COUNT_WHERE(table.column, condition)", Category: CategoryRelational, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeAny, TypeBoolean}, Returns: TypeNumber},
	{Name: "SUM_WHERE", Signature: "SUM_WHERE(table.column, condition)", Category: CategoryRelational, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeNumber, TypeBoolean}, Returns: TypeNumber},
	{Name: "AVG_WHERE", Signature: "AVG_WHERE(table.column, condition)", Category: CategoryRelational, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeNumber, TypeBoolean}, Returns: TypeNumber},
	{Name: "MIN_WHERE", Signature: "MIN_WHERE(table.column, condition)", Category: CategoryRelational, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeAny, TypeBoolean}, Returns: TypeNumber},
	{Name: "MAX_WHERE", Signature: "MAX_WHERE(table.column, condition)", Category: CategoryRelational, MinArgs: 2, MaxArgs: 2, ArgTypes: []string{TypeAny, TypeBoolean}, Returns: TypeNumber},
	{Name: "IN_RANGE", Signature: "IN_RANGE(x, low, high)", Category: CategoryRelational, MinArgs: 3, MaxArgs: 3, ArgTypes: []string{TypeNumber, TypeNumber, TypeNumber}, Returns: TypeBoolean},
}

// Registry is the allowlist of callables. Construct one with Default and
// inject it; instances are immutable after construction and safe for
// concurrent use.
type Registry struct {
	funcs map[string]FunctionInfo
	dists map[string]DistributionInfo
}

// Default builds the standard registry with all functions and distributions.
func Default() *Registry {
	r := &Registry{
		funcs: make(map[string]FunctionInfo, len(catalog)+len(distributions)),
		dists: make(map[string]DistributionInfo, len(distributions)),
	}
	for _, f := range catalog {
		r.funcs[f.Name] = f
	}
	for _, d := range distributions {
		r.dists[d.Name] = d
		r.funcs[d.Name] = d.FunctionInfo()
	}
	return r
}

// baseName strips any dotted suffix and upper-cases for lookup: matching is
// case-insensitive on the base name before any dot.
func baseName(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return strings.ToUpper(name)
}

// Lookup finds a callable by name. The second result is false when the name
// is not in the allowlist.
func (r *Registry) Lookup(name string) (FunctionInfo, bool) {
	f, ok := r.funcs[baseName(name)]
	return f, ok
}

// Distribution finds a distribution by name.
func (r *Registry) Distribution(name string) (DistributionInfo, bool) {
	d, ok := r.dists[baseName(name)]
	return d, ok
}

// IsDistribution reports whether the name is a registered distribution.
func (r *Registry) IsDistribution(name string) bool {
	_, ok := r.dists[baseName(name)]
	return ok
}

// Functions returns all callables, optionally filtered by category.
// The result is a copy in catalog order, safe for the caller to keep.
func (r *Registry) Functions(category Category) []FunctionInfo {
	var out []FunctionInfo
	for _, f := range catalog {
		if category == "" || f.Category == category {
			out = append(out, f)
		}
	}
	if category == "" || category == CategoryDistribution {
		for _, d := range distributions {
			out = append(out, d.FunctionInfo())
		}
	}
	return out
}
