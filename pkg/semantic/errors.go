package semantic

import "fmt"

// ErrorCategory classifies semantic errors.
type ErrorCategory string

// Semantic error categories.
const (
	CategoryUnknownIdentifier   ErrorCategory = "unknown_identifier"
	CategoryAmbiguousIdentifier ErrorCategory = "ambiguous_identifier"
	CategoryTypeMismatch        ErrorCategory = "type_mismatch"
	CategoryInvalidFunction     ErrorCategory = "invalid_function"
	CategoryInvalidDistribution ErrorCategory = "invalid_distribution"
	CategoryInvalidParameter    ErrorCategory = "invalid_parameter"
	CategoryInvalidAnchor       ErrorCategory = "invalid_anchor"
	CategoryLookupUniqueness    ErrorCategory = "lookup_uniqueness_violation"
)

// SemanticError is one semantic diagnostic. These are accumulated values,
// not Go errors: a single validation call can return many of them.
type SemanticError struct {
	Category   ErrorCategory `json:"category"`
	Message    string        `json:"message"`
	Identifier string        `json:"identifier,omitempty"`
	Expected   CoarseType    `json:"expected_type,omitempty"`
	Actual     CoarseType    `json:"actual_type,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// String renders the error for human output.
func (e SemanticError) String() string {
	s := fmt.Sprintf("[%s] %s", e.Category, e.Message)
	if e.Suggestion != "" {
		s += " (" + e.Suggestion + ")"
	}
	return s
}

// ValidationResult is the outcome of one validation call. If Valid is
// false, Errors is non-empty.
type ValidationResult struct {
	Valid        bool            `json:"valid"`
	Errors       []SemanticError `json:"errors,omitempty"`
	Warnings     []SemanticError `json:"warnings,omitempty"`
	InferredType CoarseType      `json:"inferred_type,omitempty"`
}

// FirstError returns the first error for callers expecting the legacy
// single-error shape, or nil when the result is valid.
func (r *ValidationResult) FirstError() *SemanticError {
	if len(r.Errors) == 0 {
		return nil
	}
	return &r.Errors[0]
}
