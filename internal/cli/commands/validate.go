package commands

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/relforge/relforge/internal/cli/config"
	"github.com/relforge/relforge/internal/design"
	"github.com/relforge/relforge/pkg/er"
	"github.com/relforge/relforge/pkg/normalize"
	"github.com/relforge/relforge/pkg/parser"
	"github.com/relforge/relforge/pkg/registry"
	"github.com/relforge/relforge/pkg/semantic"
)

// expressionResult is the outcome of validating one declared expression.
type expressionResult struct {
	Expr   design.Expression
	Result semantic.ValidationResult
	SynErr error // lexical or syntax failure, mutually exclusive with Result
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var (
		againstNormalized bool
		exprFile          string
		anchorTable       string
		anchorColumn      string
	)

	cmd := &cobra.Command{
		Use:   "validate [design-file] [expr...]",
		Short: "Validate expressions against a design document's schema",
		Long: `Validate compiles the design document and checks expressions against the
resulting schema: identifier resolution anchored at the expression's column,
coarse type checking, function and distribution signatures, and parameter
domains.

With no extra arguments the document's own declared expressions are checked.
Expressions given on the command line or via --file are checked instead,
anchored at --table/--column when set.

The command exits non-zero when any expression fails.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			doc, err := design.Load(designPath(cfg, args))
			if err != nil {
				return err
			}

			exprs := doc.Expressions
			if len(args) > 1 || exprFile != "" {
				exprs, err = adHocExpressions(args, exprFile, anchorTable, anchorColumn)
				if err != nil {
					return err
				}
			}
			if len(exprs) == 0 {
				return fmt.Errorf("no expressions to validate")
			}

			results, err := validateExpressions(logger, doc, exprs, againstNormalized)
			if err != nil {
				return err
			}
			logger.Debug("expressions validated", "count", len(results), "normalized", againstNormalized)

			failures := reportResults(cmd.OutOrStdout(), results)
			if failures > 0 {
				return fmt.Errorf("%d of %d expressions failed validation", failures, len(results))
			}
			cmd.Printf("all %d expressions valid\n", len(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&againstNormalized, "normalized", false, "validate against the 3NF schema instead of the compiled one")
	cmd.Flags().StringVar(&exprFile, "file", "", "read expressions from a file, one per line")
	cmd.Flags().StringVar(&anchorTable, "table", "", "anchor table for ad-hoc expressions")
	cmd.Flags().StringVar(&anchorColumn, "column", "", "anchor column for ad-hoc expressions")
	return cmd
}

// adHocExpressions collects expressions from trailing arguments and an
// optional file, all sharing the same anchor. Blank lines and # comments in
// the file are skipped.
func adHocExpressions(args []string, path, table, column string) ([]design.Expression, error) {
	var exprs []design.Expression
	add := func(src string) {
		exprs = append(exprs, design.Expression{Table: table, Column: column, Expression: src})
	}

	if len(args) > 1 {
		for _, arg := range args[1:] {
			add(arg)
		}
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open expression file: %w", err)
		}
		defer func() { _ = f.Close() }()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			add(line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read expression file: %w", err)
		}
	}
	return exprs, nil
}

// validateDocument checks the document's own declared expressions.
func validateDocument(logger *slog.Logger, doc *design.Document, normalized bool) ([]expressionResult, error) {
	return validateExpressions(logger, doc, doc.Expressions, normalized)
}

// validateExpressions compiles the document and validates expressions against
// the compiled schema, or the 3NF one when normalized is set. Expressions are
// independent, so they are checked concurrently; the parser cache and
// analyzer are safe to share.
func validateExpressions(logger *slog.Logger, doc *design.Document, exprs []design.Expression, normalized bool) ([]expressionResult, error) {
	profile, err := doc.Profile()
	if err != nil {
		return nil, err
	}

	compiled := er.NewCompiler(logger).Compile(doc.CompileInput())
	relational := compiled.Schema
	if normalized {
		norm := normalize.NewNormalizer(logger).
			Normalize(relational, doc.FunctionalDependencies, doc.UniqueConstraints)
		relational = norm.Tables
	}

	ctx := semantic.FromRelational(relational)
	cache := parser.NewCache()
	reg := registry.Default()

	results := make([]expressionResult, len(exprs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, expr := range exprs {
		g.Go(func() error {
			res, synErr := semantic.ValidateExpression(
				expr.Expression, profile, cache, reg, ctx, expr.Table, expr.Column)
			results[i] = expressionResult{Expr: expr, Result: res, SynErr: synErr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reportResults prints per-expression diagnostics and returns the number of
// failed expressions.
func reportResults(w io.Writer, results []expressionResult) int {
	failures := 0
	for _, r := range results {
		target := r.Expr.Table + "." + r.Expr.Column
		if r.Expr.Table == "" && r.Expr.Column == "" {
			target = r.Expr.Expression
		}
		switch {
		case r.SynErr != nil:
			failures++
			fmt.Fprintf(w, "FAIL  %s: %v\n", target, r.SynErr)
		case !r.Result.Valid:
			failures++
			fmt.Fprintf(w, "FAIL  %s\n", target)
			for _, e := range r.Result.Errors {
				fmt.Fprintf(w, "      %s\n", e)
			}
		default:
			fmt.Fprintf(w, "ok    %s (%s)\n", target, r.Result.InferredType)
		}
	}
	return failures
}
