package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/relforge/relforge/internal/cli/config"
	"github.com/relforge/relforge/internal/design"
	"github.com/relforge/relforge/pkg/er"
	"github.com/relforge/relforge/pkg/normalize"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	var (
		runNormalize bool
		showTrace    bool
	)

	cmd := &cobra.Command{
		Use:   "compile [design-file]",
		Short: "Compile an ER design into a relational schema",
		Long: `Compile maps a design document's entities and relationships into a
relational schema: one table per entity, side tables for multivalued
attributes, foreign keys or junction tables per relationship, and a
finalization pass that guarantees every table has a primary key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			doc, err := design.Load(designPath(cfg, args))
			if err != nil {
				return err
			}

			result := er.NewCompiler(logger).Compile(doc.CompileInput())
			logger.Info("design compiled",
				"run_id", result.RunID,
				"entities", len(doc.Entities),
				"tables", len(result.Schema.Tables))

			out := cmd.OutOrStdout()
			if showTrace {
				for _, step := range result.Trace {
					cmd.PrintErrln(step)
				}
			}

			if !runNormalize {
				return renderValue(out, cfg.Output, result, func(w io.Writer) {
					renderSchema(w, result.Schema)
				})
			}

			norm := normalize.NewNormalizer(logger).
				Normalize(result.Schema, doc.FunctionalDependencies, doc.UniqueConstraints)
			return renderValue(out, cfg.Output, norm, func(w io.Writer) {
				renderSchema(w, norm.Tables)
			})
		},
	}

	cmd.Flags().BoolVar(&runNormalize, "normalize", false, "decompose the compiled schema to 3NF")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "print the compiler's mapping decisions to stderr")
	return cmd
}

// designPath picks the design document path: positional argument first, then
// configuration.
func designPath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Design
}
