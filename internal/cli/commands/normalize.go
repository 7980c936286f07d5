package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/relforge/relforge/internal/cli/config"
	"github.com/relforge/relforge/internal/design"
	"github.com/relforge/relforge/pkg/er"
	"github.com/relforge/relforge/pkg/normalize"
)

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand() *cobra.Command {
	var showSteps bool

	cmd := &cobra.Command{
		Use:   "normalize [design-file]",
		Short: "Compile a design and decompose the schema to 3NF",
		Long: `Normalize compiles the design document and then decomposes each table to
Third Normal Form using the document's functional dependencies. Tables
without a primary key are left untouched, and dependencies whose
determinants rest only on foreign-key columns are not acted on.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			doc, err := design.Load(designPath(cfg, args))
			if err != nil {
				return err
			}

			compiled := er.NewCompiler(logger).Compile(doc.CompileInput())
			norm := normalize.NewNormalizer(logger).
				Normalize(compiled.Schema, doc.FunctionalDependencies, doc.UniqueConstraints)
			logger.Info("schema normalized",
				"run_id", compiled.RunID,
				"tables", len(norm.Tables.Tables),
				"join_paths", len(norm.JoinPaths))

			if showSteps {
				for _, step := range norm.Steps {
					cmd.PrintErrln(step)
				}
			}

			return renderValue(cmd.OutOrStdout(), cfg.Output, norm, func(w io.Writer) {
				renderSchema(w, norm.Tables)
			})
		},
	}

	cmd.Flags().BoolVar(&showSteps, "steps", false, "print decomposition steps to stderr")
	return cmd
}
