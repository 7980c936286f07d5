package commands

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/relforge/relforge/internal/cli/config"
	"github.com/relforge/relforge/pkg/registry"
)

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the functions and distributions the expression language allows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			funcs := registry.Default().Functions(registry.Category(category))

			return renderValue(cmd.OutOrStdout(), cfg.Output, funcs, func(w io.Writer) {
				tw := table.NewWriter()
				tw.SetOutputMirror(w)
				tw.AppendHeader(table.Row{"Function", "Category", "Signature", "Returns"})
				for _, f := range funcs {
					tw.AppendRow(table.Row{f.Name, f.Category, f.Signature, f.Returns})
				}
				tw.Render()
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "",
		"filter by category (string|numeric|date|aggregate|conditional|distribution|relational)")
	return cmd
}
