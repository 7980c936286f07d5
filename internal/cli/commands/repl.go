package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/relforge/relforge/internal/cli/config"
	"github.com/relforge/relforge/internal/design"
	"github.com/relforge/relforge/pkg/er"
	"github.com/relforge/relforge/pkg/parser"
	"github.com/relforge/relforge/pkg/registry"
	"github.com/relforge/relforge/pkg/semantic"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var (
		anchorTable  string
		anchorColumn string
	)

	cmd := &cobra.Command{
		Use:   "repl [design-file]",
		Short: "Interactively validate expressions against a compiled design",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			doc, err := design.Load(designPath(cfg, args))
			if err != nil {
				return err
			}
			profile, err := doc.Profile()
			if err != nil {
				return err
			}

			compiled := er.NewCompiler(logger).Compile(doc.CompileInput())
			ctx := semantic.FromRelational(compiled.Schema)
			cache := parser.NewCache()
			reg := registry.Default()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "relforge> ",
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize REPL: %w", err)
			}
			defer func() { _ = rl.Close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "relforge expression REPL (%d tables, grammar %s)\n",
				len(compiled.Schema.Tables), profile.Key())
			fmt.Fprintln(out, "Type .help for commands, .quit to exit")
			fmt.Fprintln(out)

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}

				if strings.HasPrefix(line, ".") {
					if quit := handleREPLCommand(out, line, ctx, &anchorTable, &anchorColumn); quit {
						return nil
					}
					continue
				}

				res, synErr := semantic.ValidateExpression(
					line, profile, cache, reg, ctx, anchorTable, anchorColumn)
				if synErr != nil {
					fmt.Fprintf(out, "syntax error: %v\n", synErr)
					continue
				}
				if res.Valid {
					fmt.Fprintf(out, "valid (%s)\n", res.InferredType)
					continue
				}
				for _, e := range res.Errors {
					fmt.Fprintf(out, "error: %s\n", e)
				}
			}
		},
	}

	cmd.Flags().StringVar(&anchorTable, "table", "", "anchor table for bare identifiers")
	cmd.Flags().StringVar(&anchorColumn, "column", "", "anchor column")
	return cmd
}

// handleREPLCommand processes a dot-command; the returned flag requests exit.
func handleREPLCommand(out io.Writer, line string, ctx *semantic.SchemaContext, anchorTable, anchorColumn *string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".quit", ".exit":
		return true
	case ".tables":
		for _, name := range ctx.Tables() {
			fmt.Fprintln(out, name)
		}
	case ".anchor":
		if len(fields) < 2 {
			fmt.Fprintf(out, "anchor: %s.%s\n", *anchorTable, *anchorColumn)
			break
		}
		table, column, _ := strings.Cut(fields[1], ".")
		*anchorTable, *anchorColumn = table, column
		fmt.Fprintf(out, "anchor set to %s.%s\n", table, column)
	case ".help":
		fmt.Fprintln(out, ".tables            list schema tables")
		fmt.Fprintln(out, ".anchor TABLE.COL  set the identifier anchor")
		fmt.Fprintln(out, ".quit              exit")
	default:
		fmt.Fprintf(out, "unknown command %s (try .help)\n", fields[0])
	}
	return false
}
