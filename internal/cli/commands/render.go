package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/relforge/relforge/pkg/schema"
)

// renderValue emits v in the requested format; table output is handled by
// the caller via tableFn.
func renderValue(w io.Writer, format string, v any, tableFn func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		tableFn(w)
		return nil
	}
}

// renderSchema prints one table per relational table.
func renderSchema(w io.Writer, s *schema.RelationalSchema) {
	for _, t := range s.Tables {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetTitle(tableTitle(t))
		tw.AppendHeader(table.Row{"Column", "Type", "Nullable", "Key"})
		for _, col := range t.Columns {
			tw.AppendRow(table.Row{col.Name, col.Type, col.Nullable, columnKeyMarker(t, col)})
		}
		for _, fk := range t.ForeignKeys {
			tw.AppendFooter(table.Row{"FK", strings.Join(fk.Columns, ", "), "->",
				fk.RefTable + "(" + strings.Join(fk.RefColumns, ", ") + ")"})
		}
		tw.Render()
		fmt.Fprintln(w)
	}
}

func tableTitle(t *schema.Table) string {
	switch {
	case t.IsJunctionTable:
		return t.Name + " (junction)"
	case t.IsMultivaluedTable:
		return t.Name + " (multivalued)"
	default:
		return t.Name
	}
}

func columnKeyMarker(t *schema.Table, col *schema.Column) string {
	var marks []string
	if col.IsPrimaryKey {
		marks = append(marks, "PK")
	}
	if t.IsForeignKeyColumn(col.Name) {
		marks = append(marks, "FK")
	}
	return strings.Join(marks, ",")
}
