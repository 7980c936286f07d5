package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/internal/cli/config"
	"github.com/relforge/relforge/internal/design"
	"github.com/relforge/relforge/internal/testutil"
	"github.com/relforge/relforge/pkg/schema"
)

func TestDesignPath(t *testing.T) {
	cfg := &config.Config{Design: "from_config.yaml"}
	assert.Equal(t, "from_config.yaml", designPath(cfg, nil))
	assert.Equal(t, "arg.yaml", designPath(cfg, []string{"arg.yaml"}))
}

func TestRenderValue_Formats(t *testing.T) {
	value := map[string]int{"answer": 42}

	var buf bytes.Buffer
	err := renderValue(&buf, "json", value, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"answer": 42`)

	buf.Reset()
	err = renderValue(&buf, "yaml", value, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "answer: 42")

	buf.Reset()
	err = renderValue(&buf, "table", value, func(w io.Writer) {
		_, _ = w.Write([]byte("rendered"))
	})
	require.NoError(t, err)
	assert.Equal(t, "rendered", buf.String())
}

func TestRenderSchema(t *testing.T) {
	s := &schema.RelationalSchema{
		Tables: []*schema.Table{
			{
				Name:       "Customer",
				PrimaryKey: []string{"id"},
				Columns: []*schema.Column{
					{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
					{Name: "name", Type: "VARCHAR(255)", Nullable: true},
				},
			},
		},
	}

	var buf bytes.Buffer
	renderSchema(&buf, s)
	out := buf.String()
	assert.Contains(t, out, "Customer")
	assert.Contains(t, out, "INTEGER")
	assert.Contains(t, out, "PK")
}

func TestAdHocExpressions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exprs.txt")
	content := "price * 2\n\n# comment\nUPPER(label)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	exprs, err := adHocExpressions([]string{"design.yaml", "price + 1"}, path, "Product", "price")
	require.NoError(t, err)
	require.Len(t, exprs, 3)
	assert.Equal(t, "price + 1", exprs[0].Expression)
	assert.Equal(t, "price * 2", exprs[1].Expression)
	assert.Equal(t, "UPPER(label)", exprs[2].Expression)
	for _, e := range exprs {
		assert.Equal(t, "Product", e.Table)
		assert.Equal(t, "price", e.Column)
	}

	_, err = adHocExpressions(nil, filepath.Join(dir, "missing.txt"), "", "")
	assert.Error(t, err)
}

func TestValidateDocument(t *testing.T) {
	doc, err := design.Parse([]byte(`
entities:
  - name: Product
    primary_key: [id]
    attributes:
      - name: id
        type_hint: INTEGER
      - name: price
        type_hint: DECIMAL(10,2)
      - name: label
expressions:
  - table: Product
    column: price
    expression: "price * 1.2"
  - table: Product
    column: label
    expression: "price * label"
  - table: Product
    column: label
    expression: "label +"
`))
	require.NoError(t, err)

	results, err := validateDocument(testutil.NewTestLogger(t), doc, false)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var buf bytes.Buffer
	failures := reportResults(&buf, results)
	assert.Equal(t, 2, failures)
	out := buf.String()
	assert.True(t, strings.Contains(out, "ok    Product.price"))
	assert.Contains(t, out, "FAIL  Product.label")
}
