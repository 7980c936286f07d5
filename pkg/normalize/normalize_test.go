package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/internal/testutil"
	"github.com/relforge/relforge/pkg/schema"
)

// bookSchema is the classic transitive-dependency fixture: publisher_name
// and publisher_country depend on publisher_name, not on the key.
func bookSchema() *schema.RelationalSchema {
	return &schema.RelationalSchema{
		Tables: []*schema.Table{
			{
				Name:       "Book",
				PrimaryKey: []string{"id"},
				Columns: []*schema.Column{
					{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
					{Name: "title", Type: "VARCHAR(255)"},
					{Name: "publisher_name", Type: "VARCHAR(255)"},
					{Name: "publisher_country", Type: "VARCHAR(255)"},
				},
			},
		},
	}
}

func normalizeSchema(t *testing.T, s *schema.RelationalSchema, fds []FunctionalDependency) *NormalizedSchema {
	t.Helper()
	return NewNormalizer(testutil.NewTestLogger(t)).Normalize(s, fds, nil)
}

func TestNormalize_TransitiveDependency(t *testing.T) {
	fds := []FunctionalDependency{
		{Determinant: []string{"publisher_name"}, Dependent: []string{"publisher_country"}},
	}

	out := normalizeSchema(t, bookSchema(), fds)
	require.Len(t, out.Tables.Tables, 2)

	book := out.Tables.Table("Book")
	require.NotNil(t, book)
	// The dependent moved out; the determinant stays for traceability.
	assert.Equal(t, []string{"id", "title", "publisher_name"}, book.ColumnNames())
	assert.Equal(t, []string{"id"}, book.PrimaryKey)

	split := out.Tables.Table("Book_publisher_name")
	require.NotNil(t, split)
	assert.Equal(t, []string{"publisher_name", "publisher_country"}, split.ColumnNames())
	assert.Equal(t, []string{"publisher_name"}, split.PrimaryKey)
	// Decomposition asserts no referential integrity yet.
	assert.Empty(t, split.ForeignKeys)

	// Join path reconstructs the original on the determinant.
	require.Len(t, out.JoinPaths, 1)
	jp := out.JoinPaths[0]
	assert.Equal(t, "Book", jp.FromTable)
	assert.Equal(t, "Book_publisher_name", jp.ToTable)
	assert.Equal(t, "INNER", jp.JoinType)
	assert.Equal(t, []string{"publisher_name"}, jp.JoinCondition.FromAttributes)

	// Moved attribute is tracked.
	assert.Equal(t, "Book_publisher_name.publisher_country",
		out.AttributeMapping["Book.publisher_country"])

	assert.True(t, out.KeyReport["Book"])
	assert.True(t, out.DependencyReport["Book"])
}

func TestNormalize_AlreadyInThirdNormalForm(t *testing.T) {
	fds := []FunctionalDependency{
		// The key determines everything: not a violation.
		{Determinant: []string{"id"}, Dependent: []string{"title"}},
	}

	out := normalizeSchema(t, bookSchema(), fds)
	assert.Len(t, out.Tables.Tables, 1)
	assert.Contains(t, out.Steps, "Book: already in 3NF")
	assert.Empty(t, out.JoinPaths)
}

func TestNormalize_SkipsTableWithoutKey(t *testing.T) {
	s := &schema.RelationalSchema{
		Tables: []*schema.Table{
			{
				Name: "Scratch",
				Columns: []*schema.Column{
					{Name: "a", Type: "INTEGER"},
					{Name: "b", Type: "INTEGER"},
				},
			},
		},
	}
	fds := []FunctionalDependency{
		{Determinant: []string{"a"}, Dependent: []string{"b"}},
	}

	out := normalizeSchema(t, s, fds)
	// Never guess a key: the table passes through untouched.
	assert.Len(t, out.Tables.Tables, 1)
	assert.Equal(t, []string{"a", "b"}, out.Tables.Table("Scratch").ColumnNames())
	assert.False(t, out.KeyReport["Scratch"])
	require.Len(t, out.Steps, 1)
	assert.Contains(t, out.Steps[0], "no primary key")
}

func TestNormalize_UntrustedDeterminantSkipped(t *testing.T) {
	s := bookSchema()
	book := s.Table("Book")
	book.Columns = append(book.Columns, &schema.Column{Name: "publisher_id", Type: "INTEGER"})
	book.ForeignKeys = []schema.ForeignKey{{
		Columns: []string{"publisher_id"}, RefTable: "Publisher", RefColumns: []string{"id"},
	}}

	fds := []FunctionalDependency{
		// Determinant is only a foreign-key column without key support:
		// treated as spurious.
		{Determinant: []string{"publisher_id"}, Dependent: []string{"title"}},
	}

	out := normalizeSchema(t, s, fds)
	assert.Len(t, out.Tables.Tables, 1)
	assert.True(t, out.Tables.Table("Book").HasColumn("title"))

	skipped := false
	for _, step := range out.Steps {
		if strings.Contains(step, "foreign-key only") {
			skipped = true
		}
	}
	assert.True(t, skipped, "steps: %v", out.Steps)
}

func TestNormalize_UniqueConstraintIsCandidateKey(t *testing.T) {
	s := bookSchema()
	s.Table("Book").UniqueConstraints = [][]string{{"publisher_name"}}

	fds := []FunctionalDependency{
		// The determinant is itself a candidate key, hence a superkey: no
		// violation.
		{Determinant: []string{"publisher_name"}, Dependent: []string{"publisher_country"}},
	}

	out := normalizeSchema(t, s, fds)
	assert.Len(t, out.Tables.Tables, 1)
}

func TestNormalize_AttributeConservation(t *testing.T) {
	fds := []FunctionalDependency{
		{Determinant: []string{"publisher_name"}, Dependent: []string{"publisher_country"}},
	}
	original := bookSchema()
	out := normalizeSchema(t, original, fds)

	// Every original column survives somewhere in the normalized schema.
	for _, col := range bookSchema().Tables[0].Columns {
		found := false
		for _, table := range out.Tables.Tables {
			if table.HasColumn(col.Name) {
				found = true
				break
			}
		}
		assert.True(t, found, "column %s lost in normalization", col.Name)
	}

	// The input schema itself is untouched.
	assert.Equal(t, bookSchema(), original)
}

func TestNormalize_ScopedDependencyOnlyAppliesToItsTable(t *testing.T) {
	s := bookSchema()
	s.Tables = append(s.Tables, &schema.Table{
		Name:       "Magazine",
		PrimaryKey: []string{"id"},
		Columns: []*schema.Column{
			{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
			{Name: "publisher_name", Type: "VARCHAR(255)"},
			{Name: "publisher_country", Type: "VARCHAR(255)"},
		},
	})

	fds := []FunctionalDependency{
		{Table: "Magazine", Determinant: []string{"publisher_name"}, Dependent: []string{"publisher_country"}},
	}

	out := normalizeSchema(t, s, fds)
	// Book keeps its columns; only Magazine decomposes.
	assert.True(t, out.Tables.Table("Book").HasColumn("publisher_country"))
	assert.NotNil(t, out.Tables.Table("Magazine_publisher_name"))
}

func TestNormalize_SharedDeterminantMergesIntoOneSplit(t *testing.T) {
	s := bookSchema()
	s.Table("Book").Columns = append(s.Table("Book").Columns,
		&schema.Column{Name: "publisher_city", Type: "VARCHAR(255)"})

	fds := []FunctionalDependency{
		{Determinant: []string{"publisher_name"}, Dependent: []string{"publisher_country"}},
		{Determinant: []string{"publisher_name"}, Dependent: []string{"publisher_city"}},
	}

	out := normalizeSchema(t, s, fds)
	require.Len(t, out.Tables.Tables, 2)

	split := out.Tables.Table("Book_publisher_name")
	require.NotNil(t, split)
	// Both dependents land in the one split table.
	assert.Equal(t, []string{"publisher_name", "publisher_country", "publisher_city"},
		split.ColumnNames())
	assert.Equal(t, "Book_publisher_name.publisher_country",
		out.AttributeMapping["Book.publisher_country"])
	assert.Equal(t, "Book_publisher_name.publisher_city",
		out.AttributeMapping["Book.publisher_city"])
	require.Len(t, out.JoinPaths, 1)

	// No column may vanish when violations share a determinant.
	for _, name := range []string{"id", "title", "publisher_name", "publisher_country", "publisher_city"} {
		found := false
		for _, table := range out.Tables.Tables {
			if table.HasColumn(name) {
				found = true
				break
			}
		}
		assert.True(t, found, "column %s lost in normalization", name)
	}
}

func TestNormalize_ChainedDependenciesRouteJoinsThroughSplits(t *testing.T) {
	s := &schema.RelationalSchema{
		Tables: []*schema.Table{
			{
				Name:       "Report",
				PrimaryKey: []string{"id"},
				Columns: []*schema.Column{
					{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
					{Name: "region", Type: "VARCHAR(255)"},
					{Name: "manager", Type: "VARCHAR(255)"},
					{Name: "phone", Type: "VARCHAR(255)"},
				},
			},
		},
	}
	fds := []FunctionalDependency{
		{Determinant: []string{"region"}, Dependent: []string{"manager"}},
		{Determinant: []string{"manager"}, Dependent: []string{"phone"}},
	}

	out := normalizeSchema(t, s, fds)
	require.Len(t, out.Tables.Tables, 3)
	assert.Equal(t, []string{"id", "region"}, out.Tables.Table("Report").ColumnNames())
	assert.Equal(t, []string{"region", "manager"}, out.Tables.Table("Report_region").ColumnNames())
	assert.Equal(t, []string{"manager", "phone"}, out.Tables.Table("Report_manager").ColumnNames())

	require.Len(t, out.JoinPaths, 2)
	assert.Equal(t, "Report", out.JoinPaths[0].FromTable)
	assert.Equal(t, "Report_region", out.JoinPaths[0].ToTable)
	// `manager` left the retained table with the first decomposition; the
	// second join must start from the table that now holds it.
	assert.Equal(t, "Report_region", out.JoinPaths[1].FromTable)
	assert.Equal(t, "Report_manager", out.JoinPaths[1].ToTable)

	// Every join condition references columns its from-table actually has.
	for _, jp := range out.JoinPaths {
		from := out.Tables.Table(jp.FromTable)
		require.NotNil(t, from)
		for _, col := range jp.JoinCondition.FromAttributes {
			assert.True(t, from.HasColumn(col),
				"join path from %s references column %s it does not have", jp.FromTable, col)
		}
	}
}

func TestMergeByDeterminant(t *testing.T) {
	fds := []FunctionalDependency{
		{Determinant: []string{"a"}, Dependent: []string{"b"}},
		{Determinant: []string{"A"}, Dependent: []string{"c", "b"}},
		{Determinant: []string{"x", "y"}, Dependent: []string{"z"}},
		{Determinant: []string{"y", "x"}, Dependent: []string{"w"}},
	}

	merged := mergeByDeterminant(fds)
	require.Len(t, merged, 2)
	assert.Equal(t, []string{"a"}, merged[0].Determinant)
	assert.Equal(t, []string{"b", "c"}, merged[0].Dependent)
	assert.Equal(t, []string{"x", "y"}, merged[1].Determinant)
	assert.Equal(t, []string{"z", "w"}, merged[1].Dependent)
}

func TestFunctionalDependency_Filtering(t *testing.T) {
	table := bookSchema().Tables[0]

	tests := []struct {
		name string
		fd   FunctionalDependency
		want bool
	}{
		{"applies", FunctionalDependency{Determinant: []string{"publisher_name"}, Dependent: []string{"publisher_country"}}, true},
		{"missing determinant column", FunctionalDependency{Determinant: []string{"ghost"}, Dependent: []string{"title"}}, false},
		{"missing dependent column", FunctionalDependency{Determinant: []string{"id"}, Dependent: []string{"ghost"}}, false},
		{"trivial", FunctionalDependency{Determinant: []string{"id", "title"}, Dependent: []string{"title"}}, false},
		{"empty sides", FunctionalDependency{}, false},
		{"wrong scope", FunctionalDependency{Table: "Other", Determinant: []string{"id"}, Dependent: []string{"title"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fd.appliesTo(table))
		})
	}
}
