package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/datamatic/internal/analysis"
	"github.com/KaramelBytes/datamatic/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadFileCSV(t *testing.T) {
	p := writeFile(t, "hop_harvest.csv", "date,plot,alpha_acids,moisture\n"+
		"2024-08-10,A1,12.5,74\n"+
		"2024-08-12,A1,11.8,71\n"+
		"2024-08-15,B3,10.2,68\n")

	ds, err := parser.LoadFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, "hop_harvest.csv", ds.Name)
	assert.Equal(t, []string{"date", "plot", "alpha_acids", "moisture"}, ds.Columns)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "B3", ds.Value(2, "plot"))

	types := analysis.Infer(ds, analysis.DefaultSampleSize)
	assert.Equal(t, analysis.TypeDate, types["date"])
	assert.Equal(t, analysis.TypeNumeric, types["alpha_acids"])
	assert.Equal(t, analysis.TypeCategorical, types["plot"])
}

func TestLoadFileTSVByExtension(t *testing.T) {
	p := writeFile(t, "yield.tsv", "plot\tkg\nA1\t12\nA2\t14\n")
	ds, err := parser.LoadFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"plot", "kg"}, ds.Columns)
	assert.Equal(t, "14", ds.Value(1, "kg"))
}

func TestLoadFileCSVDelimiterOverride(t *testing.T) {
	p := writeFile(t, "semi.csv", "a;b\n1;2\n")
	ds, err := parser.LoadFile(p, parser.Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Columns)
	assert.Equal(t, "2", ds.Value(0, "b"))
}

func TestReadCSVShortRowsAndHeaders(t *testing.T) {
	in := "name, ,name\nx,y,z\nonly\n"
	ds, err := parser.ReadCSV(strings.NewReader(in), "t", ',', 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "column_2", "name_2"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "z", ds.Value(0, "name_2"))
	assert.Nil(t, ds.Value(1, "column_2"))
	assert.True(t, analysis.IsEmpty(ds.Value(1, "name_2")))
}

func TestReadCSVMaxRows(t *testing.T) {
	in := "v\n1\n2\n3\n4\n"
	ds, err := parser.ReadCSV(strings.NewReader(in), "t", ',', 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestReadCSVEmptyInput(t *testing.T) {
	ds, err := parser.ReadCSV(strings.NewReader(""), "empty", ',', 0)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Empty(t, ds.Columns)
}

func TestLoadFileUnsupported(t *testing.T) {
	p := writeFile(t, "notes.txt", "hello")
	_, err := parser.LoadFile(p, parser.Options{})
	assert.ErrorIs(t, err, parser.ErrUnsupported)
	assert.False(t, parser.Supported("notes.txt"))
	assert.True(t, parser.Supported("DATA.CSV"))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := parser.LoadFile(filepath.Join(t.TempDir(), "nope.csv"), parser.Options{})
	assert.Error(t, err)
}
