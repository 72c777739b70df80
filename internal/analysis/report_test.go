package analysis

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	prof, err := testProfiler().Build(context.Background(), harvestDataset())
	require.NoError(t, err)
	md := prof.Markdown()

	for _, want := range []string{
		"[DATASET SUMMARY]",
		"Dataset: harvest.csv",
		"Rows: 4",
		"Columns: 6",
		"[SCHEMA]",
		"- alpha: numeric (missing 0.0%, unique 4) — mean",
		"; dropped 1",
		"- organic: boolean",
		"mode yes; top: yes(3), no(1)",
		"- note: null (missing 100.0%, unique 0)",
		"[CORRELATIONS]",
		"- alpha ~ moisture: r=",
		"[SAMPLE VALUES]",
		"- plot: A1 | A1 | B3 | B3",
	} {
		assert.True(t, strings.Contains(md, want), "markdown missing %q:\n%s", want, md)
	}
}

func TestMarkdownEmpty(t *testing.T) {
	prof, err := testProfiler().Build(context.Background(), NewDataset("empty.csv", nil))
	require.NoError(t, err)
	md := prof.Markdown()
	assert.Contains(t, md, "Rows: 0")
	assert.Contains(t, md, "(nothing to show)")
	assert.NotContains(t, md, "[CORRELATIONS]")
}

func TestMarkdownTruncatesSampleValuesOnRunes(t *testing.T) {
	long := strings.Repeat("é", 45)
	ds := NewDataset("accents", rowsOf("label", long))
	prof, err := testProfiler().Build(context.Background(), ds)
	require.NoError(t, err)
	md := prof.Markdown()

	assert.True(t, utf8.ValidString(md))
	assert.Contains(t, md, "- label: "+strings.Repeat("é", 37)+"...")
}
