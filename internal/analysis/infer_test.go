package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rowsOf(col string, vals ...any) []Row {
	rows := make([]Row, len(vals))
	for i, v := range vals {
		rows[i] = Row{col: v}
	}
	return rows
}

func TestInferScenarioNumericPair(t *testing.T) {
	ds := NewDataset("pair", []Row{
		{"a": "1", "b": "2"},
		{"a": "2", "b": "4"},
		{"a": "3", "b": "6"},
	})
	types := Infer(ds, 10)
	assert.Equal(t, map[string]ColumnType{"a": TypeNumeric, "b": TypeNumeric}, types)
}

func TestInferEmptyDataset(t *testing.T) {
	assert.Empty(t, Infer(NewDataset("empty", nil), 10))
	assert.Empty(t, Infer(nil, 10))
}

func TestInferColumn(t *testing.T) {
	tests := []struct {
		name   string
		sample []any
		want   ColumnType
	}{
		{"yes no", []any{"yes", "no", "yes"}, TypeBoolean},
		{"yes no maybe mixed case", []any{" Yes", "NO", "maybe", "yes"}, TypeBoolean},
		{"too many distinct for boolean", []any{"yes", "no", "maybe", "n/a"}, TypeCategorical},
		{"native bools", []any{true, false, true}, TypeBoolean},
		{"all empty", []any{"", nil, "   "}, TypeNull},
		{"empty sample", nil, TypeNull},
		{"dates", []any{"2024-01-02", "2024-02-03", "2024/03/04"}, TypeDate},
		{"categories", []any{"red", "green", "blue"}, TypeCategorical},
		{"native numbers", []any{1, 2.5, int64(7)}, TypeNumeric},
		{"majority numeric", []any{"1", "2", "x"}, TypeNumeric},
		{"tie numeric beats categorical", []any{"1", "x"}, TypeNumeric},
		{"tie null beats categorical", []any{"", "x"}, TypeNull},
		{"trailing garbage is not numeric", []any{"12abc", "7kg", "3"}, TypeCategorical},
		{"non-finite text is not numeric", []any{"NaN", "Inf", "1e400"}, TypeCategorical},
		{"non-finite float is not numeric", []any{math.Inf(1), math.NaN(), "a"}, TypeCategorical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferColumn(tt.sample))
		})
	}
}

func TestInferUsesOnlyTheSample(t *testing.T) {
	vals := []any{"1", "2", "3", "a", "b", "c", "d", "e"}
	ds := NewDataset("s", rowsOf("x", vals...))
	assert.Equal(t, TypeNumeric, Infer(ds, 3)["x"])
	assert.Equal(t, TypeCategorical, Infer(ds, 8)["x"])
}

func TestInferDefaultsSampleSize(t *testing.T) {
	vals := make([]any, 0, 20)
	for i := 0; i < DefaultSampleSize; i++ {
		vals = append(vals, "7")
	}
	for i := 0; i < 10; i++ {
		vals = append(vals, "word")
	}
	ds := NewDataset("s", rowsOf("x", vals...))
	assert.Equal(t, TypeNumeric, Infer(ds, 0)["x"])
}

func TestInferNeverDowngradesNumeric(t *testing.T) {
	vals := []any{"1.5", "-2", "3e2", " 4 ", "0", "17", "0.001", "99", "12", "6"}
	ds := NewDataset("n", rowsOf("x", vals...))
	for size := 1; size <= len(vals)+2; size++ {
		assert.Equal(t, TypeNumeric, Infer(ds, size)["x"], "sample size %d", size)
	}
}

func TestInferMissingKeysReadAsNull(t *testing.T) {
	ds := &Dataset{Columns: []string{"a", "b"}, Rows: []Row{{"a": "1"}, {"a": "2"}}}
	types := Infer(ds, 10)
	assert.Equal(t, TypeNumeric, types["a"])
	assert.Equal(t, TypeNull, types["b"])
}

func TestParseFloatStrict(t *testing.T) {
	for _, in := range []any{"12abc", "", " ", "1,5", "NaN", "+Inf", "1e400", "0x1p4", "-0X10", nil, true} {
		_, ok := ParseFloat(in)
		assert.False(t, ok, "%#v", in)
	}
	f, ok := ParseFloat("  -3.25 ")
	assert.True(t, ok)
	assert.Equal(t, -3.25, f)
	f, ok = ParseFloat(uint32(4))
	assert.True(t, ok)
	assert.Equal(t, 4.0, f)
}

func TestInferColumnRejectsHexLiterals(t *testing.T) {
	assert.Equal(t, TypeCategorical, InferColumn([]any{"0x1p4", "0x10", "0XFF"}))
}
