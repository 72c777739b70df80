package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelatePerfectPositive(t *testing.T) {
	ds := NewDataset("s1", []Row{
		{"a": "1", "b": "2"},
		{"a": "2", "b": "4"},
		{"a": "3", "b": "6"},
	})
	r, ok := Correlate(ds, []string{"a", "b"}).Get("a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestCorrelatePerfectNegative(t *testing.T) {
	ds := NewDataset("s2", []Row{
		{"a": "1", "b": "5"},
		{"a": "2", "b": "4"},
		{"a": "3", "b": "3"},
	})
	assert.InDelta(t, -1.0, Pearson(ds, "a", "b"), 1e-12)
}

func TestCorrelateZeroVarianceIsZero(t *testing.T) {
	ds := NewDataset("s5", []Row{
		{"c": "5", "x": "1"},
		{"c": "5", "x": "2"},
		{"c": "5", "x": "3"},
		{"c": "5", "x": "9"},
	})
	m := Correlate(ds, []string{"c", "x"})
	r, _ := m.Get("c", "x")
	assert.Equal(t, 0.0, r)
	self, _ := m.Get("c", "c")
	assert.Equal(t, 0.0, self)
	other, _ := m.Get("x", "x")
	assert.Equal(t, 1.0, other)
}

func TestCorrelateRepeatedFractionIsDegenerate(t *testing.T) {
	ds := NewDataset("f", []Row{
		{"c": "0.1", "x": "1"},
		{"c": "0.1", "x": "2"},
		{"c": "0.1", "x": "4"},
	})
	assert.Equal(t, 0.0, Pearson(ds, "c", "x"))
}

func TestCorrelatePairwiseCompleteCases(t *testing.T) {
	ds := NewDataset("pc", []Row{
		{"a": "1", "b": "2"},
		{"a": "2", "b": "4"},
		{"a": "oops", "b": "100"},
		{"a": "4", "b": ""},
		{"a": "5", "b": "10"},
	})
	xs, ys, rows := PairwiseComplete(ds, "a", "b")
	assert.Equal(t, []float64{1, 2, 5}, xs)
	assert.Equal(t, []float64{2, 4, 10}, ys)
	assert.Equal(t, []int{0, 1, 4}, rows)
	assert.InDelta(t, 1.0, Pearson(ds, "a", "b"), 1e-12)
}

func TestCorrelateNoOverlapIsZero(t *testing.T) {
	ds := NewDataset("no", []Row{
		{"a": "1", "b": ""},
		{"a": "", "b": "2"},
	})
	assert.Equal(t, 0.0, Pearson(ds, "a", "b"))
}

func TestCorrelateProperties(t *testing.T) {
	ds := NewDataset("props", []Row{
		{"a": "1", "b": "9.5", "c": "3", "d": "2"},
		{"a": "4", "b": "2", "c": "3", "d": "x"},
		{"a": "2", "b": "7", "c": "3", "d": "8"},
		{"a": "8", "b": "1.25", "c": "3", "d": "5"},
		{"a": "5", "b": "", "c": "3", "d": "1"},
		{"a": "3", "b": "6", "c": "3", "d": "3"},
	})
	cols := []string{"a", "b", "c", "d"}
	m := Correlate(ds, cols)
	require.Equal(t, cols, m.Columns)
	assert.Len(t, m.Entries(), 16)

	for i := range cols {
		for j := range cols {
			r := m.Values[i][j]
			assert.False(t, math.IsNaN(r))
			assert.GreaterOrEqual(t, r, -1.0)
			assert.LessOrEqual(t, r, 1.0)
			assert.Equal(t, math.Float64bits(r), math.Float64bits(m.Values[j][i]), "symmetry %s/%s", cols[i], cols[j])
		}
	}
	for _, c := range []string{"a", "b", "d"} {
		r, _ := m.Get(c, c)
		assert.Equal(t, 1.0, r, c)
	}
	// c is constant
	for _, c := range cols {
		r, _ := m.Get("c", c)
		assert.Equal(t, 0.0, r)
	}

	again := Correlate(ds, cols)
	assert.Equal(t, m, again)
}

func TestCorrelateEmpty(t *testing.T) {
	m := Correlate(NewDataset("e", nil), nil)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Entries())
	_, ok := m.Get("a", "b")
	assert.False(t, ok)
}

func TestTopPairs(t *testing.T) {
	m := CorrelationMatrix{
		Columns: []string{"a", "b", "c"},
		Values: [][]float64{
			{1, 0.2, -0.9},
			{0.2, 1, 0.5},
			{-0.9, 0.5, 1},
		},
	}
	top := TopPairs(m, 2)
	require.Len(t, top, 2)
	assert.Equal(t, CorrelationEntry{ColumnA: "a", ColumnB: "c", Coefficient: -0.9}, top[0])
	assert.Equal(t, "b", top[1].ColumnA)
	assert.Len(t, TopPairs(m, 0), 3)
}

func TestCorrelateExtremeMagnitudes(t *testing.T) {
	for _, scale := range []float64{1e-200, 1e200} {
		ds := NewDataset("extreme", []Row{
			{"a": 1 * scale, "b": 1.0},
			{"a": 2 * scale, "b": 2.0},
			{"a": 3 * scale, "b": 3.0},
		})
		m := Correlate(ds, []string{"a", "b"})
		r, ok := m.Get("a", "b")
		require.True(t, ok)
		assert.InDelta(t, 1.0, r, 1e-12, "scale %g", scale)
		self, _ := m.Get("a", "a")
		assert.Equal(t, 1.0, self, "scale %g", scale)
	}
}
