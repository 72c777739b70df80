package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrelationEntry is one cell of the correlation matrix.
type CorrelationEntry struct {
	ColumnA     string  `json:"column_a" yaml:"column_a"`
	ColumnB     string  `json:"column_b" yaml:"column_b"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
}

// CorrelationMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrelationMatrix struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"` // row-major, Values[i][j]
}

// Len returns the number of columns indexing the matrix.
func (m CorrelationMatrix) Len() int { return len(m.Columns) }

// Get returns r(a, b) and whether both columns are in the matrix.
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// Entries flattens the matrix into ordered pairs, self-pairs included.
func (m CorrelationMatrix) Entries() []CorrelationEntry {
	out := make([]CorrelationEntry, 0, len(m.Columns)*len(m.Columns))
	for i, a := range m.Columns {
		for j, b := range m.Columns {
			out = append(out, CorrelationEntry{ColumnA: a, ColumnB: b, Coefficient: m.Values[i][j]})
		}
	}
	return out
}

// Correlate computes Pearson's r for every ordered pair of numericColumns using
// pairwise-complete rows. Degenerate pairs (no rows, zero variance) are 0.
func Correlate(ds *Dataset, numericColumns []string) CorrelationMatrix {
	n := len(numericColumns)
	m := CorrelationMatrix{
		Columns: append([]string(nil), numericColumns...),
		Values:  make([][]float64, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := Pearson(ds, numericColumns[a], numericColumns[b])
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m
}

// Pearson returns the correlation coefficient between columns a and b.
func Pearson(ds *Dataset, a, b string) float64 {
	xs, ys, _ := PairwiseComplete(ds, a, b)
	return pearson(xs, ys, a == b)
}

func pearson(xs, ys []float64, self bool) float64 {
	if len(xs) == 0 || constant(xs) || constant(ys) {
		return 0
	}
	xs, _ = scaleByMagnitude(xs)
	ys, _ = scaleByMagnitude(ys)
	_, sx := stat.PopMeanStdDev(xs, nil)
	_, sy := stat.PopMeanStdDev(ys, nil)
	if sx == 0 || sy == 0 || math.IsNaN(sx) || math.IsNaN(sy) {
		return 0
	}
	if self {
		return 1
	}
	r := stat.Correlation(xs, ys, nil)
	switch {
	case math.IsNaN(r) || math.IsInf(r, 0):
		return 0
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

// PairwiseComplete returns parallel values of columns a and b taken from the rows
// where both parse as finite floats, along with those row indices.
func PairwiseComplete(ds *Dataset, a, b string) (xs, ys []float64, rows []int) {
	for i := 0; i < ds.Len(); i++ {
		x, okx := ParseFloat(ds.Value(i, a))
		if !okx {
			continue
		}
		y, oky := ParseFloat(ds.Value(i, b))
		if !oky {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
		rows = append(rows, i)
	}
	return xs, ys, rows
}

// constant reports whether every value equals the first; float rounding in the
// mean can leave a tiny non-zero deviation for such columns.
func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}
