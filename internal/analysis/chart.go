package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ChartMode selects between the distribution of one column and the relationship of two.
type ChartMode string

const (
	ModeDistribution ChartMode = "distribution"
	ModeRelationship ChartMode = "relationship"
)

// ChartKind is the presentation a series is shaped for.
type ChartKind string

const (
	ChartScatter ChartKind = "scatter"
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartArea    ChartKind = "area"
	ChartPie     ChartKind = "pie"
)

var (
	ErrUnknownColumn    = errors.New("unknown column")
	ErrColumnCount      = errors.New("wrong number of columns for chart mode")
	ErrNotNumeric       = errors.New("column is not numeric")
	ErrUnsupportedChart = errors.New("unsupported chart")
)

// ParseChartKind maps user input to a ChartKind; "" stays empty (pick default).
func ParseChartKind(s string) (ChartKind, error) {
	switch k := ChartKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", ChartScatter, ChartBar, ChartLine, ChartArea, ChartPie:
		return k, nil
	default:
		return "", fmt.Errorf("%w: kind %q", ErrUnsupportedChart, s)
	}
}

// DefaultChartKind is the initial presentation for a column of type t.
func DefaultChartKind(t ColumnType) ChartKind {
	if t.IsNumeric() {
		return ChartScatter
	}
	return ChartBar
}

// ChartRequest describes one chart to aggregate.
type ChartRequest struct {
	Columns []string
	Mode    ChartMode
	Kind    ChartKind
}

// Point is one plotted coordinate. Row is the source row index.
type Point struct {
	X   float64 `json:"x" yaml:"x"`
	Y   float64 `json:"y" yaml:"y"`
	Row int     `json:"row" yaml:"row"`
}

// Series is plot-ready data for one chart. Numeric charts fill Points,
// categorical distributions fill Categories.
type Series struct {
	Mode       ChartMode       `json:"mode" yaml:"mode"`
	Kind       ChartKind       `json:"kind" yaml:"kind"`
	Columns    []string        `json:"columns" yaml:"columns"`
	Points     []Point         `json:"points,omitempty" yaml:"points,omitempty"`
	Categories []CategoryCount `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Aggregate reshapes rows into a Series according to req and the inferred types.
func Aggregate(ds *Dataset, types map[string]ColumnType, req ChartRequest) (Series, error) {
	for _, c := range req.Columns {
		if !ds.HasColumn(c) {
			return Series{}, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	switch req.Mode {
	case ModeDistribution, "":
		if len(req.Columns) != 1 {
			return Series{}, fmt.Errorf("%w: distribution takes 1, got %d", ErrColumnCount, len(req.Columns))
		}
		return distribution(ds, types[req.Columns[0]], req)
	case ModeRelationship:
		if len(req.Columns) != 2 {
			return Series{}, fmt.Errorf("%w: relationship takes 2, got %d", ErrColumnCount, len(req.Columns))
		}
		return relationship(ds, types, req)
	default:
		return Series{}, fmt.Errorf("%w: mode %q", ErrUnsupportedChart, req.Mode)
	}
}

func distribution(ds *Dataset, t ColumnType, req ChartRequest) (Series, error) {
	col := req.Columns[0]
	kind := req.Kind
	if kind == "" {
		kind = DefaultChartKind(t)
	}
	s := Series{Mode: ModeDistribution, Kind: kind, Columns: []string{col}}
	if t.IsNumeric() {
		if kind == ChartPie {
			return Series{}, fmt.Errorf("%w: pie needs a categorical column, %q is numeric", ErrUnsupportedChart, col)
		}
		for i := 0; i < ds.Len(); i++ {
			if f, ok := ParseFloat(ds.Value(i, col)); ok {
				s.Points = append(s.Points, Point{X: float64(i), Y: f, Row: i})
			}
		}
		return s, nil
	}
	s.Categories = CategoriesByCount(categoricalStats(ds, col))
	return s, nil
}

func relationship(ds *Dataset, types map[string]ColumnType, req ChartRequest) (Series, error) {
	a, b := req.Columns[0], req.Columns[1]
	for _, c := range req.Columns {
		if !types[c].IsNumeric() {
			return Series{}, fmt.Errorf("%w: %q is %s", ErrNotNumeric, c, types[c])
		}
	}
	kind := req.Kind
	if kind == "" {
		kind = ChartScatter
	}
	if kind == ChartPie {
		return Series{}, fmt.Errorf("%w: pie cannot show a relationship", ErrUnsupportedChart)
	}
	xs, ys, rows := PairwiseComplete(ds, a, b)
	s := Series{Mode: ModeRelationship, Kind: kind, Columns: []string{a, b}, Points: make([]Point, len(xs))}
	for i := range xs {
		s.Points[i] = Point{X: xs[i], Y: ys[i], Row: rows[i]}
	}
	return s, nil
}

// CategoriesByCount orders a frequency table by descending count, ties by first-seen.
func CategoriesByCount(c *CategoricalStats) []CategoryCount {
	if c == nil {
		return nil
	}
	out := append([]CategoryCount(nil), c.Frequencies...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
