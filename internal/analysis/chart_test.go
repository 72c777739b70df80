package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartDataset() (*Dataset, map[string]ColumnType) {
	ds := &Dataset{
		Name:    "chart",
		Columns: []string{"x", "y", "cat"},
		Rows: []Row{
			{"x": "1", "y": "10", "cat": "b"},
			{"x": "bad", "y": "20", "cat": "a"},
			{"x": "3", "y": "30", "cat": "a"},
			{"x": "4", "y": "", "cat": "c"},
			{"x": "5", "y": "50", "cat": "b"},
			{"x": "6", "y": "60", "cat": "d"},
		},
	}
	return ds, map[string]ColumnType{"x": TypeNumeric, "y": TypeNumeric, "cat": TypeCategorical}
}

func TestAggregateNumericDistribution(t *testing.T) {
	ds, types := chartDataset()
	s, err := Aggregate(ds, types, ChartRequest{Columns: []string{"x"}, Mode: ModeDistribution})
	require.NoError(t, err)
	assert.Equal(t, ChartScatter, s.Kind)
	assert.Empty(t, s.Categories)
	require.Len(t, s.Points, 5)
	assert.Equal(t, Point{X: 0, Y: 1, Row: 0}, s.Points[0])
	assert.Equal(t, Point{X: 2, Y: 3, Row: 2}, s.Points[1])
}

func TestAggregateCategoricalDistribution(t *testing.T) {
	ds, types := chartDataset()
	s, err := Aggregate(ds, types, ChartRequest{Columns: []string{"cat"}})
	require.NoError(t, err)
	assert.Equal(t, ModeDistribution, s.Mode)
	assert.Equal(t, ChartBar, s.Kind)
	assert.Equal(t, []CategoryCount{{"b", 2}, {"a", 2}, {"c", 1}, {"d", 1}}, s.Categories)

	pie, err := Aggregate(ds, types, ChartRequest{Columns: []string{"cat"}, Kind: ChartPie})
	require.NoError(t, err)
	assert.Equal(t, ChartPie, pie.Kind)
}

func TestAggregateRelationshipMatchesCorrelationRows(t *testing.T) {
	ds, types := chartDataset()
	s, err := Aggregate(ds, types, ChartRequest{Columns: []string{"x", "y"}, Mode: ModeRelationship, Kind: ChartLine})
	require.NoError(t, err)
	assert.Equal(t, ChartLine, s.Kind)

	xs, ys, rows := PairwiseComplete(ds, "x", "y")
	require.Len(t, s.Points, len(xs))
	for i, p := range s.Points {
		assert.Equal(t, xs[i], p.X)
		assert.Equal(t, ys[i], p.Y)
		assert.Equal(t, rows[i], p.Row)
	}
	assert.Equal(t, []int{0, 2, 4, 5}, rows)
}

func TestAggregateErrors(t *testing.T) {
	ds, types := chartDataset()
	tests := []struct {
		name string
		req  ChartRequest
		want error
	}{
		{"unknown column", ChartRequest{Columns: []string{"nope"}}, ErrUnknownColumn},
		{"distribution needs one", ChartRequest{Columns: []string{"x", "y"}, Mode: ModeDistribution}, ErrColumnCount},
		{"relationship needs two", ChartRequest{Columns: []string{"x"}, Mode: ModeRelationship}, ErrColumnCount},
		{"relationship needs numeric", ChartRequest{Columns: []string{"x", "cat"}, Mode: ModeRelationship}, ErrNotNumeric},
		{"pie on numeric", ChartRequest{Columns: []string{"x"}, Kind: ChartPie}, ErrUnsupportedChart},
		{"pie relationship", ChartRequest{Columns: []string{"x", "y"}, Mode: ModeRelationship, Kind: ChartPie}, ErrUnsupportedChart},
		{"bad mode", ChartRequest{Columns: []string{"x"}, Mode: "heatmap"}, ErrUnsupportedChart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(ds, types, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseChartKind(t *testing.T) {
	k, err := ParseChartKind(" Area ")
	require.NoError(t, err)
	assert.Equal(t, ChartArea, k)

	k, err = ParseChartKind("")
	require.NoError(t, err)
	assert.Equal(t, ChartKind(""), k)

	_, err = ParseChartKind("radar")
	assert.ErrorIs(t, err, ErrUnsupportedChart)
}

func TestDefaultChartKind(t *testing.T) {
	assert.Equal(t, ChartScatter, DefaultChartKind(TypeNumeric))
	assert.Equal(t, ChartBar, DefaultChartKind(TypeBoolean))
	assert.Equal(t, ChartBar, DefaultChartKind(TypeDate))
}
