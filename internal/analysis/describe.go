package analysis

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"
)

// DefaultOutlierThreshold is the robust |z| above which a value counts as an outlier.
const DefaultOutlierThreshold = 3.5

// minOutlierValues is the smallest sample for which MAD outliers are reported.
const minOutlierValues = 8

// Stats carries the type-dependent summary of one column. At most one field is set;
// null columns carry neither.
type Stats struct {
	Numeric     *NumericStats     `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty" yaml:"categorical,omitempty"`
}

// NumericStats summarizes a numeric column with population estimators.
// When Count is zero every float field is NaN.
type NumericStats struct {
	Count   int `yaml:"count"`
	Missing int `yaml:"missing"`
	Dropped int `yaml:"dropped"`

	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	StdDev float64 `yaml:"std_dev"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`

	Outliers         int     `yaml:"outliers"`
	OutlierThreshold float64 `yaml:"outlier_threshold"`
}

// HasSignal reports whether at least one value survived numeric coercion.
func (s *NumericStats) HasSignal() bool { return s != nil && s.Count > 0 }

// CategoryCount is one frequency-table entry.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// CategoricalStats is the frequency table of a categorical, boolean or date column.
// Frequencies keeps first-seen row order.
type CategoricalStats struct {
	Frequencies []CategoryCount `json:"frequencies" yaml:"frequencies"`
	Unique      int             `json:"unique" yaml:"unique"`
	Mode        string          `json:"mode" yaml:"mode"`
	ModeCount   int             `json:"mode_count" yaml:"mode_count"`
	Missing     int             `json:"missing" yaml:"missing"`
}

// Count returns the frequency of key, or 0.
func (c *CategoricalStats) Count(key string) int {
	if c == nil {
		return 0
	}
	for _, kv := range c.Frequencies {
		if kv.Value == key {
			return kv.Count
		}
	}
	return 0
}

// Table returns the frequency table as a map.
func (c *CategoricalStats) Table() map[string]int {
	out := make(map[string]int)
	if c == nil {
		return out
	}
	for _, kv := range c.Frequencies {
		out[kv.Value] = kv.Count
	}
	return out
}

// Summarize computes the statistics of column according to typ. It never fails:
// bad values are dropped and counted.
func Summarize(ds *Dataset, column string, typ ColumnType) Stats {
	return summarize(ds, column, typ, DefaultOutlierThreshold)
}

func summarize(ds *Dataset, column string, typ ColumnType, outlierThr float64) Stats {
	switch typ {
	case TypeNumeric:
		return Stats{Numeric: numericStats(ds, column, outlierThr)}
	case TypeCategorical, TypeBoolean, TypeDate:
		return Stats{Categorical: categoricalStats(ds, column)}
	default:
		return Stats{}
	}
}

// NumericValues coerces the full column, returning parsed values in row order
// along with the number of empty and unparseable entries.
func NumericValues(ds *Dataset, column string) (vals []float64, missing, dropped int) {
	for i := 0; i < ds.Len(); i++ {
		v := ds.Value(i, column)
		if IsEmpty(v) {
			missing++
			continue
		}
		f, ok := ParseFloat(v)
		if !ok {
			dropped++
			continue
		}
		vals = append(vals, f)
	}
	return vals, missing, dropped
}

func numericStats(ds *Dataset, column string, outlierThr float64) *NumericStats {
	vals, missing, dropped := NumericValues(ds, column)
	s := &NumericStats{Count: len(vals), Missing: missing, Dropped: dropped, OutlierThreshold: outlierThr}
	if len(vals) == 0 {
		nan := math.NaN()
		s.Mean, s.Median, s.StdDev, s.Min, s.Max = nan, nan, nan, nan, nan
		return s
	}
	scaled, exp := scaleByMagnitude(vals)
	data := stats.Float64Data(scaled)
	// Inputs are non-empty and finite, so the library only errors on empty input.
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	std, _ := stats.StandardDeviationPopulation(data)
	s.Mean, s.Median, s.StdDev = math.Ldexp(mean, exp), math.Ldexp(median, exp), math.Ldexp(std, exp)
	s.Min, _ = stats.Min(stats.Float64Data(vals))
	s.Max, _ = stats.Max(stats.Float64Data(vals))
	if outlierThr > 0 && len(vals) >= minOutlierValues {
		// robust z is scale free
		s.Outliers = countOutliers(data, median, outlierThr)
	}
	return s
}

// countOutliers counts values whose robust z-score (MAD based) exceeds thr.
func countOutliers(data stats.Float64Data, median, thr float64) int {
	mad, err := stats.MedianAbsoluteDeviationPopulation(data)
	if err != nil || mad == 0 {
		return 0
	}
	var n int
	for _, v := range data {
		if math.Abs(0.6745*(v-median)/mad) > thr {
			n++
		}
	}
	return n
}

func categoricalStats(ds *Dataset, column string) *CategoricalStats {
	c := &CategoricalStats{}
	index := map[string]int{}
	for i := 0; i < ds.Len(); i++ {
		key := Normalize(ds.Value(i, column))
		if key == "" {
			c.Missing++
			continue
		}
		if j, ok := index[key]; ok {
			c.Frequencies[j].Count++
			continue
		}
		index[key] = len(c.Frequencies)
		c.Frequencies = append(c.Frequencies, CategoryCount{Value: key, Count: 1})
	}
	c.Unique = len(c.Frequencies)
	// strict > keeps the first-encountered key on ties
	for _, kv := range c.Frequencies {
		if kv.Count > c.ModeCount {
			c.Mode = kv.Value
			c.ModeCount = kv.Count
		}
	}
	return c
}

// numericStatsJSON mirrors NumericStats with NaN rendered as null.
type numericStatsJSON struct {
	Count            int      `json:"count"`
	Missing          int      `json:"missing"`
	Dropped          int      `json:"dropped"`
	Mean             *float64 `json:"mean"`
	Median           *float64 `json:"median"`
	StdDev           *float64 `json:"std_dev"`
	Min              *float64 `json:"min"`
	Max              *float64 `json:"max"`
	Outliers         int      `json:"outliers"`
	OutlierThreshold float64  `json:"outlier_threshold"`
}

func finitePtr(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func fromPtr(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// MarshalJSON encodes undefined statistics as null since JSON has no NaN.
func (s NumericStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(numericStatsJSON{
		Count: s.Count, Missing: s.Missing, Dropped: s.Dropped,
		Mean: finitePtr(s.Mean), Median: finitePtr(s.Median), StdDev: finitePtr(s.StdDev),
		Min: finitePtr(s.Min), Max: finitePtr(s.Max),
		Outliers: s.Outliers, OutlierThreshold: s.OutlierThreshold,
	})
}

// UnmarshalJSON restores null statistics as NaN.
func (s *NumericStats) UnmarshalJSON(b []byte) error {
	var raw numericStatsJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = NumericStats{
		Count: raw.Count, Missing: raw.Missing, Dropped: raw.Dropped,
		Mean: fromPtr(raw.Mean), Median: fromPtr(raw.Median), StdDev: fromPtr(raw.StdDev),
		Min: fromPtr(raw.Min), Max: fromPtr(raw.Max),
		Outliers: raw.Outliers, OutlierThreshold: raw.OutlierThreshold,
	}
	return nil
}
