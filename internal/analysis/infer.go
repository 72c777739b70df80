package analysis

import (
	"strings"
)

// ColumnType is the semantic kind assigned to a column.
type ColumnType string

const (
	TypeNull        ColumnType = "null"
	TypeNumeric     ColumnType = "numeric"
	TypeBoolean     ColumnType = "boolean"
	TypeDate        ColumnType = "date"
	TypeCategorical ColumnType = "categorical"
)

// DefaultSampleSize is the number of leading rows inspected per column.
const DefaultSampleSize = 10

// typePriority orders per-value classifications; ties in the column vote go to
// the earlier entry.
var typePriority = []ColumnType{TypeNull, TypeNumeric, TypeBoolean, TypeDate, TypeCategorical}

// booleanDomain holds the lower-cased tokens accepted as boolean-like answers.
var booleanDomain = map[string]bool{"yes": true, "no": true, "maybe": true, "": true}

// maxBooleanDistinct bounds the distinct sampled values of a boolean column.
const maxBooleanDistinct = 3

// IsNumeric reports whether columns of this type feed numeric statistics and correlation.
func (t ColumnType) IsNumeric() bool { return t == TypeNumeric }

// Infer classifies every column of ds from its first sampleSize rows.
// sampleSize < 1 falls back to DefaultSampleSize.
func Infer(ds *Dataset, sampleSize int) map[string]ColumnType {
	out := make(map[string]ColumnType)
	if ds.Len() == 0 {
		return out
	}
	if sampleSize < 1 {
		sampleSize = DefaultSampleSize
	}
	n := sampleSize
	if n > ds.Len() {
		n = ds.Len()
	}
	for _, col := range ds.Columns {
		sample := make([]any, n)
		for i := 0; i < n; i++ {
			sample[i] = ds.Value(i, col)
		}
		out[col] = InferColumn(sample)
	}
	return out
}

// InferColumn returns the majority classification of the sampled values.
// An empty sample is TypeNull.
func InferColumn(sample []any) ColumnType {
	distinct := map[string]struct{}{}
	for _, v := range sample {
		if s := strings.ToLower(Normalize(v)); s != "" {
			distinct[s] = struct{}{}
		}
	}
	votes := make(map[ColumnType]int, len(typePriority))
	for _, v := range sample {
		votes[classifyValue(v, len(distinct))]++
	}
	best := TypeNull
	bestCount := 0
	for _, t := range typePriority {
		if votes[t] > bestCount {
			best = t
			bestCount = votes[t]
		}
	}
	return best
}

// classifyValue applies the per-value rules in priority order.
func classifyValue(v any, distinct int) ColumnType {
	if IsEmpty(v) {
		return TypeNull
	}
	if _, ok := ParseFloat(v); ok {
		return TypeNumeric
	}
	if _, ok := v.(bool); ok {
		return TypeBoolean
	}
	s := Normalize(v)
	if booleanDomain[strings.ToLower(s)] && distinct <= maxBooleanDistinct {
		return TypeBoolean
	}
	if _, ok := ParseDate(s); ok {
		return TypeDate
	}
	return TypeCategorical
}
