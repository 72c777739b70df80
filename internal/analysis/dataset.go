package analysis

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Row maps a column name to its raw value. Values are strings, numbers, bools or nil.
type Row map[string]any

// Dataset is an ordered sequence of rows sharing one column set.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewDataset builds a Dataset whose columns are the keys of the first row.
// Keys are sorted because map iteration order is not stable.
func NewDataset(name string, rows []Row) *Dataset {
	ds := &Dataset{Name: name, Rows: rows}
	if len(rows) == 0 {
		return ds
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	ds.Columns = cols
	return ds
}

// Len returns the number of rows; a nil dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// HasColumn reports whether name is part of the column set.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Value returns the raw value of column in row i. Missing keys read as nil.
func (d *Dataset) Value(i int, column string) any {
	if d == nil || i < 0 || i >= len(d.Rows) {
		return nil
	}
	return d.Rows[i][column]
}

// Normalize renders a raw value as trimmed text. nil becomes "".
func Normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return strings.TrimSpace(x.String())
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case time.Time:
		return x.Format(time.RFC3339)
	case interface{ String() string }:
		return strings.TrimSpace(x.String())
	default:
		return ""
	}
}

// IsEmpty reports whether v is nil or blank text.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// ParseFloat converts a raw value to a finite float64. Text must parse in full
// after trimming; partial parses such as "12abc" are rejected, as are NaN and ±Inf.
func ParseFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case uint32:
		f = float64(x)
	default:
		s := Normalize(v)
		if s == "" || hexPrefixed(s) {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// hexPrefixed reports a 0x literal, which strconv accepts but plain decimal
// number parsing elsewhere does not.
func hexPrefixed(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// scaleByMagnitude divides xs by the power of two nearest above max |x|, so
// squares neither underflow nor overflow. Power-of-two scaling is exact, and
// results multiplied back with math.Ldexp(r, exp) match the unscaled ones.
func scaleByMagnitude(xs []float64) (scaled []float64, exp int) {
	var peak float64
	for _, v := range xs {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	scaled = make([]float64, len(xs))
	if peak == 0 {
		copy(scaled, xs)
		return scaled, 0
	}
	_, exp = math.Frexp(peak)
	for i, v := range xs {
		scaled[i] = math.Ldexp(v, -exp)
	}
	return scaled, exp
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"1/2/2006", "2 Jan 2006", "Jan 2, 2006", "January 2, 2006",
}

// ParseDate reports whether s parses as a calendar date in one of the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
