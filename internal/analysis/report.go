package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// maxReportPairs bounds the correlation pairs listed in Markdown.
const maxReportPairs = 10

// maxReportCategories bounds the top values listed per categorical column.
const maxReportCategories = 8

// Markdown renders a compact report suitable for terminals or standalone docs.
func (p *DatasetProfile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p == nil {
		b.WriteString("\n(nothing to show)\n")
		return b.String()
	}
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(p.Columns)))
	if p.Empty() {
		b.WriteString("\n(nothing to show)\n")
		return b.String()
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range p.Columns {
		missPct := 0.0
		if p.RowCount > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(p.RowCount)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (missing %.1f%%, unique %d)", safeName(c.Name), c.Type, missPct, len(c.UniqueValues)))
		switch {
		case c.Stats.Numeric != nil:
			ns := c.Stats.Numeric
			if !ns.HasSignal() {
				b.WriteString(" — no numeric values")
				break
			}
			b.WriteString(fmt.Sprintf(" — mean %.4g, median %.4g, std %.4g, min %.4g, max %.4g",
				ns.Mean, ns.Median, ns.StdDev, ns.Min, ns.Max))
			if ns.Dropped > 0 {
				b.WriteString(fmt.Sprintf("; dropped %d", ns.Dropped))
			}
			if ns.Outliers > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", ns.Outliers, ns.OutlierThreshold))
			}
		case c.Stats.Categorical != nil:
			cs := c.Stats.Categorical
			tops := CategoriesByCount(cs)
			if len(tops) == 0 {
				break
			}
			if len(tops) > maxReportCategories {
				tops = tops[:maxReportCategories]
			}
			b.WriteString(fmt.Sprintf(" — mode %s; top: ", safeVal(cs.Mode)))
			for i, kv := range tops {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
		}
		b.WriteString("\n")
	}

	if p.Correlation.Len() >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, e := range TopPairs(p.Correlation, maxReportPairs) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", e.ColumnA, e.ColumnB, e.Coefficient))
		}
	}

	hasSamples := false
	for _, c := range p.Columns {
		if len(c.SampleValues) > 0 {
			hasSamples = true
			break
		}
	}
	if hasSamples {
		b.WriteString("\n[SAMPLE VALUES]\n")
		for _, c := range p.Columns {
			if len(c.SampleValues) == 0 {
				continue
			}
			vals := make([]string, len(c.SampleValues))
			for i, v := range c.SampleValues {
				if r := []rune(v); len(r) > 40 {
					v = string(r[:37]) + "..."
				}
				vals[i] = safeVal(v)
			}
			b.WriteString(fmt.Sprintf("- %s: %s\n", safeName(c.Name), strings.Join(vals, " | ")))
		}
	}
	return b.String()
}

// TopPairs lists the distinct off-diagonal pairs of m ordered by |r| descending,
// ties by column names, truncated to limit (0 = all).
func TopPairs(m CorrelationMatrix, limit int) []CorrelationEntry {
	var pairs []CorrelationEntry
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			pairs = append(pairs, CorrelationEntry{ColumnA: m.Columns[i], ColumnB: m.Columns[j], Coefficient: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].Coefficient), math.Abs(pairs[j].Coefficient)
		if ai == aj {
			return pairs[i].ColumnA+pairs[i].ColumnB < pairs[j].ColumnA+pairs[j].ColumnB
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
