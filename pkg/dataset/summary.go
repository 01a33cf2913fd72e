package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// NumericStats holds descriptive statistics for a numeric column.
// Fields are pointers so that undefined values (empty column, single
// value std) serialize as null rather than a misleading zero.
type NumericStats struct {
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Std    *float64 `json:"std"`
}

// ValueCount is one categorical value and its occurrence count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnSummary describes one column of a summarized table.
type ColumnSummary struct {
	Name         string        `json:"name"`
	Type         Kind          `json:"type"`
	Missing      int           `json:"missing"`
	Stats        *NumericStats `json:"stats,omitempty"`
	UniqueValues int           `json:"unique_values,omitempty"`
	TopValues    []ValueCount  `json:"top_values,omitempty"`
}

// Summary is the descriptive overview of a table used in API responses
// and in the analyst's prompt context.
type Summary struct {
	NumRows    int             `json:"num_rows"`
	NumCols    int             `json:"num_cols"`
	Columns    []ColumnSummary `json:"columns"`
	SampleData [][]string      `json:"sample_data"`
	Header     []string        `json:"header"`
}

const (
	topValueLimit = 10
	sampleRows    = 5
)

// Summarize computes a Summary for the table: per-column type and
// missing counts, min/max/mean/median/std for numeric columns, top-10
// value counts for categorical columns, and a 5-row sample.
func Summarize(t *Table) *Summary {
	s := &Summary{
		NumRows: t.NumRows,
		NumCols: len(t.Columns),
		Header:  t.Header(),
	}

	for i := range t.Columns {
		col := &t.Columns[i]
		cs := ColumnSummary{
			Name:    col.Name,
			Type:    col.Kind,
			Missing: col.Missing(),
		}
		if col.Kind == KindNumeric {
			cs.Stats = numericStats(col.Numbers)
		} else {
			cs.UniqueValues, cs.TopValues = valueCounts(col.Values)
		}
		s.Columns = append(s.Columns, cs)
	}

	n := sampleRows
	if t.NumRows < n {
		n = t.NumRows
	}
	for i := 0; i < n; i++ {
		s.SampleData = append(s.SampleData, t.Row(i))
	}

	return s
}

// NumericColumns returns the names of numeric columns in order.
func (s *Summary) NumericColumns() []string {
	var names []string
	for _, c := range s.Columns {
		if c.Type == KindNumeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// CategoricalColumns returns the names of categorical columns in order.
func (s *Summary) CategoricalColumns() []string {
	var names []string
	for _, c := range s.Columns {
		if c.Type == KindCategorical {
			names = append(names, c.Name)
		}
	}
	return names
}

// Describe renders the summary as plain text suitable for inclusion in
// a model prompt.
func (s *Summary) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %d rows, %d columns\n", s.NumRows, s.NumCols)
	b.WriteString("Columns:\n")
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "- %s (%s, %d missing)", c.Name, c.Type, c.Missing)
		if c.Stats != nil && c.Stats.Min != nil && c.Stats.Max != nil && c.Stats.Mean != nil {
			fmt.Fprintf(&b, " min=%.4g max=%.4g mean=%.4g", *c.Stats.Min, *c.Stats.Max, *c.Stats.Mean)
		}
		if len(c.TopValues) > 0 {
			tops := make([]string, 0, len(c.TopValues))
			for _, tv := range c.TopValues {
				tops = append(tops, fmt.Sprintf("%s (%d)", tv.Value, tv.Count))
			}
			fmt.Fprintf(&b, " top: %s", strings.Join(tops, ", "))
		}
		b.WriteByte('\n')
	}
	if len(s.SampleData) > 0 {
		b.WriteString("Sample rows:\n")
		fmt.Fprintf(&b, "%s\n", strings.Join(s.Header, " | "))
		for _, row := range s.SampleData {
			fmt.Fprintf(&b, "%s\n", strings.Join(row, " | "))
		}
	}
	return b.String()
}

func numericStats(numbers []float64) *NumericStats {
	var values []float64
	for _, v := range numbers {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return &NumericStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	min := sorted[0]
	max := sorted[len(sorted)-1]

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	stats := &NumericStats{
		Min:    &min,
		Max:    &max,
		Mean:   &mean,
		Median: &median,
	}

	// Sample standard deviation, undefined for a single value.
	if len(values) > 1 {
		ss := 0.0
		for _, v := range values {
			d := v - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(len(values)-1))
		stats.Std = &std
	}

	return stats
}

func valueCounts(values []string) (unique int, top []ValueCount) {
	counts := make(map[string]int)
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		counts[v]++
	}

	all := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		all = append(all, ValueCount{Value: v, Count: n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Value < all[j].Value
	})

	if len(all) > topValueLimit {
		return len(counts), all[:topValueLimit]
	}
	return len(counts), all
}
