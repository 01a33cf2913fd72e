package dataset

import (
	"sort"
	"strings"
)

// maxCategoryCardinality bounds how many distinct values a column may
// have and still be treated as a grouping candidate. Columns above the
// bound are usually identifiers.
const maxCategoryCardinality = 50

// FindColumns picks the best categorical and numeric column pair for a
// default chart, preferring columns whose names contain one of the
// given hints and falling back to the first plausible column of each
// kind. Either result may be empty when the table has no candidate.
func FindColumns(t *Table, categoricalHints, numericalHints []string) (categorical, numeric string) {
	categorical = findByHint(t, categoricalHints, KindCategorical)
	if categorical == "" {
		for i := range t.Columns {
			col := &t.Columns[i]
			if col.Kind != KindCategorical {
				continue
			}
			unique, _ := valueCounts(col.Values)
			if unique > 1 && unique < maxCategoryCardinality {
				categorical = col.Name
				break
			}
		}
	}

	numeric = findByHint(t, numericalHints, KindNumeric)
	if numeric == "" {
		for i := range t.Columns {
			if t.Columns[i].Kind == KindNumeric {
				numeric = t.Columns[i].Name
				break
			}
		}
	}

	return categorical, numeric
}

func findByHint(t *Table, hints []string, kind Kind) string {
	for _, hint := range hints {
		for i := range t.Columns {
			col := &t.Columns[i]
			if col.Kind == kind && strings.Contains(strings.ToLower(col.Name), hint) {
				return col.Name
			}
		}
	}
	return ""
}

// GroupSum groups the table by the categorical column and sums the
// numeric column per group, returned in descending total order. Missing
// category cells group under "N/A"; missing numeric cells count as 0.
func GroupSum(t *Table, categoryCol, valueCol string) (labels []string, totals []float64) {
	cat := t.Column(categoryCol)
	val := t.Column(valueCol)
	if cat == nil || val == nil || val.Kind != KindNumeric {
		return nil, nil
	}

	sums := make(map[string]float64)
	order := make([]string, 0)
	for i := 0; i < t.NumRows; i++ {
		label := "N/A"
		if i < len(cat.Values) {
			if v := strings.TrimSpace(cat.Values[i]); v != "" {
				label = v
			}
		}
		if _, seen := sums[label]; !seen {
			order = append(order, label)
		}
		if i < len(val.Numbers) && !isNaN(val.Numbers[i]) {
			sums[label] += val.Numbers[i]
		} else {
			sums[label] += 0
		}
	}

	// Sort descending by total, stable on first-seen order.
	labels = order
	sort.SliceStable(labels, func(i, j int) bool {
		return sums[labels[i]] > sums[labels[j]]
	})

	totals = make([]float64, len(labels))
	for i, l := range labels {
		totals[i] = sums[l]
	}
	return labels, totals
}

func isNaN(f float64) bool { return f != f }
