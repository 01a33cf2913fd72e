package chart

import (
	"fmt"
	"strings"

	"github.com/agentviz/agentviz/pkg/dataset"
)

// Category/value limits for readable default charts.
const (
	barCategoryLimit = 15
	pieCategoryLimit = 8
)

// BarByCategory builds a bar chart of the numeric column summed per
// category, descending, limited to the top categories. When either
// column is missing the result is a "data not available" placeholder.
func BarByCategory(t *dataset.Table, categoryCol, valueCol, title string) Config {
	labels, totals := dataset.GroupSum(t, categoryCol, valueCol)
	if len(labels) == 0 {
		return Placeholder(fmt.Sprintf("%s (Data not available)", title))
	}
	if len(labels) > barCategoryLimit {
		labels = labels[:barCategoryLimit]
		totals = totals[:barCategoryLimit]
	}

	return Config{
		"title": map[string]any{
			"text": title,
			"left": "center",
			"textStyle": map[string]any{
				"fontSize":   16,
				"fontWeight": "bold",
			},
		},
		"tooltip": map[string]any{
			"trigger": "axis",
		},
		"grid": map[string]any{
			"left":         "5%",
			"right":        "5%",
			"bottom":       "15%",
			"containLabel": true,
		},
		"xAxis": map[string]any{
			"type": "category",
			"data": toAnySlice(labels),
			"axisLabel": map[string]any{
				"rotate":   45,
				"fontSize": 10,
				"interval": 0,
			},
		},
		"yAxis": map[string]any{
			"type": "value",
			"name": valueCol,
		},
		"series": []any{map[string]any{
			"name": valueCol,
			"type": "bar",
			"data": floatsToAny(totals),
			"itemStyle": map[string]any{
				"color": "#5470c6",
			},
			"label": map[string]any{
				"show":     true,
				"position": "top",
				"fontSize": 10,
			},
		}},
	}
}

// PieByCategory builds a pie chart of the numeric column summed per
// category. Categories past the top eight are rolled into a single
// "Other Categories" slice.
func PieByCategory(t *dataset.Table, categoryCol, valueCol, title string) Config {
	labels, totals := dataset.GroupSum(t, categoryCol, valueCol)
	if len(labels) == 0 {
		return Config{
			"title":   map[string]any{"text": fmt.Sprintf("%s (Data not available)", title)},
			"tooltip": map[string]any{},
			"series":  []any{map[string]any{"data": []any{}, "type": "pie"}},
		}
	}

	if len(labels) > pieCategoryLimit {
		other := 0.0
		for _, v := range totals[pieCategoryLimit:] {
			other += v
		}
		labels = append(labels[:pieCategoryLimit], "Other Categories")
		totals = append(totals[:pieCategoryLimit], other)
	}

	data := make([]any, len(labels))
	for i := range labels {
		data[i] = map[string]any{
			"name":  labels[i],
			"value": totals[i],
		}
	}

	return Config{
		"title": map[string]any{
			"text": title,
			"left": "center",
			"textStyle": map[string]any{
				"fontSize":   16,
				"fontWeight": "bold",
			},
		},
		"tooltip": map[string]any{
			"trigger": "item",
		},
		"legend": map[string]any{
			"type":   "scroll",
			"orient": "horizontal",
			"bottom": "bottom",
		},
		"series": []any{map[string]any{
			"name":              categoryCol,
			"type":              "pie",
			"radius":            []any{"30%", "70%"},
			"center":            []any{"50%", "50%"},
			"avoidLabelOverlap": true,
			"itemStyle": map[string]any{
				"borderRadius": 10,
				"borderColor":  "#fff",
				"borderWidth":  2,
			},
			"label": map[string]any{
				"show":      true,
				"formatter": "{b}: {d}%",
				"fontSize":  10,
			},
			"data": data,
		}},
	}
}

// StackedComparison builds a stacked bar chart comparing two numeric
// columns per category, sorted by the first column's totals.
func StackedComparison(t *dataset.Table, categoryCol, valueCol1, valueCol2, title string) Config {
	labels, totals1 := dataset.GroupSum(t, categoryCol, valueCol1)
	if len(labels) == 0 || t.Column(valueCol2) == nil {
		return Placeholder(fmt.Sprintf("%s (Data not available)", title))
	}

	// Second series re-aggregated and aligned to the first's label order.
	labels2, totals2 := dataset.GroupSum(t, categoryCol, valueCol2)
	byLabel := make(map[string]float64, len(labels2))
	for i, l := range labels2 {
		byLabel[l] = totals2[i]
	}

	if len(labels) > barCategoryLimit {
		labels = labels[:barCategoryLimit]
		totals1 = totals1[:barCategoryLimit]
	}
	aligned := make([]float64, len(labels))
	for i, l := range labels {
		aligned[i] = byLabel[l]
	}

	return Config{
		"title": map[string]any{
			"text": title,
			"left": "center",
			"textStyle": map[string]any{
				"fontSize":   16,
				"fontWeight": "bold",
			},
		},
		"tooltip": map[string]any{
			"trigger": "axis",
			"axisPointer": map[string]any{
				"type": "shadow",
			},
		},
		"legend": map[string]any{
			"data":   []any{valueCol1, valueCol2},
			"bottom": "bottom",
		},
		"grid": map[string]any{
			"left":         "5%",
			"right":        "5%",
			"bottom":       "15%",
			"top":          "10%",
			"containLabel": true,
		},
		"xAxis": map[string]any{
			"type": "category",
			"data": toAnySlice(labels),
			"axisLabel": map[string]any{
				"rotate":   45,
				"fontSize": 10,
				"interval": 0,
			},
		},
		"yAxis": map[string]any{
			"type": "value",
			"name": "Value",
		},
		"series": []any{
			map[string]any{
				"name":  valueCol1,
				"type":  "bar",
				"stack": "total",
				"emphasis": map[string]any{
					"focus": "series",
				},
				"data": floatsToAny(totals1),
				"itemStyle": map[string]any{
					"color": "#5470c6",
				},
			},
			map[string]any{
				"name":  valueCol2,
				"type":  "bar",
				"stack": "total",
				"emphasis": map[string]any{
					"focus": "series",
				},
				"data": floatsToAny(aligned),
				"itemStyle": map[string]any{
					"color": "#91cc75",
				},
			},
		},
	}
}

// DefaultVisualizations builds the three standard charts for a table
// using hint-driven column discovery: a bar chart, a pie over a second
// categorical column, and a stacked comparison of two numeric columns.
func DefaultVisualizations(t *dataset.Table) []Config {
	cat1, val1 := dataset.FindColumns(t,
		[]string{"province", "provincia", "region", "area", "competente"},
		[]string{"total", "impegno", "value", "amount"})

	title1 := "Category Breakdown"
	if cat1 != "" && val1 != "" {
		title1 = fmt.Sprintf("%s by %s", val1, cat1)
	}
	bar := BarByCategory(t, cat1, val1, title1)

	cat2 := secondCategorical(t, cat1)
	title2 := "Value Distribution"
	if cat2 != "" && val1 != "" {
		title2 = fmt.Sprintf("%s Distribution by %s", val1, cat2)
	}
	pie := PieByCategory(t, cat2, val1, title2)

	val2a, val2b := comparisonColumns(t)
	title3 := "Value Comparison"
	if cat1 != "" && val2a != "" && val2b != "" {
		title3 = fmt.Sprintf("%s vs %s by %s", val2a, val2b, cat1)
	}
	stacked := StackedComparison(t, cat1, val2a, val2b, title3)

	return []Config{bar, pie, stacked}
}

// secondCategorical picks a categorical column other than exclude,
// preferring type/description-like names.
func secondCategorical(t *dataset.Table, exclude string) string {
	hinted := func(hints []string) string {
		for _, hint := range hints {
			for i := range t.Columns {
				col := &t.Columns[i]
				if col.Name == exclude || col.Kind != dataset.KindCategorical {
					continue
				}
				if containsFold(col.Name, hint) {
					return col.Name
				}
			}
		}
		return ""
	}
	if name := hinted([]string{"type", "desc", "kind", "intervento", "tipologia"}); name != "" {
		return name
	}
	for i := range t.Columns {
		if t.Columns[i].Name != exclude && t.Columns[i].Kind == dataset.KindCategorical {
			return t.Columns[i].Name
		}
	}
	return ""
}

// comparisonColumns picks two distinct numeric columns, preferring
// commitment-like and payment-like names.
func comparisonColumns(t *dataset.Table) (first, second string) {
	pick := func(hints []string, exclude string) string {
		for _, hint := range hints {
			for i := range t.Columns {
				col := &t.Columns[i]
				if col.Kind != dataset.KindNumeric || col.Name == exclude {
					continue
				}
				if containsFold(col.Name, hint) {
					return col.Name
				}
			}
		}
		return ""
	}

	first = pick([]string{"commitment", "impegno", "total"}, "")
	if first == "" {
		for i := range t.Columns {
			if t.Columns[i].Kind == dataset.KindNumeric {
				first = t.Columns[i].Name
				break
			}
		}
	}

	second = pick([]string{"payment", "pagato", "paid"}, first)
	if second == "" {
		for i := range t.Columns {
			if t.Columns[i].Kind == dataset.KindNumeric && t.Columns[i].Name != first {
				second = t.Columns[i].Name
				break
			}
		}
	}

	return first, second
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func floatsToAny(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
