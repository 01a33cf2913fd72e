// Package chart builds and repairs ECharts-style chart configurations:
// extraction of generated config blocks from conversation messages,
// tolerant JS-object-to-JSON parsing, normalization to the minimum
// shape the renderer requires, and data-driven template charts.
package chart

import "fmt"

// Config is an ECharts option object in plain-data form.
type Config = map[string]any

// Placeholder returns a minimal empty bar chart carrying the given
// title. It satisfies the renderer's minimum shape and is the terminal
// fallback when no usable chart could be produced.
func Placeholder(title string) Config {
	return Config{
		"title":   map[string]any{"text": title},
		"tooltip": map[string]any{},
		"xAxis":   map[string]any{"type": "category", "data": []any{}},
		"yAxis":   map[string]any{"type": "value"},
		"series":  []any{map[string]any{"data": []any{}, "type": "bar"}},
	}
}

// ParseError returns the placeholder chart used when a generated config
// block cannot be parsed. The 1-based index identifies which block failed.
func ParseError(index int) Config {
	return Config{
		"title":   map[string]any{"text": fmt.Sprintf("Visualization %d (Parsing Error)", index)},
		"tooltip": map[string]any{},
		"xAxis":   map[string]any{"type": "category", "data": []any{"Error"}},
		"yAxis":   map[string]any{"type": "value"},
		"series":  []any{map[string]any{"data": []any{float64(0)}, "type": "bar"}},
	}
}

// Normalize fills any missing minimum-shape key with an empty but
// well-typed default: a title, axis descriptors (unless every series is
// a pie), and a non-empty series list whose entries each declare a type
// and a data sequence. The input map is modified in place and returned;
// a nil input yields a placeholder.
func Normalize(cfg Config) Config {
	if cfg == nil {
		return Placeholder("")
	}

	if _, ok := cfg["title"].(map[string]any); !ok {
		if s, ok := cfg["title"].(string); ok {
			cfg["title"] = map[string]any{"text": s}
		} else {
			cfg["title"] = map[string]any{"text": ""}
		}
	}

	series, _ := cfg["series"].([]any)
	if len(series) == 0 {
		series = []any{map[string]any{"data": []any{}, "type": "bar"}}
	}
	for i, entry := range series {
		m, ok := entry.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		if _, ok := m["type"].(string); !ok {
			m["type"] = "bar"
		}
		if _, ok := m["data"]; !ok {
			m["data"] = []any{}
		}
		series[i] = m
	}
	cfg["series"] = series

	if !allPie(series) {
		if _, ok := cfg["xAxis"]; !ok {
			cfg["xAxis"] = map[string]any{"type": "category", "data": []any{}}
		}
		if _, ok := cfg["yAxis"]; !ok {
			cfg["yAxis"] = map[string]any{"type": "value"}
		}
	}

	return cfg
}

func allPie(series []any) bool {
	for _, entry := range series {
		m, ok := entry.(map[string]any)
		if !ok {
			return false
		}
		if t, _ := m["type"].(string); t != "pie" {
			return false
		}
	}
	return len(series) > 0
}
