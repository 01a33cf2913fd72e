package chart

import "testing"

func assertMinimumShape(t *testing.T, cfg Config) {
	t.Helper()

	if _, ok := cfg["title"].(map[string]any); !ok {
		t.Errorf("config missing title: %v", cfg)
	}

	series, ok := cfg["series"].([]any)
	if !ok || len(series) == 0 {
		t.Fatalf("config missing non-empty series: %v", cfg)
	}
	pie := true
	for _, entry := range series {
		m, ok := entry.(map[string]any)
		if !ok {
			t.Fatalf("series entry is not a map: %v", entry)
		}
		typ, ok := m["type"].(string)
		if !ok || typ == "" {
			t.Errorf("series entry missing type: %v", m)
		}
		if _, ok := m["data"]; !ok {
			t.Errorf("series entry missing data: %v", m)
		}
		if typ != "pie" {
			pie = false
		}
	}

	if !pie {
		if _, ok := cfg["xAxis"]; !ok {
			t.Errorf("non-pie config missing xAxis: %v", cfg)
		}
		if _, ok := cfg["yAxis"]; !ok {
			t.Errorf("non-pie config missing yAxis: %v", cfg)
		}
	}
}

func TestPlaceholderShape(t *testing.T) {
	assertMinimumShape(t, Placeholder("nothing to show"))
}

func TestParseErrorShape(t *testing.T) {
	cfg := ParseError(3)
	assertMinimumShape(t, cfg)

	title := cfg["title"].(map[string]any)["text"].(string)
	if title != "Visualization 3 (Parsing Error)" {
		t.Errorf("title = %q, want parse-error title with index", title)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"nil", nil},
		{"empty", Config{}},
		{"series without type", Config{"series": []any{map[string]any{"data": []any{1.0}}}}},
		{"series without data", Config{"series": []any{map[string]any{"type": "line"}}}},
		{"string title", Config{"title": "plain title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMinimumShape(t, Normalize(tt.cfg))
		})
	}
}

func TestNormalizeKeepsExistingValues(t *testing.T) {
	cfg := Config{
		"title":  map[string]any{"text": "kept"},
		"series": []any{map[string]any{"type": "line", "data": []any{1.0, 2.0}}},
		"xAxis":  map[string]any{"type": "category", "data": []any{"a", "b"}},
		"yAxis":  map[string]any{"type": "value"},
	}
	out := Normalize(cfg)

	if out["title"].(map[string]any)["text"] != "kept" {
		t.Error("Normalize() replaced an existing title")
	}
	series := out["series"].([]any)[0].(map[string]any)
	if series["type"] != "line" {
		t.Errorf("series type = %v, want \"line\"", series["type"])
	}
	if len(series["data"].([]any)) != 2 {
		t.Error("Normalize() replaced existing series data")
	}
}

func TestNormalizePieSkipsAxes(t *testing.T) {
	cfg := Normalize(Config{
		"series": []any{map[string]any{"type": "pie", "data": []any{}}},
	})
	if _, ok := cfg["xAxis"]; ok {
		t.Error("pie config should not get an xAxis")
	}
}
