package debug

import (
	"log/slog"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check string
		want  bool
	}{
		{"empty", "", "providers", false},
		{"single", "providers", "providers", true},
		{"single miss", "providers", "sandbox", false},
		{"multiple", "providers,sandbox,engine", "sandbox", true},
		{"whitespace", " providers , sandbox ", "sandbox", true},
		{"case insensitive", "PROVIDERS", "providers", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats := parseCategories(tt.input)
			if got := cats[tt.check]; got != tt.want {
				t.Errorf("parseCategories(%q)[%q] = %v, want %v", tt.input, tt.check, got, tt.want)
			}
		})
	}
}

func TestAllCategory(t *testing.T) {
	old := categories
	defer func() { categories = old }()

	categories = parseCategories("all")
	if !Enabled("providers") || !Enabled("anything") {
		t.Error("'all' should enable every category")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"TRACE", LevelTrace},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate long = %q", got)
	}
}
