package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentviz/agentviz/pkg/dataset"
)

func loadTable(t *testing.T, content string) *dataset.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	tbl, err := dataset.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return tbl
}

func TestBarByCategory(t *testing.T) {
	tbl := loadTable(t, "Region,Total\nNorth,10\nSouth,30\nNorth,5\n")

	cfg := BarByCategory(tbl, "Region", "Total", "Total by Region")
	assertMinimumShape(t, cfg)

	x := cfg["xAxis"].(map[string]any)["data"].([]any)
	if len(x) != 2 || x[0] != "South" {
		t.Errorf("xAxis data = %v, want [South North]", x)
	}
	data := cfg["series"].([]any)[0].(map[string]any)["data"].([]any)
	if data[0] != 30.0 || data[1] != 15.0 {
		t.Errorf("series data = %v, want [30 15]", data)
	}
}

func TestBarByCategoryMissingColumns(t *testing.T) {
	tbl := loadTable(t, "A,B\nx,y\n")

	cfg := BarByCategory(tbl, "Nope", "Missing", "Broken")
	assertMinimumShape(t, cfg)

	title := cfg["title"].(map[string]any)["text"].(string)
	if title != "Broken (Data not available)" {
		t.Errorf("title = %q, want data-not-available marker", title)
	}
}

func TestPieByCategoryOtherRollup(t *testing.T) {
	content := "Cat,Value\n"
	for i := 0; i < 12; i++ {
		content += string(rune('a'+i)) + "cat," + string(rune('1'+i%9)) + "\n"
	}
	tbl := loadTable(t, content)

	cfg := PieByCategory(tbl, "Cat", "Value", "Distribution")
	assertMinimumShape(t, cfg)

	data := cfg["series"].([]any)[0].(map[string]any)["data"].([]any)
	if len(data) != 9 {
		t.Fatalf("pie slices = %d, want 8 + Other", len(data))
	}
	last := data[8].(map[string]any)
	if last["name"] != "Other Categories" {
		t.Errorf("last slice name = %v, want \"Other Categories\"", last["name"])
	}
}

func TestStackedComparison(t *testing.T) {
	tbl := loadTable(t, "Region,Impegno totale,Pagato totale\nNorth,100,60\nSouth,200,150\n")

	cfg := StackedComparison(tbl, "Region", "Impegno totale", "Pagato totale", "Comparison")
	assertMinimumShape(t, cfg)

	series := cfg["series"].([]any)
	if len(series) != 2 {
		t.Fatalf("series count = %d, want 2", len(series))
	}
	// Labels sorted by first column: South (200) before North (100); the
	// second series must stay aligned to that order.
	second := series[1].(map[string]any)["data"].([]any)
	if second[0] != 150.0 || second[1] != 60.0 {
		t.Errorf("second series = %v, want [150 60]", second)
	}
}

func TestDefaultVisualizations(t *testing.T) {
	tbl := loadTable(t, "Provincia competente,Tipologia,Impegno totale,Pagato totale\nMilano,strade,100,60\nRoma,scuole,200,150\nNapoli,strade,50,20\n")

	configs := DefaultVisualizations(tbl)
	if len(configs) != 3 {
		t.Fatalf("configs = %d, want 3", len(configs))
	}
	for _, cfg := range configs {
		assertMinimumShape(t, cfg)
	}

	// The pie should use the second categorical column.
	pieSeries := configs[1]["series"].([]any)[0].(map[string]any)
	if pieSeries["name"] != "Tipologia" {
		t.Errorf("pie series name = %v, want \"Tipologia\"", pieSeries["name"])
	}
}
