// Command demo walks through the offline parts of the visualization
// pipeline: dataset loading and summarization, template charts, coder
// message parsing, and code sanitization. It needs no model backend and
// no Python interpreter.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/chart"
	"github.com/agentviz/agentviz/pkg/dataset"
	"github.com/agentviz/agentviz/pkg/sandbox"
)

const sampleCSV = `Category,Region,Amount
Books,North,1200.50
Books,South,950.25
Games,North,2100.00
Games,South,1780.40
Music,North,640.10
Music,South,810.90
`

func main() {
	fmt.Println("=== agentviz pipeline demo ===")
	fmt.Println()

	// 1. Load and summarize a dataset.
	dir, err := os.MkdirTemp("", "agentviz-demo-")
	if err != nil {
		fmt.Printf("temp dir FAILED: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		fmt.Printf("writing sample FAILED: %v\n", err)
		return
	}

	table, err := dataset.Load(path)
	if err != nil {
		fmt.Printf("dataset load FAILED: %v\n", err)
		return
	}
	fmt.Printf("[1] Dataset loaded: %d rows, columns %v\n", table.NumRows, table.Header())
	fmt.Println()
	fmt.Println(dataset.Summarize(table).Describe())

	// 2. Data-driven template charts.
	configs := chart.DefaultVisualizations(table)
	fmt.Printf("[2] Template visualizations: %d\n", len(configs))
	for _, cfg := range configs {
		if title, ok := cfg["title"].(map[string]any); ok {
			fmt.Printf("    - %v\n", title["text"])
		}
	}

	// 3. Parse a coder message the way the engine does after the exchange.
	coderMessage := api.Message{
		Participant: "Visualization_Coder",
		Role:        api.RoleCoder,
		Content: "Here you go:\n```javascript\n" +
			`{title: {text: "Amount by Region"}, xAxis: {type: "category", data: ["North", "South"]}, yAxis: {type: "value"}, series: [{type: "bar", data: [3940.6, 3541.55]}]}` +
			"\n```\n",
		CreatedAt: time.Now().UTC(),
	}
	parsed := chart.FromMessages([]api.Message{coderMessage})
	fmt.Printf("[3] Parsed %d configuration(s) from the coder message (unquoted keys repaired)\n", len(parsed))
	if len(parsed) > 0 {
		pretty, _ := json.MarshalIndent(chart.Normalize(parsed[0]), "    ", "  ")
		fmt.Printf("    %s\n", pretty)
	}

	// 4. Sanitize generated Python before it would reach the sandbox.
	code := `import pandas as pd
import os
import plotly.express as px
os.system("rm -rf /")
fig = px.bar(df, x="Category", y="Amount")`
	fmt.Println("[4] Sanitized code:")
	fmt.Println(sandbox.Sanitize(code))
}
