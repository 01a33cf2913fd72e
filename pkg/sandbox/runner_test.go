package sandbox

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// requirePython skips the test unless a python3 with the plotting stack
// is available, so the suite stays runnable on machines without it.
func requirePython(t *testing.T) string {
	t.Helper()
	bin, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not available, skipping execution test")
	}
	if err := exec.Command(bin, "-c", "import pandas, plotly").Run(); err != nil {
		t.Skip("pandas/plotly not installed, skipping execution test")
	}
	return bin
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	return path
}

const sampleCSV = "Category,Value\nA,10\nB,20\nC,30\nD,40\nE,50\n"

func TestRunnerBarChart(t *testing.T) {
	bin := requirePython(t)
	dataPath := writeCSV(t, sampleCSV)
	runner := NewRunner(bin, 30*time.Second, 1<<20, nil)

	code := strings.Join([]string{
		"import plotly.express as px",
		`fig = px.bar(df, x="Category", y="Value")`,
	}, "\n")

	result, err := runner.Execute(context.Background(), code, dataPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Failed() {
		t.Fatalf("execution failed: %s", result.Error)
	}
	if len(result.Figure) == 0 {
		t.Fatal("expected a figure, got none")
	}
	if _, ok := result.Figure["data"]; !ok {
		t.Errorf("figure missing data key: %v", result.Figure)
	}
}

func TestRunnerNoFigure(t *testing.T) {
	bin := requirePython(t)
	dataPath := writeCSV(t, sampleCSV)
	runner := NewRunner(bin, 30*time.Second, 1<<20, nil)

	result, err := runner.Execute(context.Background(), "x = 1 + 1", dataPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "No Plotly figure was created. Make sure to assign your figure to a variable named 'fig'."
	if result.Error != want {
		t.Errorf("error = %q, want %q", result.Error, want)
	}
	if len(result.Figure) != 0 {
		t.Errorf("unexpected figure: %v", result.Figure)
	}
}

func TestRunnerExceptionContained(t *testing.T) {
	bin := requirePython(t)
	dataPath := writeCSV(t, sampleCSV)
	runner := NewRunner(bin, 30*time.Second, 1<<20, nil)

	result, err := runner.Execute(context.Background(), `raise ValueError("boom")`, dataPath)
	if err != nil {
		t.Fatalf("Execute returned infrastructure error for a code error: %v", err)
	}
	if !strings.Contains(result.Error, "Error executing code:") {
		t.Errorf("error = %q, want execution error message", result.Error)
	}
	if !strings.Contains(result.Error, "boom") {
		t.Errorf("error does not carry the exception: %q", result.Error)
	}
}

func TestRunnerStdoutCaptured(t *testing.T) {
	bin := requirePython(t)
	dataPath := writeCSV(t, sampleCSV)
	runner := NewRunner(bin, 30*time.Second, 1<<20, nil)

	code := strings.Join([]string{
		"import plotly.express as px",
		`print("rows:", len(df))`,
		`fig = px.bar(df, x="Category", y="Value")`,
	}, "\n")

	result, err := runner.Execute(context.Background(), code, dataPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(result.Output, "rows: 5") {
		t.Errorf("output = %q, want captured print", result.Output)
	}
}

func TestRunnerTimeout(t *testing.T) {
	bin := requirePython(t)
	dataPath := writeCSV(t, sampleCSV)
	runner := NewRunner(bin, 2*time.Second, 1<<20, nil)

	start := time.Now()
	result, err := runner.Execute(context.Background(), "while True:\n    pass", dataPath)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Error != "execution timed out after 2s" {
		t.Errorf("error = %q, want timeout message", result.Error)
	}
	if elapsed > 10*time.Second {
		t.Errorf("subprocess not killed promptly, took %s", elapsed)
	}
}

func TestRunnerSanitizedCodeRuns(t *testing.T) {
	bin := requirePython(t)
	dataPath := writeCSV(t, sampleCSV)
	runner := NewRunner(bin, 30*time.Second, 1<<20, nil)

	code := strings.Join([]string{
		"import os",
		"import plotly.express as px",
		`os.system("touch /tmp/agentviz-escape")`,
		`fig = px.bar(df, x="Category", y="Value")`,
	}, "\n")

	result, err := runner.Execute(context.Background(), code, dataPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Failed() {
		t.Fatalf("execution failed: %s", result.Error)
	}
	if len(result.Figure) == 0 {
		t.Error("expected a figure from the surviving lines")
	}
	if !strings.Contains(result.Code, "# Skipped: import os (module not allowed)") {
		t.Errorf("returned code not sanitized:\n%s", result.Code)
	}
	if strings.Count(result.Code, "\n") != strings.Count(code, "\n") {
		t.Error("sanitized code changed line count")
	}
}

func TestRunnerOutputClamped(t *testing.T) {
	bin := requirePython(t)
	dataPath := writeCSV(t, sampleCSV)
	runner := NewRunner(bin, 30*time.Second, 64, nil)

	code := strings.Join([]string{
		"import plotly.express as px",
		`print("x" * 10000)`,
		`fig = px.bar(df, x="Category", y="Value")`,
	}, "\n")

	result, err := runner.Execute(context.Background(), code, dataPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Output) > 64+len("\n... (output truncated)") {
		t.Errorf("output not clamped, %d bytes", len(result.Output))
	}
	if !strings.HasSuffix(result.Output, "(output truncated)") {
		t.Errorf("missing truncation note: %q", result.Output)
	}
}

func TestRunnerMissingInterpreter(t *testing.T) {
	runner := NewRunner("agentviz-no-such-python", time.Second, 1<<20, nil)
	_, err := runner.Execute(context.Background(), "x = 1", "/nonexistent.csv")
	if err == nil {
		t.Fatal("expected infrastructure error for missing interpreter")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want interpreter-not-found", err)
	}
}
