// Package sandbox executes untrusted model-generated Python in an
// isolated subprocess. Source text is first filtered line by line
// against an import allowlist and a forbidden-construct denylist, then
// run by an embedded harness that binds the plotting libraries and the
// dataset, captures output, and recovers the produced figure.
//
// The textual filter is a behavioral contract, not a security boundary;
// process isolation and the wall-clock timeout are what actually
// contain a hostile payload.
package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// allowedModules is the import allowlist for generated code.
var allowedModules = map[string]bool{
	"pandas":               true,
	"numpy":                true,
	"plotly":               true,
	"datetime":             true,
	"re":                   true,
	"math":                 true,
	"json":                 true,
	"plotly.express":       true,
	"plotly.graph_objects": true,
	"plotly.subplots":      true,
}

// forbidden lists substrings that disable a whole line wherever they
// appear: process spawning, shell execution, dynamic evaluation,
// dynamic import, filesystem access, and opening a local plot viewer.
var forbidden = []string{
	"os.system",
	"subprocess",
	"eval(",
	"exec(",
	"__import__",
	"open(",
	"fig.show(",
}

var (
	importRe     = regexp.MustCompile(`^\s*import\s+`)
	fromImportRe = regexp.MustCompile(`^\s*from\s+\S+\s+import`)
	importModRe  = regexp.MustCompile(`^\s*import\s+([^\s,]+)`)
	fromModRe    = regexp.MustCompile(`^\s*from\s+([^\s.]+)`)
)

// Sanitize rewrites source line by line, replacing each line that
// imports a disallowed module or contains a forbidden construct with an
// inert marker comment. The result always has exactly as many lines as
// the input.
func Sanitize(source string) string {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if module, ok := importedModule(line); ok && !allowedModules[module] {
			out = append(out, fmt.Sprintf("# Skipped: %s (module not allowed)", line))
			continue
		}

		if hasForbidden(line) {
			out = append(out, fmt.Sprintf("# Skipped: %s (forbidden operation)", line))
			continue
		}

		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// importedModule extracts the module name from an import statement.
// Plain imports keep dotted submodule paths (checked against the full
// allowlist); from-imports are judged by their top-level package.
func importedModule(line string) (string, bool) {
	switch {
	case fromImportRe.MatchString(line):
		if m := fromModRe.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	case importRe.MatchString(line):
		if m := importModRe.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func hasForbidden(line string) bool {
	for _, construct := range forbidden {
		if strings.Contains(line, construct) {
			return true
		}
	}
	return false
}
