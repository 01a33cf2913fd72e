// Package repair rewrites model-generated plotting code to correct
// recurring syntax mistakes, and drives a layered re-execution strategy
// that never makes a result worse than running the code as received.
//
// The fixes are textual heuristics, not a parser. Each one is a pure
// function from source text to candidate source text; the driver in
// this package decides which candidate's result to keep.
package repair

import (
	"regexp"
	"strings"
)

var (
	// A bare string sitting where a key/value pair should be, directly
	// before a well-formed pair: {'Provincia', 'Impegno totale': ...}.
	bareMappingEntryRe = regexp.MustCompile(`([{,]\s*)'([^']+)'\s*,\s*('[^']*'\s*:)`)

	// labels=... keyword dictionaries, where the bare-entry mistake is
	// observed in practice.
	labelsDictRe = regexp.MustCompile(`labels\s*=\s*\{[^{}]*\}`)

	// A quoted literal used as an interpolation expression: {'testo'}
	// inside an f-string reuses the enclosing quote and breaks parsing.
	quotedInterpSingleRe = regexp.MustCompile(`\{'([^'{}]*)'\}`)
	quotedInterpDoubleRe = regexp.MustCompile(`\{"([^"{}]*)"\}`)

	// f-string prefix before the opening quote.
	fstringPrefixRe = regexp.MustCompile(`\bf(["'])`)

	// Quoted fragment inside a Python format-specifier error message.
	errSpecifierRe = regexp.MustCompile(`'([^']+)'`)
)

// fixMappingEntry turns a bare string before a well-formed pair into a
// self-mapping entry: 'X', 'Y': 'Z'  ->  'X': 'X', 'Y': 'Z'.
func fixMappingEntry(dict string) string {
	return bareMappingEntryRe.ReplaceAllString(dict, `${1}'${2}': '${2}', ${3}`)
}

// FixLabelMappings corrects malformed entries inside labels={...}
// keyword dictionaries only, leaving the rest of the source untouched.
func FixLabelMappings(source string) string {
	return labelsDictRe.ReplaceAllStringFunc(source, fixMappingEntry)
}

// FixQuotedInterpolations inlines quoted literals used as interpolation
// expressions, so f"Totale: {'EUR'}" becomes f"Totale: EUR".
func FixQuotedInterpolations(source string) string {
	source = quotedInterpSingleRe.ReplaceAllString(source, `$1`)
	return quotedInterpDoubleRe.ReplaceAllString(source, `$1`)
}

// PreFix applies the conservative rewrites tried after a failed direct
// execution. It reports whether anything changed.
func PreFix(source string) (string, bool) {
	fixed := FixLabelMappings(source)
	fixed = FixQuotedInterpolations(fixed)
	return fixed, fixed != source
}

// IsFormatSpecifierError reports whether an execution error is the
// interpreter complaining about a malformed format specifier, the one
// failure mode worth an aggressive rewrite.
func IsFormatSpecifierError(errText string) bool {
	return strings.Contains(errText, "Invalid format specifier")
}

// StripInterpolationPrefixes demotes every f-string to a plain string
// literal. Braced expressions become literal text, which loses the
// interpolation but can no longer fail to parse.
func StripInterpolationPrefixes(source string) string {
	return fstringPrefixRe.ReplaceAllString(source, `$1`)
}

// AggressiveFix applies the broad rewrites for a format-specifier
// failure: strip f-string prefixes, correct bare mapping entries across
// the whole source, and excise the exact specifier named in the error.
// It reports whether anything changed.
func AggressiveFix(source, errText string) (string, bool) {
	fixed := StripInterpolationPrefixes(source)
	fixed = bareMappingEntryRe.ReplaceAllString(fixed, `${1}'${2}': '${2}', ${3}`)

	if m := errSpecifierRe.FindStringSubmatch(errText); m != nil {
		fixed = strings.ReplaceAll(fixed, ":"+m[1]+"}", "}")
	}

	return fixed, fixed != source
}
