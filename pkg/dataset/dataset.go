// Package dataset loads delimited tabular files with tolerant format
// detection and classifies columns for downstream chart generation.
//
// Files are decoded by trying a fixed sequence of encodings and
// delimiters until one produces a plausible table. String columns whose
// values are mostly numeric are coerced to numeric columns; columns
// whose names carry a money/amount-like hint are coerced regardless of
// how many values parse.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Kind classifies a column for summary and chart purposes.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
)

// coercionThreshold is the fraction of non-missing values that must
// parse as numbers before a text column is converted to numeric.
const coercionThreshold = 0.7

// numericHints marks column names that are coerced to numeric even when
// fewer values parse than the threshold requires.
var numericHints = []string{
	"amount", "total", "value", "impegno", "pagato", "paid", "sum", "price", "cost",
}

// Column is one named column of a loaded table.
type Column struct {
	Name   string
	Kind   Kind
	Values []string // raw cell text per row; "" marks a missing value

	// Numbers holds the parsed value per row when Kind is KindNumeric.
	// NaN marks cells that are missing or failed to parse.
	Numbers []float64
}

// Missing returns the number of rows without a usable value.
func (c *Column) Missing() int {
	n := 0
	if c.Kind == KindNumeric {
		for _, v := range c.Numbers {
			if math.IsNaN(v) {
				n++
			}
		}
		return n
	}
	for _, v := range c.Values {
		if strings.TrimSpace(v) == "" {
			n++
		}
	}
	return n
}

// Table is a loaded dataset.
type Table struct {
	Path     string
	LoadNote string
	Columns  []Column
	NumRows  int
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Row returns the raw cells of row i in column order.
func (t *Table) Row(i int) []string {
	cells := make([]string, len(t.Columns))
	for j := range t.Columns {
		if i < len(t.Columns[j].Values) {
			cells[j] = t.Columns[j].Values[i]
		}
	}
	return cells
}

type codec struct {
	name   string
	decode func([]byte) ([]byte, error)
}

var codecs = []codec{
	{"latin-1", func(b []byte) ([]byte, error) { return charmap.ISO8859_1.NewDecoder().Bytes(b) }},
	{"utf-8", func(b []byte) ([]byte, error) {
		if !utf8.Valid(b) {
			return nil, fmt.Errorf("invalid UTF-8")
		}
		return b, nil
	}},
	{"cp1252", func(b []byte) ([]byte, error) { return charmap.Windows1252.NewDecoder().Bytes(b) }},
	{"iso-8859-1", func(b []byte) ([]byte, error) { return charmap.ISO8859_1.NewDecoder().Bytes(b) }},
}

var delimiters = []rune{';', ',', '\t', '|'}

// Load reads a delimited file and returns the parsed table.
//
// Every encoding×delimiter combination is tried in a fixed order. The
// first parse that yields more than one column wins; if no combination
// produces multiple columns, the first successful single-column parse is
// kept. An error is returned only when nothing parses at all.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}

	var fallback *Table
	for _, enc := range codecs {
		decoded, err := enc.decode(data)
		if err != nil {
			continue
		}
		for _, delim := range delimiters {
			tbl, err := parseCSV(string(decoded), delim)
			if err != nil {
				continue
			}
			tbl.Path = path
			tbl.LoadNote = fmt.Sprintf("loaded CSV with encoding=%s, delimiter=%q", enc.name, delim)
			if len(tbl.Columns) > 1 {
				coerceColumns(tbl)
				return tbl, nil
			}
			if fallback == nil {
				fallback = tbl
			}
		}
	}

	if fallback != nil {
		coerceColumns(fallback)
		return fallback, nil
	}
	return nil, fmt.Errorf("parsing dataset %s: no encoding/delimiter combination produced a table", path)
}

func parseCSV(content string, delim rune) (*Table, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = delim
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	header := records[0]
	rows := records[1:]

	tbl := &Table{
		Columns: make([]Column, len(header)),
		NumRows: len(rows),
	}
	for j, name := range header {
		col := Column{
			Name:   strings.TrimSpace(name),
			Kind:   KindCategorical,
			Values: make([]string, len(rows)),
		}
		for i, row := range rows {
			if j < len(row) {
				col.Values[i] = row[j]
			}
		}
		tbl.Columns[j] = col
	}
	return tbl, nil
}

// coerceColumns converts mostly-numeric text columns to numeric and
// tags datetime-looking columns.
func coerceColumns(t *Table) {
	for i := range t.Columns {
		col := &t.Columns[i]

		numbers := make([]float64, len(col.Values))
		parsed, nonMissing := 0, 0
		for j, raw := range col.Values {
			cell := strings.TrimSpace(raw)
			if cell == "" {
				numbers[j] = math.NaN()
				continue
			}
			nonMissing++
			v, err := parseNumber(cell)
			if err != nil {
				numbers[j] = math.NaN()
				continue
			}
			numbers[j] = v
			parsed++
		}

		switch {
		case nonMissing > 0 && float64(parsed)/float64(nonMissing) >= coercionThreshold:
			col.Kind = KindNumeric
			col.Numbers = numbers
		case hasNumericHint(col.Name):
			col.Kind = KindNumeric
			col.Numbers = numbers
		case looksDatetime(col.Values):
			col.Kind = KindDatetime
		}
	}
}

func hasNumericHint(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range numericHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// parseNumber parses a cell as a float, tolerating surrounding
// whitespace and a currency symbol.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "€$£%")
	s = strings.TrimSpace(s)
	return strconv.ParseFloat(s, 64)
}

var datetimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"01/02/2006",
}

// looksDatetime reports whether most non-missing values parse as dates.
func looksDatetime(values []string) bool {
	parsed, nonMissing := 0, 0
	for _, raw := range values {
		cell := strings.TrimSpace(raw)
		if cell == "" {
			continue
		}
		nonMissing++
		for _, layout := range datetimeLayouts {
			if _, err := time.Parse(layout, cell); err == nil {
				parsed++
				break
			}
		}
	}
	return nonMissing > 0 && float64(parsed)/float64(nonMissing) >= coercionThreshold
}
