// Package tabular turns delimited dataset text into normalized rows.
//
// The format is deliberately minimal: one header line, one record per line,
// a single-character delimiter and no quoting. Header names are lower-cased,
// trimmed and have internal whitespace runs collapsed to "_"; every cell is
// trimmed and lower-cased after NFKC folding.
package tabular

import (
	"fmt"
	"regexp"
	"strings"

	"medibot/internal/errors"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultDelimiter separates columns when none is configured.
	DefaultDelimiter = ","

	// SymptomPrefix marks a column as carrying a symptom token.
	SymptomPrefix = "symptom"

	// TargetPrognosis is preferred over TargetDisease when both exist.
	TargetPrognosis = "prognosis"
	TargetDisease   = "disease"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Row maps a normalized column name to its lower-cased value.
type Row map[string]string

// Get returns the value for column, or "" when the row has no such column.
func (r Row) Get(column string) string {
	return r[column]
}

// Table is a parsed dataset.
type Table struct {
	Headers []string
	Rows    []Row
}

// Parse splits text on CRLF/LF and on delimiter.
// Blank lines between records are skipped.
func Parse(text, delimiter string) (*Table, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.MalformedInput("dataset is empty")
	}

	lines := strings.Split(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\n")
	records := make([][]string, len(lines))
	for i, line := range lines {
		records[i] = strings.Split(line, delimiter)
	}

	return ParseRecords(records)
}

// ParseRecords normalizes already split records; the first record is the header.
// Spreadsheet sources enter here so they share the text normalization rules.
func ParseRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.MalformedInput("dataset is empty")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = NormalizeHeader(h)
	}
	if len(headers) == 0 || (len(headers) == 1 && headers[0] == "") {
		return nil, errors.MalformedInput("dataset header is empty")
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			value := ""
			if i < len(record) {
				value = NormalizeValue(record[i])
			}
			row[h] = value
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.MalformedInput("dataset has a header but no data rows")
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// NormalizeHeader lower-cases, trims and underscores a column name.
func NormalizeHeader(h string) string {
	return whitespaceRun.ReplaceAllString(NormalizeValue(h), "_")
}

// NormalizeValue folds compatibility forms (NFKC), trims and lower-cases a cell.
// Spreadsheet exports often carry no-break spaces and full-width letters.
func NormalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(v)))
}

// SymptomColumns returns the symptom columns in header order.
func (t *Table) SymptomColumns() []string {
	var cols []string
	for _, h := range t.Headers {
		if strings.HasPrefix(h, SymptomPrefix) {
			cols = append(cols, h)
		}
	}
	return cols
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// TargetColumn returns "prognosis" when present, otherwise "disease".
func (t *Table) TargetColumn() (string, error) {
	switch {
	case t.HasColumn(TargetPrognosis):
		return TargetPrognosis, nil
	case t.HasColumn(TargetDisease):
		return TargetDisease, nil
	default:
		return "", errors.MalformedInput(fmt.Sprintf("dataset has no %q or %q column", TargetPrognosis, TargetDisease))
	}
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
