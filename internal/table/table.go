// Package table holds the in-memory component table and the helpers that read
// optional cells, tag lists and numeric columns from it.
package table

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Well-known column names.
const (
	ColClassification = "classification"
	ColTags           = "classification_tags"
	ColRationale      = "rationale"
	ColVarex          = "variance explained"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = eris.New("missing required column")

// Table is an ordered sequence of rows sharing one header.
type Table struct {
	Source  string
	Columns []string

	records [][]string
	colIdx  map[string]int
}

// Row is a view of one record. Index is the 0-based position in the table.
type Row struct {
	Index int

	cells  []string
	colIdx map[string]int
}

// New builds a table from a header and its data records.
// Header names are trimmed; on duplicate names the first column wins.
func New(source string, header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, eris.Errorf("table: %s has no header row", source)
	}

	cols := make([]string, len(header))
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		cols[i] = name
		if _, dup := colIdx[name]; !dup {
			colIdx[name] = i
		}
	}

	return &Table{
		Source:  source,
		Columns: cols,
		records: records,
		colIdx:  colIdx,
	}, nil
}

// FromRecords builds a table whose first record is the header.
func FromRecords(source string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, eris.Errorf("table: %s has no header row", source)
	}
	return New(source, records[0], records[1:])
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.records)
}

// HasColumn reports whether the header contains col.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.colIdx[col]
	return ok
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row {
	return Row{Index: i, cells: t.records[i], colIdx: t.colIdx}
}

// Rows returns every row in table order.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.records))
	for i := range t.records {
		rows[i] = t.Row(i)
	}
	return rows
}

// Require checks that every column exists.
func (t *Table) Require(cols ...string) error {
	for _, col := range cols {
		if !t.HasColumn(col) {
			return eris.Wrapf(ErrMissingColumn, "table: %s: column %q", t.Source, col)
		}
	}
	return nil
}

// Get returns the raw cell for col. ok is false only when the column does not
// exist; a short record yields ("", true).
func (r Row) Get(col string) (string, bool) {
	idx, ok := r.colIdx[col]
	if !ok {
		return "", false
	}
	if idx >= len(r.cells) {
		return "", true
	}
	return r.cells[idx], true
}

// Value returns the trimmed cell for col, with ok false when the column is
// absent or the cell is missing (empty, NaN, None, ...).
func (r Row) Value(col string) (string, bool) {
	v, ok := r.Get(col)
	if !ok || IsMissing(v) {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Tags returns the parsed tag list stored in col. An absent column and a
// missing cell both yield an empty list.
func (r Row) Tags(col string) []string {
	v, ok := r.Value(col)
	if !ok {
		return nil
	}
	return ParseTags(v)
}

// Float parses col as a number. Missing cells and NaN yield (0, false, nil);
// unparsable text is an error.
func (r Row) Float(col string) (float64, bool, error) {
	v, ok := r.Value(col)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, eris.Wrapf(err, "table: row %d: column %q: parse %q", r.Index, col, v)
	}
	if math.IsNaN(f) {
		return 0, false, nil
	}
	return f, true, nil
}

// missingValues are the spellings pandas and spreadsheet exports use for an
// absent value.
var missingValues = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
	"na":   {},
	"<na>": {},
}

// IsMissing reports whether a cell holds no value.
func IsMissing(v string) bool {
	_, ok := missingValues[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// ParseTags splits a tag cell into tag names. It accepts comma or semicolon
// separated text as well as a Python list rendering such as
// "['Likely BOLD', 'Low variance']".
func ParseTags(v string) []string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "[")
	v = strings.TrimSuffix(v, "]")

	parts := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var tags []string
	for _, p := range parts {
		tag := strings.Trim(strings.TrimSpace(p), `'"`)
		tag = strings.TrimSpace(tag)
		if IsMissing(tag) {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// HasAnyTag reports whether tags contains any member of set.
func HasAnyTag(tags []string, set map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}
