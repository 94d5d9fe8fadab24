// Package fetcher reads tabular reference data from XLSX and CSV files.
package fetcher

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows, with lookup by column name.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewTable indexes header. Column names are trimmed; the first occurrence
// of a repeated name wins. Blank rows are dropped.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: make([]string, len(header)), index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, ok := t.index[h]; !ok && h != "" {
			t.index[h] = i
		}
	}
	for _, row := range rows {
		if !blank(row) {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// Has reports whether the table has the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Require returns an error naming the first missing column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return eris.Errorf("fetcher: missing column %q", c)
		}
	}
	return nil
}

// Get returns the trimmed cell of row under col, or "" when the column is
// unknown or the row is short.
func (t *Table) Get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadTable reads a table from an .xlsx or .csv file. The first row is the
// header.
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSXTable(path, XLSXOptions{})
	case ".csv":
		return ReadCSVFile(path, CSVOptions{})
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q", path)
	}
}

func split(rows [][]string) *Table {
	if len(rows) == 0 {
		return NewTable(nil, nil)
	}
	return NewTable(rows[0], rows[1:])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
