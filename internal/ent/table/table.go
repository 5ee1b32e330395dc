// Package table provides a small column-ordered table used for the
// tab-separated ProteinPilot summary files.
package table

import (
	"fmt"
	"strconv"
)

// Table is an in-memory tabular dataset. The header order is the column
// order of the source file and is preserved through every transformation.
type Table struct {
	Header []string
	Rows   [][]string

	colIdx map[string]int
}

// New creates a Table with the given header and no rows.
func New(header []string) *Table {
	t := &Table{Header: header}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.colIdx = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		t.colIdx[h] = i
	}
}

// Col returns the index of the named column.
func (t *Table) Col(name string) (int, bool) {
	if t.colIdx == nil {
		t.reindex()
	}
	idx, ok := t.colIdx[name]
	return idx, ok
}

// HasCol reports whether the named column exists.
func (t *Table) HasCol(name string) bool {
	_, ok := t.Col(name)
	return ok
}

// Value returns the cell at (row, column name).
func (t *Table) Value(row int, name string) (string, error) {
	idx, ok := t.Col(name)
	if !ok {
		return "", fmt.Errorf("table: no column %q", name)
	}
	return t.Rows[row][idx], nil
}

// Float parses the cell at (row, column name) as a float64.
func (t *Table) Float(row int, name string) (float64, error) {
	v, err := t.Value(row, name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("table: column %q row %d: %w", name, row, err)
	}
	return f, nil
}

// Int parses the cell at (row, column name) as an int. Values written as
// floats (e.g. "3.0") are accepted.
func (t *Table) Int(row int, name string) (int, error) {
	v, err := t.Value(row, name)
	if err != nil {
		return 0, err
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("table: column %q row %d: %w", name, row, err)
	}
	return int(f), nil
}

// SetValue overwrites the cell at (row, column name).
func (t *Table) SetValue(row int, name, value string) error {
	idx, ok := t.Col(name)
	if !ok {
		return fmt.Errorf("table: no column %q", name)
	}
	t.Rows[row][idx] = value
	return nil
}

// InsertCol adds a column at the given position with the supplied values,
// one per row.
func (t *Table) InsertCol(pos int, name string, values []string) {
	header := make([]string, 0, len(t.Header)+1)
	header = append(header, t.Header[:pos]...)
	header = append(header, name)
	header = append(header, t.Header[pos:]...)
	t.Header = header
	for i := range t.Rows {
		row := make([]string, 0, len(t.Rows[i])+1)
		row = append(row, t.Rows[i][:pos]...)
		row = append(row, values[i])
		row = append(row, t.Rows[i][pos:]...)
		t.Rows[i] = row
	}
	t.reindex()
}

// AppendCol adds a column at the end of the table.
func (t *Table) AppendCol(name string, values []string) {
	t.InsertCol(len(t.Header), name, values)
}

// AppendRow adds a row, which must match the header length.
func (t *Table) AppendRow(row []string) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
