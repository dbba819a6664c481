package types

import "fmt"

// Table is a named, ordered collection of records sharing a column layout.
type Table struct {
	Name    string    // Dataset name
	Columns []string  // Column names in source order
	Rows    []*Record // Rows in source order; the slice index is the row index
}

// NewTable creates an empty table with the given name and columns.
func NewTable(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Name:    name,
		Columns: cols,
	}
}

// AppendRow adds a row built from values aligned with the table's columns.
// Rows longer than the header are rejected.
func (t *Table) AppendRow(values []string) error {
	if len(values) > len(t.Columns) {
		return fmt.Errorf("table %q: row has %d values but only %d columns", t.Name, len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, RecordFrom(t.Columns, values))
	return nil
}

// AddColumn appends a column to the layout. Existing rows read it as "".
func (t *Table) AddColumn(name string) {
	t.Columns = append(t.Columns, name)
}

// AppendRecord adds an existing record as the next row.
func (t *Table) AppendRecord(r *Record) {
	t.Rows = append(t.Rows, r)
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Row returns the record at index i, or nil when out of range.
func (t *Table) Row(i int) *Record {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i]
}
