// Package types contains shared tabular types used across multiple packages to avoid import cycles.
package types

import (
	"github.com/elliotchance/orderedmap/v2"
)

// Record is one row of a dataset: an ordered mapping of column name to cell value.
type Record struct {
	cells *orderedmap.OrderedMap[string, string]
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{cells: orderedmap.NewOrderedMap[string, string]()}
}

// RecordFrom builds a record from parallel column and value slices.
// Missing trailing values are stored as "".
func RecordFrom(columns, values []string) *Record {
	r := NewRecord()
	for i, col := range columns {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.Set(col, v)
	}
	return r
}

// Set stores a cell value, keeping the column's original position if it already exists.
func (r *Record) Set(column, value string) {
	r.cells.Set(column, value)
}

// Get returns the value for column and whether the column exists in the record.
func (r *Record) Get(column string) (string, bool) {
	return r.cells.Get(column)
}

// Value returns the value for column, or "" when the column is absent.
func (r *Record) Value(column string) string {
	v, _ := r.cells.Get(column)
	return v
}

// Columns returns the record's column names in insertion order.
func (r *Record) Columns() []string {
	return r.cells.Keys()
}

// Len returns the number of cells.
func (r *Record) Len() int {
	return r.cells.Len()
}

// Values returns the cell values for the given columns, "" for absent ones.
func (r *Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = r.Value(col)
	}
	return out
}

// Clone returns a copy of the record that can be modified independently.
func (r *Record) Clone() *Record {
	return &Record{cells: r.cells.Copy()}
}
