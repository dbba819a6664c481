// Package graph implements the parcel identifier linkage graph for ParcelLink.
//
// Nodes are normalized identifiers and edges are co-occurrence within a
// dataset row. The graph is never materialized: each dataset is indexed once
// and Traverse discovers nodes and edges lazily, level by level.
package graph

import (
	"sort"

	"github.com/dbsmedya/parcellink/internal/pnu"
	"github.com/dbsmedya/parcellink/internal/types"
)

// Index is the precomputed linkage view of one dataset.
type Index struct {
	Name          string     // Dataset name
	Declared      []string   // Candidate identifier columns declared for the dataset type
	ActiveColumns []string   // Declared columns present in the data, declared order
	Normalized    [][]string // row -> normalized value per active column
	postings      map[string][]int
}

// IndexDataset determines the active identifier columns of a table and
// normalizes those columns once for every row.
//
// A table without any active column yields a non-participating index; this
// is an expected configuration state, not an error.
func IndexDataset(table *types.Table, declared []string) *Index {
	ix := &Index{
		Name:     table.Name,
		Declared: append([]string(nil), declared...),
		postings: make(map[string][]int),
	}

	seen := make(map[string]bool, len(declared))
	for _, col := range declared {
		if seen[col] || !table.HasColumn(col) {
			continue
		}
		seen[col] = true
		ix.ActiveColumns = append(ix.ActiveColumns, col)
	}

	if len(ix.ActiveColumns) == 0 {
		return ix
	}

	ix.Normalized = make([][]string, len(table.Rows))
	for row, rec := range table.Rows {
		vals := make([]string, len(ix.ActiveColumns))
		for k, col := range ix.ActiveColumns {
			id := pnu.Normalize(rec.Value(col))
			vals[k] = id
			if id == "" {
				continue
			}
			// A row may carry the same identifier in several columns; post it once.
			if p := ix.postings[id]; len(p) == 0 || p[len(p)-1] != row {
				ix.postings[id] = append(p, row)
			}
		}
		ix.Normalized[row] = vals
	}

	return ix
}

// Participating reports whether the dataset takes part in traversal.
func (ix *Index) Participating() bool {
	return len(ix.ActiveColumns) > 0
}

// RowCount returns the number of indexed rows.
func (ix *Index) RowCount() int {
	return len(ix.Normalized)
}

// Rows returns the ascending row indexes whose active columns hold id.
// The returned slice must not be modified.
func (ix *Index) Rows(id string) []int {
	return ix.postings[id]
}

// Identifiers returns the distinct non-empty identifiers of a row in column order.
func (ix *Index) Identifiers(row int) []string {
	if row < 0 || row >= len(ix.Normalized) {
		return nil
	}
	var ids []string
	for _, id := range ix.Normalized[row] {
		if id == "" || contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// DistinctIdentifiers returns every identifier present in the dataset, sorted.
func (ix *Index) DistinctIdentifiers() []string {
	ids := make([]string, 0, len(ix.postings))
	for id := range ix.postings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
