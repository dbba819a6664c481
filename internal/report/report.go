// Package report turns traversal results into per-dataset export tables and
// renders them for the console, CSV files and SQL result tables.
package report

import (
	"strconv"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/parcellink/internal/graph"
	"github.com/dbsmedya/parcellink/internal/types"
)

// HopColumn is the trailing column holding each matched record's hop.
const HopColumn = "__hop__"

// Assemble builds one export table per dataset with at least one match.
// Each table holds exactly the matched records in original row order plus
// HopColumn. Datasets without matches and excluded datasets produce nothing.
func Assemble(result *graph.Result, tables []*types.Table) []*types.Table {
	byName := make(map[string]*types.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	var exports []*types.Table
	for _, m := range result.Datasets {
		src, ok := byName[m.Dataset]
		if !ok || m.Len() == 0 {
			continue
		}

		columns := src.Columns
		if !src.HasColumn(HopColumn) {
			columns = append(append([]string(nil), src.Columns...), HopColumn)
		}

		out := types.NewTable(src.Name, columns)
		for _, row := range m.Rows() {
			rec := src.Row(row)
			if rec == nil {
				continue
			}
			hop, _ := m.Hop(row)
			clone := rec.Clone()
			clone.Set(HopColumn, strconv.Itoa(hop))
			out.AppendRecord(clone)
		}
		exports = append(exports, out)
	}

	return exports
}

// HopConflicts returns the matched datasets whose source already has a
// HopColumn. Assemble replaces those source values with hops.
func HopConflicts(result *graph.Result, tables []*types.Table) []string {
	var names []string
	for _, t := range tables {
		if m := result.Matches(t.Name); m != nil && m.Len() > 0 && t.HasColumn(HopColumn) {
			names = append(names, t.Name)
		}
	}
	return names
}

// DatasetSummary describes one dataset's part in a traversal.
type DatasetSummary struct {
	Name          string
	ActiveColumns []string
	Rows          int
	Matched       int
	Excluded      bool
}

// Summary is the overview printed after a traversal.
type Summary struct {
	Start        string
	Datasets     *orderedmap.OrderedMap[string, DatasetSummary]
	Discovered   int
	Levels       int
	TotalMatched int
}

// Summarize collects per-dataset and overall counts in table order.
func Summarize(result *graph.Result, tables []*types.Table) Summary {
	s := Summary{
		Start:        result.Start,
		Datasets:     orderedmap.NewOrderedMap[string, DatasetSummary](),
		Discovered:   result.DiscoveredCount(),
		Levels:       len(result.Levels),
		TotalMatched: result.TotalMatched(),
	}

	excluded := make(map[string]bool, len(result.Excluded))
	for _, name := range result.Excluded {
		excluded[name] = true
	}

	for _, t := range tables {
		ds := DatasetSummary{
			Name:     t.Name,
			Rows:     t.Len(),
			Excluded: excluded[t.Name],
		}
		if m := result.Matches(t.Name); m != nil {
			ds.ActiveColumns = m.ActiveColumns
			ds.Matched = m.Len()
		}
		s.Datasets.Set(t.Name, ds)
	}

	return s
}

// Dataset returns the summary of the named dataset.
func (s Summary) Dataset(name string) (DatasetSummary, bool) {
	return s.Datasets.Get(name)
}

// Names returns dataset names in summary order.
func (s Summary) Names() []string {
	return s.Datasets.Keys()
}
