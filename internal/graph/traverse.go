package graph

import (
	"sort"

	"github.com/dbsmedya/parcellink/internal/pnu"
)

// Unbounded disables the hop limit.
const Unbounded = -1

// Strategy selects how a level finds the rows matching the frontier.
type Strategy string

const (
	// StrategyIndex looks frontier identifiers up in each dataset's postings.
	StrategyIndex Strategy = "index"
	// StrategyScan checks every unmatched row against the frontier.
	StrategyScan Strategy = "scan"
)

// LevelStats describes one completed traversal level.
type LevelStats struct {
	Hop             int            // Hop this level matched at
	FrontierSize    int            // Identifiers searched at this hop
	Matched         map[string]int // dataset -> rows newly matched at this hop
	NewIdentifiers  int            // Identifiers forming the next frontier
	DiscoveredTotal int            // Size of the discovered set after this level
}

// TotalMatched sums the rows matched across datasets at this level.
func (s LevelStats) TotalMatched() int {
	total := 0
	for _, n := range s.Matched {
		total += n
	}
	return total
}

// Option configures a traversal.
type Option func(*options)

type options struct {
	maxDepth int
	strategy Strategy
	observer func(LevelStats)
}

// WithMaxDepth bounds the traversal to hops 0..n. Negative n means unbounded.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = Unbounded
		}
		o.maxDepth = n
	}
}

// WithStrategy selects the matching strategy. Unknown values fall back to StrategyIndex.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		if s == StrategyScan {
			o.strategy = StrategyScan
			return
		}
		o.strategy = StrategyIndex
	}
}

// WithObserver registers a callback invoked after every completed level.
func WithObserver(fn func(LevelStats)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// DatasetMatches holds the rows of one dataset reached by a traversal.
type DatasetMatches struct {
	Dataset       string
	ActiveColumns []string
	hops          map[int]int // row -> hop
}

// Hop returns the recorded hop of a row and whether the row was matched.
func (m *DatasetMatches) Hop(row int) (int, bool) {
	h, ok := m.hops[row]
	return h, ok
}

// Len returns the number of matched rows.
func (m *DatasetMatches) Len() int {
	return len(m.hops)
}

// Rows returns the matched row indexes in ascending (source) order.
func (m *DatasetMatches) Rows() []int {
	rows := make([]int, 0, len(m.hops))
	for row := range m.hops {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// Result is the outcome of a traversal.
type Result struct {
	Start      string            // Normalized start identifier
	Datasets   []*DatasetMatches // Participating datasets in index order
	Excluded   []string          // Datasets without active columns
	Levels     []LevelStats      // One entry per scanned hop
	discovered map[string]struct{}
}

// Matches returns the matches for the named dataset, or nil if it did not participate.
func (r *Result) Matches(dataset string) *DatasetMatches {
	for _, m := range r.Datasets {
		if m.Dataset == dataset {
			return m
		}
	}
	return nil
}

// IsDiscovered reports whether id was reached.
func (r *Result) IsDiscovered(id string) bool {
	_, ok := r.discovered[id]
	return ok
}

// DiscoveredCount returns the number of distinct identifiers reached.
func (r *Result) DiscoveredCount() int {
	return len(r.discovered)
}

// Discovered returns the reached identifiers, sorted.
func (r *Result) Discovered() []string {
	ids := make([]string, 0, len(r.discovered))
	for id := range r.discovered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalMatched returns the number of matched rows across all datasets.
func (r *Result) TotalMatched() int {
	total := 0
	for _, m := range r.Datasets {
		total += m.Len()
	}
	return total
}

// traversal is the mutable state of a single run. It is created per call and
// owned exclusively by it.
type traversal struct {
	indexes    []*Index
	matches    []*DatasetMatches // parallel to indexes
	discovered map[string]struct{}
	frontier   map[string]struct{}
	hop        int
}

// Traverse runs a level-synchronous breadth-first search over the implicit
// identifier graph spanned by the given dataset indexes, starting at start.
//
// At each hop every participating dataset is searched for unmatched rows that
// hold any frontier identifier in any active column. Newly matched rows keep
// that hop forever; their identifiers not yet discovered form the next
// frontier. The search ends when a level discovers nothing new or the hop
// limit is exceeded.
//
// The only failure is a start value without digits, reported as
// ErrInvalidStart before any dataset is scanned.
func Traverse(indexes []*Index, start string, opts ...Option) (*Result, error) {
	o := options{maxDepth: Unbounded, strategy: StrategyIndex}
	for _, opt := range opts {
		opt(&o)
	}

	startID := pnu.Normalize(start)
	if startID == "" {
		return nil, &InvalidStartError{Raw: start}
	}

	t := newTraversal(indexes, startID)
	result := &Result{Start: startID}
	for _, ix := range indexes {
		if !ix.Participating() {
			result.Excluded = append(result.Excluded, ix.Name)
		}
	}

	for len(t.frontier) > 0 && (o.maxDepth == Unbounded || t.hop <= o.maxDepth) {
		stats := t.step(o.strategy)
		result.Levels = append(result.Levels, stats)
		if o.observer != nil {
			o.observer(stats)
		}
	}

	result.Datasets = t.matches
	result.discovered = t.discovered
	return result, nil
}

func newTraversal(indexes []*Index, start string) *traversal {
	t := &traversal{
		discovered: map[string]struct{}{start: {}},
		frontier:   map[string]struct{}{start: {}},
	}
	for _, ix := range indexes {
		if !ix.Participating() {
			continue
		}
		t.indexes = append(t.indexes, ix)
		t.matches = append(t.matches, &DatasetMatches{
			Dataset:       ix.Name,
			ActiveColumns: ix.ActiveColumns,
			hops:          make(map[int]int),
		})
	}
	return t
}

// step scans one level across all datasets and advances the frontier.
func (t *traversal) step(strategy Strategy) LevelStats {
	stats := LevelStats{
		Hop:          t.hop,
		FrontierSize: len(t.frontier),
		Matched:      make(map[string]int, len(t.indexes)),
	}

	candidates := make(map[string]struct{})
	for i, ix := range t.indexes {
		m := t.matches[i]

		var rows []int
		if strategy == StrategyScan {
			rows = t.scanRows(ix, m)
		} else {
			rows = t.lookupRows(ix, m)
		}

		for _, row := range rows {
			m.hops[row] = t.hop
			for _, id := range ix.Normalized[row] {
				if id != "" {
					candidates[id] = struct{}{}
				}
			}
		}
		stats.Matched[ix.Name] += len(rows)
	}

	next := make(map[string]struct{})
	for id := range candidates {
		if _, seen := t.discovered[id]; !seen {
			next[id] = struct{}{}
		}
	}
	for id := range next {
		t.discovered[id] = struct{}{}
	}

	t.frontier = next
	t.hop++

	stats.NewIdentifiers = len(next)
	stats.DiscoveredTotal = len(t.discovered)
	return stats
}

// lookupRows collects unmatched rows posted under any frontier identifier.
func (t *traversal) lookupRows(ix *Index, m *DatasetMatches) []int {
	hit := make(map[int]struct{})
	for id := range t.frontier {
		for _, row := range ix.Rows(id) {
			if _, done := m.hops[row]; !done {
				hit[row] = struct{}{}
			}
		}
	}

	rows := make([]int, 0, len(hit))
	for row := range hit {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// scanRows checks every unmatched row; a single active column in the frontier is enough.
func (t *traversal) scanRows(ix *Index, m *DatasetMatches) []int {
	var rows []int
	for row, vals := range ix.Normalized {
		if _, done := m.hops[row]; done {
			continue
		}
		for _, id := range vals {
			if _, ok := t.frontier[id]; ok && id != "" {
				rows = append(rows, row)
				break
			}
		}
	}
	return rows
}
