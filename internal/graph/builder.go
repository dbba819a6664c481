package graph

import (
	"fmt"

	"github.com/dbsmedya/parcellink/internal/config"
	"github.com/dbsmedya/parcellink/internal/types"
)

// Builder constructs dataset indexes from the linkage configuration.
type Builder struct {
	cfg *config.Config
}

// NewBuilder creates a new index builder for the given configuration.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build indexes every loaded table with the candidate columns of its
// configured dataset type. Output order follows the input order.
func (b *Builder) Build(tables []*types.Table) ([]*Index, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}

	seen := make(map[string]bool, len(tables))
	indexes := make([]*Index, 0, len(tables))
	for _, table := range tables {
		if table == nil {
			return nil, fmt.Errorf("nil table in input")
		}
		if seen[table.Name] {
			return nil, fmt.Errorf("duplicate dataset: %q appears multiple times", table.Name)
		}
		seen[table.Name] = true

		ds, err := b.cfg.GetDataset(table.Name)
		if err != nil {
			return nil, err
		}

		indexes = append(indexes, IndexDataset(table, b.cfg.ColumnsFor(ds.Type)))
	}

	return indexes, nil
}

// BuildFromConfig is a convenience wrapper around NewBuilder(cfg).Build(tables).
func BuildFromConfig(cfg *config.Config, tables []*types.Table) ([]*Index, error) {
	return NewBuilder(cfg).Build(tables)
}
