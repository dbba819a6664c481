// Package tracer runs a complete parcel linkage trace: it loads the configured
// datasets, indexes them, traverses from a start identifier and assembles the
// report.
package tracer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/parcellink/internal/config"
	"github.com/dbsmedya/parcellink/internal/database"
	"github.com/dbsmedya/parcellink/internal/graph"
	"github.com/dbsmedya/parcellink/internal/loader"
	"github.com/dbsmedya/parcellink/internal/logger"
	"github.com/dbsmedya/parcellink/internal/pnu"
	"github.com/dbsmedya/parcellink/internal/report"
	"github.com/dbsmedya/parcellink/internal/types"
)

// ErrNoDatasets is returned when no configured dataset could be loaded and
// take part in traversal.
var ErrNoDatasets = errors.New("no dataset available for linkage")

// Unavailable records a configured dataset that could not be loaded.
type Unavailable struct {
	Dataset string
	Err     error
}

// Inspection is the loaded and indexed state of every configured dataset.
type Inspection struct {
	Tables      []*types.Table
	Indexes     []*graph.Index
	Unavailable []Unavailable
}

// Participating returns the number of indexes taking part in traversal.
func (i *Inspection) Participating() int {
	n := 0
	for _, ix := range i.Indexes {
		if ix.Participating() {
			n++
		}
	}
	return n
}

// RunResult contains the outcome and statistics of one trace.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Inspection  *Inspection
	Result      *graph.Result
	Exports     []*types.Table
	Summary     report.Summary
}

// Tracer coordinates loading, indexing and traversal.
type Tracer struct {
	config *config.Config
	logger *logger.Logger
	db     *sql.DB
}

// New creates a tracer. db may be nil when no dataset is read from SQL.
func New(cfg *config.Config, log *logger.Logger, db *sql.DB) (*Tracer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Tracer{
		config: cfg,
		logger: log,
		db:     db,
	}, nil
}

// Inspect loads every configured dataset and builds its index. Datasets that
// cannot be loaded are reported as unavailable rather than failing the call.
func (t *Tracer) Inspect(ctx context.Context) (*Inspection, error) {
	return t.inspect(ctx, t.logger)
}

func (t *Tracer) inspect(ctx context.Context, log *logger.Logger) (*Inspection, error) {
	insp := &Inspection{}

	for i := range t.config.Datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ds := &t.config.Datasets[i]
		dsLog := log.WithDataset(ds.Name)

		table, err := t.load(ctx, ds)
		if err != nil {
			dsLog.Warnf("Skipping dataset: %v", err)
			insp.Unavailable = append(insp.Unavailable, Unavailable{Dataset: ds.Name, Err: err})
			continue
		}
		dsLog.Debugf("Loaded %d rows, %d columns", table.Len(), len(table.Columns))
		insp.Tables = append(insp.Tables, table)
	}

	indexes, err := graph.NewBuilder(t.config).Build(insp.Tables)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset indexes: %w", err)
	}
	insp.Indexes = indexes

	for _, ix := range indexes {
		dsLog := log.WithDataset(ix.Name)
		if !ix.Participating() {
			dsLog.Infof("No identifier columns among %v; dataset excluded", ix.Declared)
			continue
		}
		dsLog.Infof("Indexed %d rows on %v (%d distinct identifiers)",
			ix.RowCount(), ix.ActiveColumns, len(ix.DistinctIdentifiers()))
	}

	return insp, nil
}

func (t *Tracer) load(ctx context.Context, ds *config.DatasetConfig) (*types.Table, error) {
	switch ds.SourceKind() {
	case config.SourceCSV:
		return loader.LoadCSV(ds.Path, ds.Name)
	case config.SourceDatabase:
		if t.db == nil {
			return nil, fmt.Errorf("no database connection for table %s", ds.Table)
		}
		return database.LoadTable(ctx, t.db, ds.Table, ds.Name)
	default:
		return nil, fmt.Errorf("unknown source %q", ds.Source)
	}
}

// Run traces every record linked to start. An invalid start fails before any
// dataset is loaded.
func (t *Tracer) Run(ctx context.Context, start string) (*RunResult, error) {
	if pnu.Normalize(start) == "" {
		return nil, &graph.InvalidStartError{Raw: start}
	}

	run := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := t.logger.WithRun(run.RunID)

	log.Infow("Starting trace",
		"start", pnu.Normalize(start),
		"datasets", len(t.config.Datasets),
		"max_depth", t.config.Linkage.MaxDepth,
		"strategy", t.config.Linkage.Strategy,
	)

	insp, err := t.inspect(ctx, log)
	if err != nil {
		return nil, err
	}
	run.Inspection = insp

	if insp.Participating() == 0 {
		return nil, fmt.Errorf("%w: %d loaded, %d unavailable",
			ErrNoDatasets, len(insp.Tables), len(insp.Unavailable))
	}

	result, err := graph.Traverse(insp.Indexes, start,
		graph.WithMaxDepth(t.config.Linkage.MaxDepth),
		graph.WithStrategy(graph.Strategy(t.config.Linkage.Strategy)),
		graph.WithObserver(func(s graph.LevelStats) {
			log.WithHop(s.Hop).Infof("Level complete: frontier %d, matched %d rows, %d new identifiers, %d discovered",
				s.FrontierSize, s.TotalMatched(), s.NewIdentifiers, s.DiscoveredTotal)
		}),
	)
	if err != nil {
		return nil, err
	}
	run.Result = result
	for _, name := range report.HopConflicts(result, insp.Tables) {
		log.WithDataset(name).Warnf("Source column %s is replaced by the computed hop in exports", report.HopColumn)
	}
	run.Exports = report.Assemble(result, insp.Tables)
	run.Summary = report.Summarize(result, insp.Tables)

	run.CompletedAt = time.Now()
	run.Duration = run.CompletedAt.Sub(run.StartedAt)

	log.Infof("Trace complete: %d identifiers discovered, %d rows matched in %d datasets, %d levels, duration: %s",
		result.DiscoveredCount(), result.TotalMatched(), len(run.Exports), len(result.Levels), run.Duration)

	return run, nil
}
