package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dbsmedya/parcellink/internal/config"
	"github.com/dbsmedya/parcellink/internal/logger"
	"github.com/dbsmedya/parcellink/internal/sqlutil"
	"github.com/dbsmedya/parcellink/internal/types"
)

// Bookkeeping columns every result table carries ahead of the dataset columns.
const (
	IDColumn    = "id"
	RunIDColumn = "run_id"

	// maxVarcharLen is the longest value stored in a VARCHAR column on MySQL.
	maxVarcharLen = 255
)

// TableWrite reports one persisted result table.
type TableWrite struct {
	Dataset string
	Table   string
	Rows    int
}

// ResultWriter persists export tables into per-dataset SQL tables.
type ResultWriter struct {
	db     *sql.DB
	driver string
	prefix string
	logger *logger.Logger
}

// NewResultWriter creates a writer. Table names are prefix + sanitized dataset name.
func NewResultWriter(db *sql.DB, driver, prefix string, log *logger.Logger) *ResultWriter {
	if driver == "" {
		driver = config.DriverMySQL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ResultWriter{
		db:     db,
		driver: driver,
		prefix: prefix,
		logger: log,
	}
}

// TableName returns the result table name for a dataset.
func (w *ResultWriter) TableName(dataset string) string {
	return sqlutil.SanitizeName(w.prefix + dataset)
}

// Write stores every table under runID. Each result table is created or
// extended as needed, then its previous rows are replaced in one transaction.
func (w *ResultWriter) Write(ctx context.Context, runID string, tables []*types.Table) ([]TableWrite, error) {
	var written []TableWrite
	for _, t := range tables {
		if t.Len() == 0 {
			w.logger.Debugf("Skipping empty result for dataset %s", t.Name)
			continue
		}

		name := w.TableName(t.Name)
		quoted, err := sqlutil.QuoteIdentifierSafe(name)
		if err != nil {
			return written, err
		}
		columns := ResultColumns(t.Columns)

		if err := w.ensureTable(ctx, name, quoted, columns, t); err != nil {
			return written, fmt.Errorf("failed to prepare table %s: %w", name, err)
		}
		if err := w.replaceRows(ctx, quoted, columns, runID, t); err != nil {
			return written, fmt.Errorf("failed to write table %s: %w", name, err)
		}

		w.logger.WithDataset(t.Name).Infof("Saved %d rows to %s", t.Len(), name)
		written = append(written, TableWrite{Dataset: t.Name, Table: name, Rows: t.Len()})
	}
	return written, nil
}

// ResultColumns returns the names the given dataset columns are stored under,
// in the same order.
func ResultColumns(columns []string) []string {
	return sqlutil.SanitizeColumns(columns, IDColumn, RunIDColumn)
}

// ensureTable creates the result table or adds columns it lacks.
func (w *ResultWriter) ensureTable(ctx context.Context, name, quoted string, columns []string, t *types.Table) error {
	existing, err := w.existingColumns(ctx, name)
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		_, err := w.db.ExecContext(ctx, w.createTableSQL(quoted, columns, t))
		return err
	}

	for i, col := range columns {
		if existing[strings.ToLower(col)] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s NULL",
			quoted, sqlutil.QuoteIdentifier(col), w.columnType(t, t.Columns[i]))
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if !existing[RunIDColumn] {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s NULL",
			quoted, sqlutil.QuoteIdentifier(RunIDColumn), w.runIDType())
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// existingColumns returns the lowercased column names of a table, empty when it does not exist.
func (w *ResultWriter) existingColumns(ctx context.Context, name string) (map[string]bool, error) {
	var query string
	if w.driver == config.DriverSQLite {
		query = "SELECT name FROM pragma_table_info(?)"
	} else {
		query = "SELECT COLUMN_NAME FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?"
	}

	rows, err := w.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect columns: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		cols[strings.ToLower(col)] = true
	}
	return cols, rows.Err()
}

func (w *ResultWriter) createTableSQL(quoted string, columns []string, t *types.Table) string {
	var defs []string
	if w.driver == config.DriverSQLite {
		defs = append(defs, sqlutil.QuoteIdentifier(IDColumn)+" INTEGER PRIMARY KEY AUTOINCREMENT")
	} else {
		defs = append(defs, sqlutil.QuoteIdentifier(IDColumn)+" BIGINT NOT NULL AUTO_INCREMENT")
	}
	defs = append(defs, sqlutil.QuoteIdentifier(RunIDColumn)+" "+w.runIDType()+" NULL")
	for i, col := range columns {
		defs = append(defs, fmt.Sprintf("%s %s NULL", sqlutil.QuoteIdentifier(col), w.columnType(t, t.Columns[i])))
	}

	if w.driver == config.DriverSQLite {
		return fmt.Sprintf("CREATE TABLE %s (%s)", quoted, strings.Join(defs, ", "))
	}
	defs = append(defs, "PRIMARY KEY ("+sqlutil.QuoteIdentifier(IDColumn)+")")
	return fmt.Sprintf("CREATE TABLE %s (%s) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4", quoted, strings.Join(defs, ", "))
}

// columnType is TEXT when any value of the source column exceeds maxVarcharLen
// characters, VARCHAR(255) otherwise. SQLite always uses TEXT.
func (w *ResultWriter) columnType(t *types.Table, source string) string {
	if w.driver == config.DriverSQLite {
		return "TEXT"
	}
	for _, rec := range t.Rows {
		if utf8.RuneCountInString(rec.Value(source)) > maxVarcharLen {
			return "TEXT"
		}
	}
	return "VARCHAR(255)"
}

func (w *ResultWriter) runIDType() string {
	if w.driver == config.DriverSQLite {
		return "TEXT"
	}
	return "VARCHAR(36)"
}

// replaceRows deletes previous rows and inserts the table in one transaction.
func (w *ResultWriter) replaceRows(ctx context.Context, quoted string, columns []string, runID string, t *types.Table) (err error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+quoted); err != nil {
		return fmt.Errorf("failed to clear rows: %w", err)
	}

	quotedCols := make([]string, 0, len(columns)+1)
	quotedCols = append(quotedCols, sqlutil.QuoteIdentifier(RunIDColumn))
	for _, col := range columns {
		quotedCols = append(quotedCols, sqlutil.QuoteIdentifier(col))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(quotedCols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoted, strings.Join(quotedCols, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(quotedCols))
	for _, rec := range t.Rows {
		args[0] = runID
		for i, v := range rec.Values(t.Columns) {
			args[i+1] = v
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
