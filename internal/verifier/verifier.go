// Package verifier checks that saved result tables hold exactly the rows of a trace run.
package verifier

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dbsmedya/parcellink/internal/database"
	"github.com/dbsmedya/parcellink/internal/logger"
	"github.com/dbsmedya/parcellink/internal/sqlutil"
	"github.com/dbsmedya/parcellink/internal/types"
)

// VerificationMethod defines how saved rows are compared with the export tables.
type VerificationMethod string

const (
	// MethodCount compares row counts (fast)
	MethodCount VerificationMethod = "count"
	// MethodSHA256 compares a SHA256 hash over every stored cell
	MethodSHA256 VerificationMethod = "sha256"
	// MethodSkip skips verification entirely
	MethodSkip VerificationMethod = "skip"
)

// VerifyResult holds the outcome for one result table.
type VerifyResult struct {
	Dataset       string
	Table         string
	Method        VerificationMethod
	ExpectedCount int64
	StoredCount   int64
	ExpectedHash  string
	StoredHash    string
	Match         bool
	ErrorMessage  string
}

// VerifyStats summarizes a verification pass.
type VerifyStats struct {
	TablesVerified int
	TablesPassed   int
	TablesFailed   int
	TotalRows      int64
	Method         VerificationMethod
	Results        []VerifyResult
}

// Verifier reads result tables back and compares them with the exported rows.
type Verifier struct {
	db        *sql.DB
	method    VerificationMethod
	chunkSize int
	logger    *logger.Logger
}

// NewVerifier creates a verifier. An empty method means MethodCount.
func NewVerifier(db *sql.DB, method VerificationMethod, log *logger.Logger) (*Verifier, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	if method == "" {
		method = MethodCount
	}

	return &Verifier{
		db:        db,
		method:    method,
		chunkSize: 1000,
		logger:    log,
	}, nil
}

// Verify checks every saved table of runID against the export table of the same dataset.
// The first mismatch stops verification and is returned as an error.
func (v *Verifier) Verify(ctx context.Context, runID string, saved []database.TableWrite, tables []*types.Table) (*VerifyStats, error) {
	if v.method == MethodSkip {
		v.logger.Info("Verification SKIPPED (method=skip)")
		return &VerifyStats{Method: MethodSkip}, nil
	}

	byDataset := make(map[string]*types.Table, len(tables))
	for _, t := range tables {
		byDataset[t.Name] = t
	}

	stats := &VerifyStats{Method: v.method}
	v.logger.Infof("Starting verification (method=%s) for %d tables", v.method, len(saved))

	for _, w := range saved {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("verification interrupted: %w", err)
		}

		t, ok := byDataset[w.Dataset]
		if !ok {
			return stats, fmt.Errorf("no export table for dataset %q", w.Dataset)
		}

		var (
			result *VerifyResult
			err    error
		)
		switch v.method {
		case MethodCount:
			result, err = v.verifyByCount(ctx, runID, w, t)
		case MethodSHA256:
			result, err = v.verifyBySHA256(ctx, runID, w, t)
		default:
			return stats, fmt.Errorf("unsupported verification method: %s", v.method)
		}
		if err != nil {
			return stats, fmt.Errorf("verification failed for table %s: %w", w.Table, err)
		}

		stats.TablesVerified++
		stats.TotalRows += result.StoredCount
		stats.Results = append(stats.Results, *result)

		if !result.Match {
			stats.TablesFailed++
			v.logger.Errorf("Verification FAILED for table %q: %s", w.Table, result.ErrorMessage)
			return stats, fmt.Errorf("verification mismatch in table %s: %s", w.Table, result.ErrorMessage)
		}
		stats.TablesPassed++
		v.logger.Debugf("Verification PASSED for table %q (%d rows)", w.Table, result.StoredCount)
	}

	v.logger.Infof("Verification complete: %d tables verified, %d passed, %d failed, %d total rows",
		stats.TablesVerified, stats.TablesPassed, stats.TablesFailed, stats.TotalRows)

	return stats, nil
}

// verifyByCount compares the stored row count of the run with the export table.
func (v *Verifier) verifyByCount(ctx context.Context, runID string, w database.TableWrite, t *types.Table) (*VerifyResult, error) {
	quoted, err := sqlutil.QuoteIdentifierSafe(w.Table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", quoted, sqlutil.QuoteIdentifier(database.RunIDColumn))
	var stored int64
	if err := v.db.QueryRowContext(ctx, query, runID).Scan(&stored); err != nil {
		return nil, fmt.Errorf("failed to count stored rows: %w", err)
	}

	result := &VerifyResult{
		Dataset:       w.Dataset,
		Table:         w.Table,
		Method:        MethodCount,
		ExpectedCount: int64(t.Len()),
		StoredCount:   stored,
		Match:         stored == int64(t.Len()),
	}
	if !result.Match {
		result.ErrorMessage = fmt.Sprintf("count mismatch: expected=%d, stored=%d", result.ExpectedCount, stored)
	}
	return result, nil
}

// verifyBySHA256 hashes the stored rows in insertion order and the export rows in table order.
func (v *Verifier) verifyBySHA256(ctx context.Context, runID string, w database.TableWrite, t *types.Table) (*VerifyResult, error) {
	columns := database.ResultColumns(t.Columns)

	expectedHasher := sha256.New()
	for _, rec := range t.Rows {
		values := rec.Values(t.Columns)
		cells := make([]any, len(values))
		for i, val := range values {
			cells[i] = val
		}
		expectedHasher.Write([]byte(serializeRow(columns, cells)))
		expectedHasher.Write([]byte("\n"))
	}
	expectedHash := hex.EncodeToString(expectedHasher.Sum(nil))

	storedHash, stored, err := v.computeTableHash(ctx, w.Table, columns, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stored hash: %w", err)
	}

	result := &VerifyResult{
		Dataset:       w.Dataset,
		Table:         w.Table,
		Method:        MethodSHA256,
		ExpectedCount: int64(t.Len()),
		StoredCount:   stored,
		ExpectedHash:  expectedHash,
		StoredHash:    storedHash,
		Match:         expectedHash == storedHash && stored == int64(t.Len()),
	}
	if !result.Match {
		if stored != int64(t.Len()) {
			result.ErrorMessage = fmt.Sprintf("count mismatch: expected=%d, stored=%d", t.Len(), stored)
		} else {
			result.ErrorMessage = fmt.Sprintf("hash mismatch: expected=%s, stored=%s", expectedHash[:16], storedHash[:16])
		}
	}
	return result, nil
}

// computeTableHash reads the run's rows in id order, chunkSize rows per query.
func (v *Verifier) computeTableHash(ctx context.Context, table string, columns []string, runID string) (string, int64, error) {
	quoted, err := sqlutil.QuoteIdentifierSafe(table)
	if err != nil {
		return "", 0, err
	}

	idCol := sqlutil.QuoteIdentifier(database.IDColumn)
	selectCols := []string{idCol}
	for _, col := range columns {
		selectCols = append(selectCols, sqlutil.QuoteIdentifier(col))
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s > ? ORDER BY %s LIMIT ?",
		strings.Join(selectCols, ", "), quoted, sqlutil.QuoteIdentifier(database.RunIDColumn), idCol, idCol)

	hasher := sha256.New()
	var (
		totalRows int64
		lastID    int64
	)
	for {
		n, err := v.hashChunk(ctx, query, runID, &lastID, columns, hasher.Write)
		if err != nil {
			return "", 0, err
		}
		totalRows += int64(n)
		if n < v.chunkSize {
			break
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), totalRows, nil
}

// hashChunk hashes one keyset page and advances lastID past it.
func (v *Verifier) hashChunk(ctx context.Context, query, runID string, lastID *int64, columns []string, write func([]byte) (int, error)) (int, error) {
	rows, err := v.db.QueryContext(ctx, query, runID, *lastID, v.chunkSize)
	if err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return n, fmt.Errorf("hash computation interrupted: %w", err)
		}

		var id int64
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns)+1)
		ptrs[0] = &id
		for i := range values {
			ptrs[i+1] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return n, fmt.Errorf("failed to scan row: %w", err)
		}

		write([]byte(serializeRow(columns, values)))
		write([]byte("\n"))
		*lastID = id
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("error iterating rows: %w", err)
	}
	return n, nil
}

// serializeRow renders a row deterministically: col1=val1\x00col2=val2...
// Stored NULLs and empty strings both render empty, as the writer stores "" for empty cells.
func serializeRow(columns []string, values []any) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		var s string
		switch val := values[i].(type) {
		case nil:
		case []byte:
			s = string(val)
		case string:
			s = val
		default:
			s = fmt.Sprint(val)
		}
		parts[i] = col + "=" + s
	}
	return strings.Join(parts, "\x00")
}

// SetChunkSize sets the rows read per query for SHA256 verification.
func (v *Verifier) SetChunkSize(size int) {
	if size > 0 {
		v.chunkSize = size
	}
}

// GetChunkSize returns the current chunk size.
func (v *Verifier) GetChunkSize() int {
	return v.chunkSize
}

// GetMethod returns the configured verification method.
func (v *Verifier) GetMethod() VerificationMethod {
	return v.method
}
