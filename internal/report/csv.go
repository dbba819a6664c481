package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dbsmedya/parcellink/internal/sqlutil"
	"github.com/dbsmedya/parcellink/internal/types"
)

// CSVWriter writes export tables as UTF-8 CSV files with a byte order mark.
type CSVWriter struct {
	Dir string
}

// NewCSVWriter creates a writer for the given output directory.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{Dir: dir}
}

// FileName returns the export file name for a dataset. Path separators and
// other unsafe characters in the name become underscores, so the file always
// lands directly in the output directory.
func FileName(dataset string) string {
	return fmt.Sprintf("검색결과_%s_연계.csv", sqlutil.SanitizeName(dataset))
}

// Write stores every table and returns the written paths in table order.
func (w *CSVWriter) Write(tables []*types.Table) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(w.Dir, FileName(t.Name))
		if err := writeTable(path, t); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTable(path string, t *types.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := f.WriteString("\ufeff"); err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, rec := range t.Rows {
		if err := cw.Write(rec.Values(t.Columns)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
