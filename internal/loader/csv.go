// Package loader reads datasets from delimited text files.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbsmedya/parcellink/internal/types"
)

const utf8BOM = "\ufeff"

// LoadCSV reads a CSV file into a table named name. Every cell is kept as
// text. A missing file yields an error wrapping fs.ErrNotExist.
func LoadCSV(path, name string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %q: %w", name, err)
	}
	defer f.Close()

	table, err := ReadCSV(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// ReadCSV parses CSV content from r. The first record is the header; short
// rows are padded with empty cells. Cells past the header go into extra
// "Unnamed: <i>" columns. Blank header names become "Unnamed: <i>" and
// repeated ones get ".1", ".2" suffixes, so no cell shares a column.
func ReadCSV(r io.Reader, name string) (*types.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset %q has no header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of dataset %q: %w", name, err)
	}

	names := newColumnNamer()
	columns := make([]string, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		columns[i] = names.unique(i, strings.TrimSpace(col))
	}

	table := types.NewTable(name, columns)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %q: %w", name, err)
		}
		for i := len(table.Columns); i < len(record); i++ {
			table.AddColumn(names.unique(i, ""))
		}
		if err := table.AppendRow(record); err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	return table, nil
}

// columnNamer hands out distinct column names the way spreadsheet readers do.
type columnNamer struct {
	used map[string]bool
	next map[string]int
}

func newColumnNamer() *columnNamer {
	return &columnNamer{used: make(map[string]bool), next: make(map[string]int)}
}

// unique returns col, or "Unnamed: <pos>" when col is blank, suffixed with
// ".1", ".2" and so on until the name is unused.
func (n *columnNamer) unique(pos int, col string) string {
	if col == "" {
		col = fmt.Sprintf("Unnamed: %d", pos)
	}
	name := col
	for n.used[name] {
		n.next[col]++
		name = fmt.Sprintf("%s.%d", col, n.next[col])
	}
	n.used[name] = true
	return name
}
