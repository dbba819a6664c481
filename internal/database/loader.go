package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dbsmedya/parcellink/internal/sqlutil"
	"github.com/dbsmedya/parcellink/internal/types"
)

// LoadTable reads every row of a SQL table into a dataset named name.
// NULL cells become "" and all other values are kept as text.
func LoadTable(ctx context.Context, db *sql.DB, table, name string) (*types.Table, error) {
	quoted, err := sqlutil.QuoteIdentifierSafe(table)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoted)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	result := types.NewTable(name, columns)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		cells := make([]string, len(columns))
		for i, v := range values {
			cells[i] = cellString(v)
		}
		if err := result.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	return result, nil
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
