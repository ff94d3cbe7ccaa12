// Package store runs generated SQL against the relational database and
// materializes results. Column order is preserved through the parallel
// Columns slice; rows are positional to match it.
package store

import (
	"context"
	"time"
)

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

type Executor interface {
	Execute(ctx context.Context, sqlText string) (Result, error)
}

// RowMap returns the row at index as a column-name-to-value mapping.
func (r Result) RowMap(index int) map[string]any {
	if index < 0 || index >= len(r.Rows) {
		return nil
	}
	row := make(map[string]any, len(r.Columns))
	for i, column := range r.Columns {
		if i < len(r.Rows[index]) {
			row[column] = r.Rows[index][i]
		}
	}
	return row
}
