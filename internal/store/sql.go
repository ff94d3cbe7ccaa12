package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/observability"
)

// SQLExecutor executes queries through database/sql. The SQL text is
// produced by the language model and executed as-is against the fixed
// schema; results are materialized eagerly, never streamed.
type SQLExecutor struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewSQLExecutor(db *sql.DB, timeout time.Duration) *SQLExecutor {
	return &SQLExecutor{DB: db, Timeout: timeout}
}

func (e *SQLExecutor) Execute(ctx context.Context, sqlText string) (Result, error) {
	sqlText = stripTrailingSemicolons(sqlText)
	if sqlText == "" {
		return Result{}, fmt.Errorf("sql is required")
	}
	if e.DB == nil {
		return Result{}, fmt.Errorf("database handle is required")
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.DB.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	duration := time.Since(start)
	observability.ObserveStoreQueryDuration(duration)

	return Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: duration,
	}, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
