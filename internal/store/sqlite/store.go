package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flemzord/errand/internal/execution"
)

// store implements execution.Store backed by SQLite.
type store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ execution.Store = (*store)(nil)

// Append inserts a record. Record IDs are unique by construction, so a
// conflict indicates a caller bug and surfaces as an error.
func (s *store) Append(ctx context.Context, rec execution.Record) error {
	embJSON, err := json.Marshal(rec.Embedding)
	if err != nil {
		return fmt.Errorf("sqlite: marshal embedding: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO executions (id, prompt, embedding, result_summary, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Prompt, string(embJSON), rec.ResultSummary, createdAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append execution: %w", err)
	}

	return nil
}

// Since returns records created at or after t, oldest first.
func (s *store) Since(ctx context.Context, t time.Time) ([]execution.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, embedding, result_summary, created_at
		FROM executions
		WHERE created_at >= ?
		ORDER BY created_at ASC`,
		t.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// Prune deletes records created before t.
func (s *store) Prune(ctx context.Context, t time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM executions WHERE created_at < ?", t.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune executions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}

	return int(n), nil
}

// Len returns the total number of stored records.
func (s *store) Len(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM executions").Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlite: count executions: %w", err)
	}
	return count, nil
}

func scanRecords(rows *sql.Rows) ([]execution.Record, error) {
	var records []execution.Record
	for rows.Next() {
		var (
			rec     execution.Record
			embJSON string
			nanos   int64
		)

		if err := rows.Scan(&rec.ID, &rec.Prompt, &embJSON, &rec.ResultSummary, &nanos); err != nil {
			return nil, fmt.Errorf("sqlite: scan execution: %w", err)
		}

		if embJSON != "" && embJSON != "[]" && embJSON != "null" {
			if err := json.Unmarshal([]byte(embJSON), &rec.Embedding); err != nil {
				return nil, fmt.Errorf("sqlite: unmarshal embedding: %w", err)
			}
		}

		rec.CreatedAt = time.Unix(0, nanos).UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: scan executions rows: %w", err)
	}

	return records, nil
}
