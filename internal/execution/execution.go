// Package execution defines the append-only record of executed prompts and
// the store interfaces backing the duplicate guard and retention housekeeping.
package execution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyPrompt indicates a record was built from an empty prompt.
var ErrEmptyPrompt = errors.New("execution: empty prompt")

// Record is one executed prompt. Records are created once, appended to the
// store, and never mutated afterwards; retention pruning is the only way
// they leave the store.
type Record struct {
	ID            string
	Prompt        string
	Embedding     []float32
	ResultSummary string
	CreatedAt     time.Time
}

// NewRecord builds a record with a time-ordered ID and UTC creation time.
// The embedding may be nil when the provider was unavailable at store time.
func NewRecord(prompt, resultSummary string, embedding []float32) (Record, error) {
	if prompt == "" {
		return Record{}, ErrEmptyPrompt
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:            id.String(),
		Prompt:        prompt,
		Embedding:     embedding,
		ResultSummary: resultSummary,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Store persists execution records in insertion order.
// Implementations must be safe for concurrent use; concurrent Append calls
// must not corrupt the collection.
type Store interface {
	// Append adds a record to the store.
	Append(ctx context.Context, rec Record) error

	// Since returns all records created at or after t, oldest first.
	Since(ctx context.Context, t time.Time) ([]Record, error)

	// Prune deletes records created before t and returns how many were removed.
	Prune(ctx context.Context, t time.Time) (int, error)

	// Len returns the number of stored records.
	Len(ctx context.Context) (int, error)
}
