package execution_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/errand/internal/execution"
)

// Compile-time interface guard.
var _ execution.Store = (*execution.InMemoryStore)(nil)

func recordAt(t *testing.T, prompt string, created time.Time) execution.Record {
	t.Helper()

	rec, err := execution.NewRecord(prompt, "ok", []float32{1, 0})
	if err != nil {
		t.Fatalf("NewRecord(%q): %v", prompt, err)
	}
	rec.CreatedAt = created
	return rec
}

func TestNewRecord(t *testing.T) {
	t.Parallel()

	rec, err := execution.NewRecord("list open PRs", "3 open", []float32{0.1, 0.2})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("record ID should be set")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("record CreatedAt should be set")
	}
	if rec.CreatedAt.Location() != time.UTC {
		t.Fatalf("CreatedAt location = %v, want UTC", rec.CreatedAt.Location())
	}

	if _, err := execution.NewRecord("", "", nil); err == nil {
		t.Fatal("empty prompt should be rejected")
	}
}

func TestNewRecord_TimeOrderedIDs(t *testing.T) {
	t.Parallel()

	first, err := execution.NewRecord("a", "", nil)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := execution.NewRecord("b", "", nil)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}

	if first.ID >= second.ID {
		t.Fatalf("IDs should be time-ordered: %s >= %s", first.ID, second.ID)
	}
}

func TestInMemoryStore_AppendAndSince(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := execution.NewInMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := recordAt(t, fmt.Sprintf("prompt %d", i), base.Add(time.Duration(i)*time.Hour))
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.Since(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Since returned %d records, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.Before(got[i-1].CreatedAt) {
			t.Fatal("Since results should be oldest first")
		}
	}

	// Boundary: a record created exactly at t is included.
	if got[0].CreatedAt != base.Add(2*time.Hour) {
		t.Fatalf("boundary record missing, first = %v", got[0].CreatedAt)
	}
}

func TestInMemoryStore_AppendOutOfOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := execution.NewInMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		if err := store.Append(ctx, recordAt(t, "p", base.Add(offset))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.Since(ctx, base)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.Before(got[i-1].CreatedAt) {
			t.Fatal("records should be sorted by creation time")
		}
	}
}

func TestInMemoryStore_Prune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := execution.NewInMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		if err := store.Append(ctx, recordAt(t, "p", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	pruned, err := store.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("Prune removed %d, want 2", pruned)
	}

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Fatalf("Len = %d after prune, want 2", n)
	}

	// Pruning again with the same cutoff is a no-op.
	pruned, err = store.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("second Prune removed %d, want 0", pruned)
	}
}

func TestInMemoryStore_ConcurrentAppend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := execution.NewInMemoryStore()

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec, err := execution.NewRecord(fmt.Sprintf("w%d-%d", w, i), "", nil)
				if err != nil {
					t.Errorf("NewRecord: %v", err)
					return
				}
				if err := store.Append(ctx, rec); err != nil {
					t.Errorf("Append: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != writers*perWriter {
		t.Fatalf("Len = %d, want %d", n, writers*perWriter)
	}
}
