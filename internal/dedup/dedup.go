// Package dedup prevents redundant execution of semantically equivalent
// prompts. It compares a new prompt's embedding against recent execution
// records and reports the closest match within a time window.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/errand/internal/execution"
	"github.com/flemzord/errand/internal/metrics"
)

// Embedder turns text into a fixed-dimension vector. Any sentence-embedding
// provider satisfies the contract; the guard only assumes that the same
// provider returns comparable vectors for comparable texts.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is the outcome of a duplicate check.
type Result struct {
	IsDuplicate bool
	Similarity  float64
	Matched     *execution.Record
}

// Config holds guard settings.
type Config struct {
	// Threshold is the strict lower bound for a duplicate: a candidate at
	// exactly the threshold is NOT a duplicate. Default 0.85.
	Threshold float64

	// Window bounds how far back candidates are considered. Default 24h.
	Window time.Duration

	Logger *slog.Logger

	// Metrics is optional; when set, embed failures are counted.
	Metrics *metrics.Metrics

	// Now is injectable for testing.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = 0.85
	}
	if c.Window <= 0 {
		c.Window = 24 * time.Hour
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Guard checks prompts against the execution history.
type Guard struct {
	store    execution.Store
	embedder Embedder
	cfg      Config
}

// NewGuard creates a guard over the given store and embedding provider.
func NewGuard(store execution.Store, embedder Embedder, cfg Config) *Guard {
	return &Guard{
		store:    store,
		embedder: embedder,
		cfg:      cfg.withDefaults(),
	}
}

// Check reports whether the prompt is a semantic duplicate of a recent
// execution. It never writes to the store.
//
// The guard fails open: if the embedding provider is unavailable, the check
// logs a warning and reports "not a duplicate" so the prompt still runs.
// A broken dedup layer must not block the assistant.
func (g *Guard) Check(ctx context.Context, prompt string) (Result, error) {
	vec, err := g.embedder.Embed(ctx, prompt)
	if err != nil {
		g.cfg.Logger.Warn("dedup: embedding provider unavailable, failing open",
			"error", err,
		)
		g.countEmbedFailure()
		return Result{}, nil
	}

	since := g.cfg.Now().Add(-g.cfg.Window)
	candidates, err := g.store.Since(ctx, since)
	if err != nil {
		return Result{}, fmt.Errorf("dedup: load recent executions: %w", err)
	}

	var best Result
	for i := range candidates {
		sim := CosineSimilarity(vec, candidates[i].Embedding)
		if best.Matched == nil || sim > best.Similarity {
			best.Similarity = sim
			best.Matched = &candidates[i]
		}
	}

	if best.Matched == nil {
		return Result{}, nil
	}

	// Strict comparison: exactly at the threshold is not a duplicate.
	if best.Similarity > g.cfg.Threshold {
		best.IsDuplicate = true
		return best, nil
	}

	return Result{Similarity: best.Similarity}, nil
}

// StoreExecution records a prompt that actually ran. The caller invokes it
// after execution, never on a duplicate hit. An embedding failure here does
// not lose the record — history must survive provider outages — but a
// storage failure is surfaced, since silently dropping history would let the
// window-based check under-detect duplicates from then on.
func (g *Guard) StoreExecution(ctx context.Context, prompt, resultSummary string) (execution.Record, error) {
	vec, err := g.embedder.Embed(ctx, prompt)
	if err != nil {
		g.cfg.Logger.Warn("dedup: storing execution without embedding",
			"error", err,
		)
		g.countEmbedFailure()
		vec = nil
	}

	rec, err := execution.NewRecord(prompt, resultSummary, vec)
	if err != nil {
		return execution.Record{}, fmt.Errorf("dedup: build record: %w", err)
	}

	if err := g.store.Append(ctx, rec); err != nil {
		return execution.Record{}, fmt.Errorf("dedup: persist record: %w", err)
	}

	return rec, nil
}

func (g *Guard) countEmbedFailure() {
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.EmbedFailuresTotal.Inc()
	}
}
