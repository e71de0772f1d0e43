package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/flemzord/errand/internal/execution"
	"github.com/flemzord/errand/internal/metrics"
)

// PruneJob deletes execution records older than the retention window.
// Retention is housekeeping, not correctness: the duplicate guard already
// ignores records outside its window, pruning just keeps the store small.
type PruneJob struct {
	Store        execution.Store
	Retention    time.Duration // default 24h
	Logger       *slog.Logger
	Metrics      *metrics.Metrics // optional
	ScheduleExpr string           // empty = default "*/30 * * * *"
	Now          func() time.Time // injectable for testing
}

// Compile-time interface check.
var _ Job = (*PruneJob)(nil)

// Name implements Job.
func (j *PruneJob) Name() string { return "record_prune" }

// Schedule implements Job.
func (j *PruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/30 * * * *"
}

// Run prunes records older than the retention window.
func (j *PruneJob) Run(ctx context.Context) error {
	retention := j.Retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	pruned, err := j.Store.Prune(ctx, now().Add(-retention))
	if err != nil {
		return err
	}

	if pruned > 0 {
		if j.Metrics != nil {
			j.Metrics.RecordsPruned.Add(float64(pruned))
		}
		if j.Logger != nil {
			j.Logger.Info("runner: pruned execution records", "count", pruned)
		}
	}
	return nil
}
