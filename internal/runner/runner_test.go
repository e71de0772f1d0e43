package runner

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flemzord/errand/internal/schedule"
)

// simpleJob is a minimal Job for scheduler tests.
type simpleJob struct {
	name     string
	schedule string
}

func (j *simpleJob) Name() string                { return j.name }
func (j *simpleJob) Schedule() string            { return j.schedule }
func (j *simpleJob) Run(_ context.Context) error { return nil }

func TestScheduler_RegisterJob_DuplicateName(t *testing.T) {
	t.Parallel()

	s := NewScheduler(Config{Logger: slog.Default()})

	if err := s.RegisterJob(&simpleJob{name: "prune", schedule: "* * * * *"}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := s.RegisterJob(&simpleJob{name: "prune", schedule: "* * * * *"}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestScheduler_Start_InvalidSchedule(t *testing.T) {
	t.Parallel()

	s := NewScheduler(Config{})
	_ = s.RegisterJob(&simpleJob{name: "bad", schedule: "not a cron spec"})

	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestScheduler_SubmitBeforeStart(t *testing.T) {
	t.Parallel()

	s := NewScheduler(Config{})

	err := s.Submit("t", schedule.Descriptor{Kind: schedule.Immediate}, func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("Submit before Start should fail")
	}
}

func TestScheduler_SubmitDuplicateName(t *testing.T) {
	t.Parallel()

	s := NewScheduler(Config{})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	noop := func(context.Context) error { return nil }
	d := schedule.Descriptor{Kind: schedule.Daily}

	if err := s.Submit("digest", d, noop); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := s.Submit("digest", d, noop); err == nil {
		t.Fatal("duplicate submit should fail")
	}
}

func TestScheduler_SubmitImmediate(t *testing.T) {
	t.Parallel()

	s := NewScheduler(Config{})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan struct{})
	err := s.Submit("now", schedule.Descriptor{Kind: schedule.Immediate}, func(context.Context) error {
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate task did not run")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestScheduler_SubmitLimitedInterval(t *testing.T) {
	t.Parallel()

	s := NewScheduler(Config{})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	var runs atomic.Int32
	d := schedule.Descriptor{
		Kind:     schedule.LimitedInterval,
		Interval: 10 * time.Millisecond,
		Repeat:   3,
	}
	if err := s.Submit("burst", d, func(context.Context) error {
		runs.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("runs = %d, want 3", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// The repeat count is a hard cap.
	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != 3 {
		t.Fatalf("runs = %d after settling, want exactly 3", got)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestScheduler_SubmitLimitedInterval_Invalid(t *testing.T) {
	t.Parallel()

	s := NewScheduler(Config{})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	noop := func(context.Context) error { return nil }

	d := schedule.Descriptor{Kind: schedule.LimitedInterval, Interval: 0, Repeat: 3}
	if err := s.Submit("zero-interval", d, noop); err == nil {
		t.Fatal("zero interval should be rejected")
	}

	d = schedule.Descriptor{Kind: schedule.LimitedInterval, Interval: time.Second, Repeat: 0}
	if err := s.Submit("zero-repeat", d, noop); err == nil {
		t.Fatal("zero repeat should be rejected")
	}

	// A rejected submit must not burn the name.
	d = schedule.Descriptor{Kind: schedule.LimitedInterval, Interval: time.Second, Repeat: 0}
	if err := s.Submit("retried", d, noop); err == nil {
		t.Fatal("zero repeat should be rejected")
	}
	d = schedule.Descriptor{Kind: schedule.LimitedInterval, Interval: time.Hour, Repeat: 1}
	if err := s.Submit("retried", d, noop); err != nil {
		t.Fatalf("valid resubmit under the same name should succeed: %v", err)
	}
}

func TestScheduler_StopCancelsPendingOnce(t *testing.T) {
	t.Parallel()

	hour := 10
	now := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	s := NewScheduler(Config{Now: func() time.Time { return now }})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	var ran atomic.Bool
	d := schedule.Descriptor{Kind: schedule.Once, TimeOfDay: &schedule.TimeOfDay{Hour: hour}}
	if err := s.Submit("later", d, func(context.Context) error {
		ran.Store(true)
		return nil
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if ran.Load() {
		t.Fatal("pending one-shot should not run after Stop")
	}
}

func TestUntilNext(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		tod  *schedule.TimeOfDay
		want time.Duration
	}{
		{"nil means now", nil, 0},
		{"later today", &schedule.TimeOfDay{Hour: 9, Minute: 0}, 30 * time.Minute},
		{"already passed rolls to tomorrow", &schedule.TimeOfDay{Hour: 8, Minute: 0}, 23*time.Hour + 30*time.Minute},
		{"exactly now rolls to tomorrow", &schedule.TimeOfDay{Hour: 8, Minute: 30}, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := untilNext(now, tt.tod); got != tt.want {
				t.Fatalf("untilNext = %v, want %v", got, tt.want)
			}
		})
	}
}
