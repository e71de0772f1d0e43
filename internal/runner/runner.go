// Package runner executes scheduled work: recurring tasks derived from
// parsed schedule descriptors, one-shot and limited-interval runs, and
// periodic housekeeping jobs such as execution-record pruning.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flemzord/errand/internal/schedule"
)

// ErrNotStarted indicates Submit was called before Start.
var ErrNotStarted = errors.New("runner: scheduler not started")

// Job defines a periodic background task registered before Start.
type Job interface {
	// Name returns a unique identifier for this job (used for logging and dedup).
	Name() string

	// Schedule returns a 5-field cron expression (e.g., "*/30 * * * *").
	Schedule() string

	// Run executes the job. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run(ctx context.Context) error
}

// TaskFunc is one scheduled execution of a prompt.
type TaskFunc func(ctx context.Context) error

// Config holds scheduler settings.
type Config struct {
	// DefaultHour is the hour used for Daily/Weekly descriptors that carry
	// no time of day. Default 9 (09:00).
	DefaultHour int

	Logger *slog.Logger

	// Now is injectable for testing.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.DefaultHour <= 0 || c.DefaultHour > 23 {
		c.DefaultHour = 9
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Scheduler runs cron-backed recurring work and timer-backed one-shot work.
// Each named task is protected by a per-name mutex so a slow run is skipped
// rather than stacked (TryLock — atomic, no race).
type Scheduler struct {
	mu      sync.Mutex
	cfg     Config
	cron    *cron.Cron
	jobs    []Job
	names   map[string]struct{}
	locks   map[string]*sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewScheduler creates a scheduler. Housekeeping jobs must be registered
// before Start; descriptor submissions may arrive at any time afterwards.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:   cfg.withDefaults(),
		names: make(map[string]struct{}),
		locks: make(map[string]*sync.Mutex),
	}
}

// RegisterJob adds a housekeeping job. Must be called before Start.
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.claimName(j.Name()); err != nil {
		return err
	}
	s.jobs = append(s.jobs, j)
	return nil
}

// claimName reserves a unique task name. Caller holds s.mu.
func (s *Scheduler) claimName(name string) error {
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("runner: duplicate task name %q", name)
	}
	s.names[name] = struct{}{}
	s.locks[name] = &sync.Mutex{}
	return nil
}

// Start begins executing registered jobs and accepting submissions.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(cron.WithParser(parser))

	for _, j := range s.jobs {
		job := j
		if _, err := s.cron.AddFunc(job.Schedule(), s.guarded(job.Name(), job.Run)); err != nil {
			cancel()
			return fmt.Errorf("runner: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron.Start()
	s.started = true
	s.cfg.Logger.Info("runner: scheduler started", "jobs", len(s.jobs))
	return nil
}

// Submit schedules a task according to its descriptor: Daily and Weekly
// become cron entries, Once waits for the next wall-clock occurrence,
// LimitedInterval runs immediately and then on a ticker for the remaining
// repeats, and Immediate runs right away. The name must be unique, and
// LimitedInterval descriptors must carry a positive interval and repeat.
func (s *Scheduler) Submit(name string, d schedule.Descriptor, fn TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	if d.Kind == schedule.LimitedInterval && (d.Interval <= 0 || d.Repeat < 1) {
		return fmt.Errorf("runner: limited-interval task %q needs a positive interval and repeat (got %v, %d)",
			name, d.Interval, d.Repeat)
	}
	if err := s.claimName(name); err != nil {
		return err
	}

	switch d.Kind {
	case schedule.Daily, schedule.Weekly:
		spec, err := schedule.CronSpec(d, s.cfg.DefaultHour)
		if err != nil {
			return err
		}
		if _, err := s.cron.AddFunc(spec, s.guarded(name, fn)); err != nil {
			return fmt.Errorf("runner: add cron entry for %q: %w", name, err)
		}
		s.cfg.Logger.Info("runner: recurring task scheduled", "task", name, "spec", spec)

	case schedule.Once:
		delay := untilNext(s.cfg.Now(), d.TimeOfDay)
		s.spawn(func(ctx context.Context) {
			s.runAfter(ctx, name, delay, fn)
		})
		s.cfg.Logger.Info("runner: one-shot task scheduled", "task", name, "delay", delay)

	case schedule.LimitedInterval:
		s.spawn(func(ctx context.Context) {
			s.runLimited(ctx, name, d.Interval, d.Repeat, fn)
		})
		s.cfg.Logger.Info("runner: limited task scheduled",
			"task", name, "interval", d.Interval, "repeat", d.Repeat)

	default:
		s.spawn(func(ctx context.Context) {
			s.runGuarded(ctx, name, fn)
		})
	}

	return nil
}

// Stop shuts the scheduler down, waiting for in-flight work or ctx expiry,
// whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cfg.Logger.Info("runner: scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("runner: shutdown timed out: %w", ctx.Err())
	}
}

// spawn runs fn on the scheduler's lifetime context.
func (s *Scheduler) spawn(fn func(ctx context.Context)) {
	s.wg.Add(1)
	ctx := s.ctx
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

// guarded wraps a run function with the per-name TryLock and logging.
func (s *Scheduler) guarded(name string, fn TaskFunc) func() {
	return func() {
		s.runGuarded(s.ctx, name, fn)
	}
}

func (s *Scheduler) runGuarded(ctx context.Context, name string, fn TaskFunc) {
	s.mu.Lock()
	lock := s.locks[name]
	s.mu.Unlock()

	// TryLock is atomic — no race between check and acquire.
	// If the previous run is still going, skip this one.
	if !lock.TryLock() {
		s.cfg.Logger.Warn("runner: task still running, skipping", "task", name)
		return
	}
	defer lock.Unlock()

	s.cfg.Logger.Debug("runner: task started", "task", name)
	if err := fn(ctx); err != nil {
		s.cfg.Logger.Error("runner: task failed", "task", name, "error", err)
	} else {
		s.cfg.Logger.Debug("runner: task completed", "task", name)
	}
}

// runAfter waits for the delay, then runs once.
func (s *Scheduler) runAfter(ctx context.Context, name string, delay time.Duration, fn TaskFunc) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	s.runGuarded(ctx, name, fn)
}

// runLimited runs immediately and then every interval until repeat runs
// have happened or the scheduler stops.
func (s *Scheduler) runLimited(ctx context.Context, name string, interval time.Duration, repeat int, fn TaskFunc) {
	s.runGuarded(ctx, name, fn)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for done := 1; done < repeat; done++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runGuarded(ctx, name, fn)
		}
	}
}

// untilNext returns how long until the next wall-clock occurrence of t.
// A nil time means "now". Occurrences in the past roll over to tomorrow.
func untilNext(now time.Time, t *schedule.TimeOfDay) time.Duration {
	if t == nil {
		return 0
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.Add(24 * time.Hour)
	}
	return target.Sub(now)
}
