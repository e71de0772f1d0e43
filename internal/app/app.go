// Package app wires the configured components together and manages their
// lifecycle: start in dependency order, stop in reverse on shutdown.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flemzord/errand/internal/assistant"
	"github.com/flemzord/errand/internal/config"
	"github.com/flemzord/errand/internal/dedup"
	"github.com/flemzord/errand/internal/embed/openai"
	"github.com/flemzord/errand/internal/execution"
	"github.com/flemzord/errand/internal/gateway"
	"github.com/flemzord/errand/internal/metrics"
	"github.com/flemzord/errand/internal/runner"
	"github.com/flemzord/errand/internal/store/sqlite"
)

const shutdownTimeout = 30 * time.Second

// component is one startable/stoppable piece of the application.
type component struct {
	name    string
	start   func() error
	stop    func(ctx context.Context) error
	started bool
}

// App owns the assembled components and runs them.
type App struct {
	logger     *slog.Logger
	components []component
	db         *sql.DB // nil for the memory store
}

// New assembles the application from a validated config.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{logger: logger.With("component", "app")}

	store, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}

	embedder := openai.New(openai.Config{
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout,
	})

	m := metrics.New()

	guard := dedup.NewGuard(store, embedder, dedup.Config{
		Threshold: cfg.Dedup.Threshold,
		Window:    cfg.Dedup.Window,
		Logger:    logger,
		Metrics:   m,
	})

	registry, err := defaultRegistry()
	if err != nil {
		return nil, err
	}

	sched := runner.NewScheduler(runner.Config{
		DefaultHour: cfg.Schedule.DefaultHour,
		Logger:      logger,
	})
	err = sched.RegisterJob(&runner.PruneJob{
		Store:        store,
		Retention:    cfg.Retention.Window,
		Logger:       logger,
		Metrics:      m,
		ScheduleExpr: cfg.Retention.ScheduleExpr,
	})
	if err != nil {
		return nil, fmt.Errorf("app: register prune job: %w", err)
	}

	asst := assistant.New(guard, registry, sched, m, logger)
	gw := gateway.New(cfg.Gateway, asst, store, m, logger)

	a.components = []component{
		{name: "runner", start: sched.Start, stop: sched.Stop},
		{name: "gateway", start: gw.Start, stop: gw.Stop},
	}
	return a, nil
}

func (a *App) openStore(cfg *config.Config) (execution.Store, error) {
	if cfg.Store.Driver == "memory" {
		a.logger.Info("using in-memory store")
		return execution.NewInMemoryStore(), nil
	}

	path := cfg.Store.Path
	if path == "" {
		path = filepath.Join(cfg.DataDir, "errand.db")
	}
	store, db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.logger.Info("sqlite store opened", "path", path)
	return store, nil
}

// Start brings components up in order. On failure, already-started
// components are stopped in reverse.
func (a *App) Start() error {
	for i := range a.components {
		c := &a.components[i]
		a.logger.Info("starting", "name", c.name)
		if err := c.start(); err != nil {
			a.logger.Error("start failed", "name", c.name, "error", err)
			a.stopFrom(i - 1)
			return fmt.Errorf("app: starting %s: %w", c.name, err)
		}
		c.started = true
	}
	return nil
}

// Stop shuts everything down in reverse start order.
func (a *App) Stop() {
	a.stopFrom(len(a.components) - 1)
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database", "error", err)
		}
	}
}

func (a *App) stopFrom(idx int) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := idx; i >= 0; i-- {
		c := &a.components[i]
		if !c.started {
			continue
		}
		a.logger.Info("stopping", "name", c.name)
		if err := c.stop(ctx); err != nil {
			a.logger.Error("stop error", "name", c.name, "error", err)
		}
		c.started = false
	}
}

// Run starts all components and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	if err := a.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	a.logger.Info("shutdown signal received", "signal", sig.String())

	a.Stop()
	a.logger.Info("shutdown complete")
	return nil
}
