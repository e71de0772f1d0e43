// Package gateway provides the HTTP surface of the assistant: prompt
// submission, execution history, health, metrics, and a websocket chat
// endpoint. It binds to loopback by default.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flemzord/errand/internal/assistant"
	"github.com/flemzord/errand/internal/config"
	"github.com/flemzord/errand/internal/execution"
	"github.com/flemzord/errand/internal/metrics"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 60 * time.Second
)

// Gateway serves the HTTP API.
type Gateway struct {
	cfg       config.GatewayConfig
	assistant *assistant.Assistant
	store     execution.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
	server    *http.Server
}

// New creates a gateway. The metrics set may be nil, in which case the
// /metrics route is not mounted.
func New(cfg config.GatewayConfig, a *assistant.Assistant, store execution.Store, m *metrics.Metrics, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:       cfg,
		assistant: a,
		store:     store,
		metrics:   m,
		logger:    logger.With("component", "gateway"),
	}
}

// Start begins serving. It returns once the listener is bound; serving
// continues in the background until Stop.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         g.cfg.Listen,
		Handler:      g.buildRouter(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.cfg.Listen)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.cfg.Listen)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop drains connections gracefully within the given context.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(ctx)
}
