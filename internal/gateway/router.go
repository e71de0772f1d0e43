package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flemzord/errand/internal/assistant"
)

func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", g.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(g.authMiddleware)

		r.Post("/api/prompts", g.handlePrompt)
		r.Get("/api/executions", g.handleListExecutions)
		r.Delete("/api/executions", g.handlePruneExecutions)
		r.Get("/ws/chat", g.handleChat)

		if g.metrics != nil {
			r.Method(http.MethodGet, "/metrics", g.metrics.Handler())
		}
	})

	return r
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := g.store.Len(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"executions": count,
	})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (g *Gateway) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := g.assistant.HandlePrompt(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyPrompt) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.logger.Error("prompt handling failed", "error", err)
		writeError(w, http.StatusInternalServerError, "prompt handling failed")
		return
	}

	status := http.StatusOK
	if resp.Duplicate {
		status = http.StatusConflict
	}
	writeJSON(w, status, resp)
}

func (g *Gateway) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		since = parsed
	}

	records, err := g.store.Since(r.Context(), since)
	if err != nil {
		g.logger.Error("listing executions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing executions failed")
		return
	}

	type executionView struct {
		ID            string    `json:"id"`
		Prompt        string    `json:"prompt"`
		ResultSummary string    `json:"result_summary,omitempty"`
		CreatedAt     time.Time `json:"created_at"`
	}
	views := make([]executionView, 0, len(records))
	for _, rec := range records {
		views = append(views, executionView{
			ID:            rec.ID,
			Prompt:        rec.Prompt,
			ResultSummary: rec.ResultSummary,
			CreatedAt:     rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"executions": views})
}

func (g *Gateway) handlePruneExecutions(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("older_than")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "older_than query parameter is required")
		return
	}
	cutoff, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		dur, derr := time.ParseDuration(raw)
		if derr != nil {
			writeError(w, http.StatusBadRequest, "older_than must be RFC 3339 or a duration")
			return
		}
		cutoff = time.Now().UTC().Add(-dur)
	}

	pruned, err := g.store.Prune(r.Context(), cutoff)
	if err != nil {
		g.logger.Error("pruning executions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "pruning executions failed")
		return
	}
	if g.metrics != nil {
		g.metrics.RecordsPruned.Add(float64(pruned))
	}
	writeJSON(w, http.StatusOK, map[string]any{"pruned": pruned})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
