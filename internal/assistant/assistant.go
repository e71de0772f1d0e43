// Package assistant orchestrates prompt handling: duplicate check, intent
// classification, schedule parsing, and dispatch to task handlers either
// inline or via the runner.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/flemzord/errand/internal/dedup"
	"github.com/flemzord/errand/internal/metrics"
	"github.com/flemzord/errand/internal/runner"
	"github.com/flemzord/errand/internal/schedule"
	"github.com/flemzord/errand/internal/task"
)

// Sentinel errors for prompt handling.
var (
	ErrEmptyPrompt = errors.New("assistant: empty prompt")
	ErrNoHandler   = errors.New("assistant: no handler for task kind")
)

// Response describes what happened to a submitted prompt.
type Response struct {
	// Duplicate is true when the prompt was skipped as a semantic duplicate.
	Duplicate  bool    `json:"duplicate"`
	Similarity float64 `json:"similarity,omitempty"`
	// MatchedPrompt is the earlier prompt this one duplicated.
	MatchedPrompt string `json:"matched_prompt,omitempty"`

	Kind     task.Kind `json:"kind,omitempty"`
	Schedule string    `json:"schedule,omitempty"`

	// Summary is the handler outcome for immediate runs.
	Summary string `json:"summary,omitempty"`

	// TaskID identifies a scheduled (non-immediate) run in the runner.
	TaskID string `json:"task_id,omitempty"`
}

// Assistant wires the duplicate guard, handler registry, and runner.
type Assistant struct {
	guard    *dedup.Guard
	registry *task.Registry
	sched    *runner.Scheduler
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates an assistant. All collaborators are required except metrics,
// which may be nil when the gateway runs without a metrics endpoint.
func New(guard *dedup.Guard, registry *task.Registry, sched *runner.Scheduler, m *metrics.Metrics, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		guard:    guard,
		registry: registry,
		sched:    sched,
		metrics:  m,
		logger:   logger,
	}
}

// HandlePrompt processes one prompt end to end: refuse semantic duplicates,
// classify the task kind, parse the schedule, then either run the handler
// inline (Immediate) or hand it to the runner. Executions are recorded only
// after the handler actually ran — a duplicate hit writes nothing.
func (a *Assistant) HandlePrompt(ctx context.Context, prompt string) (Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return Response{}, ErrEmptyPrompt
	}

	if a.metrics != nil {
		a.metrics.PromptsTotal.Inc()
	}

	check, err := a.guard.Check(ctx, prompt)
	if err != nil {
		return Response{}, err
	}
	if check.IsDuplicate {
		if a.metrics != nil {
			a.metrics.DuplicatesTotal.Inc()
		}
		a.logger.Info("assistant: duplicate prompt skipped",
			"similarity", check.Similarity,
			"matched", check.Matched.Prompt,
		)
		return Response{
			Duplicate:     true,
			Similarity:    check.Similarity,
			MatchedPrompt: check.Matched.Prompt,
		}, nil
	}

	kind := task.Classify(prompt)
	desc := schedule.Parse(prompt)
	if a.metrics != nil {
		a.metrics.ParsedTotal.WithLabelValues(desc.Kind.String()).Inc()
	}

	handler, ok := a.registry.Lookup(kind)
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrNoHandler, kind)
	}

	resp := Response{Kind: kind, Schedule: desc.String()}

	if desc.Kind == schedule.Immediate {
		summary, err := a.execute(ctx, handler, kind, prompt)
		if err != nil {
			return Response{}, err
		}
		resp.Summary = summary
		return resp, nil
	}

	taskID := fmt.Sprintf("%s-%s", kind, uuid.NewString()[:8])
	err = a.sched.Submit(taskID, desc, func(ctx context.Context) error {
		_, err := a.execute(ctx, handler, kind, prompt)
		return err
	})
	if err != nil {
		return Response{}, fmt.Errorf("assistant: schedule task: %w", err)
	}

	resp.TaskID = taskID
	a.logger.Info("assistant: prompt scheduled",
		"task", taskID, "kind", kind, "schedule", desc.String())
	return resp, nil
}

// execute runs the handler and records the execution on success.
func (a *Assistant) execute(ctx context.Context, h task.Handler, kind task.Kind, prompt string) (string, error) {
	result, err := h.Handle(ctx, task.Request{Kind: kind, Prompt: prompt})
	if err != nil {
		if a.metrics != nil {
			a.metrics.TaskFailuresTotal.WithLabelValues(string(kind)).Inc()
		}
		return "", fmt.Errorf("assistant: %s task failed: %w", kind, err)
	}

	if _, err := a.guard.StoreExecution(ctx, prompt, result.Summary); err != nil {
		return "", err
	}

	return result.Summary, nil
}
