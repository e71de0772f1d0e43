package app

import (
	"context"
	"fmt"

	"github.com/flemzord/errand/internal/task"
)

// defaultRegistry builds the handler registry with the built-in loopback
// handlers. External API wrappers (mail, source control, problem sites)
// plug in here once their credentials are configured; until then each kind
// is acknowledged with a descriptive summary so scheduling, dedup, and
// history behave end to end.
func defaultRegistry() (*task.Registry, error) {
	registry := task.NewRegistry()

	handlers := map[task.Kind]task.Handler{
		task.KindMail:    loopbackHandler("mail"),
		task.KindRepo:    loopbackHandler("repo"),
		task.KindCoding:  loopbackHandler("coding"),
		task.KindSummary: loopbackHandler("summary"),
	}

	for kind, h := range handlers {
		if err := registry.Register(kind, task.WithRetry(h, task.RetryConfig{})); err != nil {
			return nil, fmt.Errorf("app: register %s handler: %w", kind, err)
		}
	}
	return registry, nil
}

func loopbackHandler(label string) task.Handler {
	return task.HandlerFunc(func(_ context.Context, req task.Request) (task.Result, error) {
		return task.Result{Summary: fmt.Sprintf("%s: handled %q", label, truncate(req.Prompt, 80))}, nil
	})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
