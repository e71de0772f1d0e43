// Package metrics exposes prometheus counters for prompt handling.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the assistant's counters on a private registry, so tests
// can create independent instances without collisions.
type Metrics struct {
	registry *prometheus.Registry

	// PromptsTotal counts prompts received, before any filtering.
	PromptsTotal prometheus.Counter

	// DuplicatesTotal counts prompts rejected by the duplicate guard.
	DuplicatesTotal prometheus.Counter

	// ParsedTotal counts parse outcomes by schedule kind.
	ParsedTotal *prometheus.CounterVec

	// TaskFailuresTotal counts handler failures by task kind.
	TaskFailuresTotal *prometheus.CounterVec

	// EmbedFailuresTotal counts embedding-provider failures (the guard
	// fails open on these, so they are invisible without a counter).
	EmbedFailuresTotal prometheus.Counter

	// RecordsPruned counts execution records removed by retention pruning.
	RecordsPruned prometheus.Counter
}

// New creates a metrics set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PromptsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errand_prompts_total",
			Help: "Prompts received.",
		}),
		DuplicatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errand_duplicates_total",
			Help: "Prompts skipped as semantic duplicates.",
		}),
		ParsedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "errand_parsed_total",
			Help: "Parse outcomes by schedule kind.",
		}, []string{"kind"}),
		TaskFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "errand_task_failures_total",
			Help: "Task handler failures by task kind.",
		}, []string{"kind"}),
		EmbedFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errand_embed_failures_total",
			Help: "Embedding provider failures.",
		}),
		RecordsPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "errand_records_pruned_total",
			Help: "Execution records removed by retention pruning.",
		}),
	}
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
