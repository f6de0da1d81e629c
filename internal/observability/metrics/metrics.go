// Package metrics exposes application-level prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Metrics counts lifecycle mutations and report reads.
type Metrics struct {
	TimersStarted  prometheus.Counter
	TimersStopped  prometheus.Counter
	StartConflicts prometheus.Counter
	EntriesCreated prometheus.Counter
	EntriesDeleted prometheus.Counter
	ReportQueries  *prometheus.CounterVec
}

// Result bundles the registry with the instruments registered on it.
type Result struct {
	fx.Out

	Metrics  *Metrics
	Registry *prometheus.Registry
}

// New registers all instruments on a fresh registry.
func New() Result {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		TimersStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thearq_timers_started_total",
			Help: "Live timers started.",
		}),
		TimersStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thearq_timers_stopped_total",
			Help: "Live timers stopped.",
		}),
		StartConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thearq_timer_start_conflicts_total",
			Help: "Timer starts rejected because one was already running.",
		}),
		EntriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thearq_entries_created_total",
			Help: "Time entries created (manual and timer).",
		}),
		EntriesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thearq_entries_deleted_total",
			Help: "Time entries deleted.",
		}),
		ReportQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thearq_report_queries_total",
			Help: "Report reads by kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		m.TimersStarted,
		m.TimersStopped,
		m.StartConflicts,
		m.EntriesCreated,
		m.EntriesDeleted,
		m.ReportQueries,
	)

	return Result{Metrics: m, Registry: registry}
}

// Module wires the prometheus registry and instruments.
var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
