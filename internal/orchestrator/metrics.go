package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the orchestrator's Prometheus instrumentation. Observability
// is an ambient concern spec.md's Non-goals never exclude (they exclude
// rollback-of-committed-migrations, parallelism, dialect translation,
// schema diffing, and snapshotting — not metrics).
type Metrics struct {
	Applied  prometheus.Counter
	Failed   prometheus.Counter
	Duration prometheus.Histogram
}

// NewMetrics constructs and registers the orchestrator's metrics against
// reg. Pass prometheus.NewRegistry() in tests to avoid collisions with the
// global default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Applied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schemagate_migrations_applied_total",
			Help: "Number of migration jobs successfully committed.",
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schemagate_migrations_failed_total",
			Help: "Number of migration jobs that failed and were rolled back.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "schemagate_migration_duration_seconds",
			Help:    "Wall-clock duration of a single migration job's apply phase.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Applied, m.Failed, m.Duration)
	}
	return m
}
