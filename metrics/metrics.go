// Package metrics holds the Prometheus collectors of the mutation core
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeOK labels a committed mutation; failures use their error code
const OutcomeOK = "ok"

var (
	// MutationsTotal counts mutation attempts by kind, action and outcome
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_mutations_total",
			Help: "Administrative mutation attempts by resource kind, action and outcome.",
		},
		[]string{"kind", "action", "outcome"},
	)

	// MutationDuration observes how long a mutation took end to end
	MutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_mutation_duration_seconds",
			Help:    "Duration of administrative mutations including the audit write.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "action"},
	)

	// AuditEmitFailures counts audit entries lost after a committed mutation
	AuditEmitFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_audit_emit_failures_total",
			Help: "Audit entries that could not be written after the mutation committed.",
		},
	)
)
