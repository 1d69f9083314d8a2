package workflow

import (
	"encoding/hex"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zeebo/xxh3"
)

// Metric definitions with appropriate labels.
var (
	// attemptsTotal tracks transition attempts by workflow, edge, and outcome.
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_attempts_total",
		Help: "Total number of transition attempts by workflow, from_state, to_state, and outcome",
	}, []string{"workflow", "from_state", "to_state", "outcome", "entity_id_hash"})

	// guardDenialsTotal tracks guard denials by denying guard.
	guardDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_guard_denials_total",
		Help: "Total number of guard denials by workflow, guard, from_state, and to_state",
	}, []string{"workflow", "guard", "from_state", "to_state"})

	// attemptDuration tracks end-to-end attempt latency, guards included.
	attemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workflow_attempt_duration_seconds",
		Help:    "Duration of transition attempts by workflow and outcome",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"workflow", "outcome"})

	// sinkFailuresTotal tracks audit sink failures after commit.
	sinkFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_audit_sink_failures_total",
		Help: "Total number of audit sink failures after a committed transition",
	}, []string{"workflow"})
)

// hashEntityID hashes an entity identifier for use as a metric label, so
// raw business identifiers never reach the metrics backend.
func hashEntityID(id string) string {
	if id == "" {
		return "unknown"
	}

	sum := xxh3.HashString128(id).Bytes()

	return hex.EncodeToString(sum[:4])
}
