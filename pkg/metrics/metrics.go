// Package metrics exposes Prometheus instrumentation for the access engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spacefs"

var (
	// AccessDecisions counts access decisions by space and outcome
	// (granted/denied).
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "decisions_total",
			Help:      "Access decisions by space and outcome.",
		},
		[]string{"space", "outcome"},
	)

	// TrashOperations counts trash and restore operations by outcome.
	TrashOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trash",
			Name:      "operations_total",
			Help:      "Trash operations by type and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// TrashOrphans counts the documented inconsistency window: a physical
	// move that succeeded with a failed metadata insert.
	TrashOrphans = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trash",
			Name:      "orphaned_entries_total",
			Help:      "Trash entries moved on disk whose index row failed to persist.",
		},
	)

	// GuestSessionsSwept counts guest sessions removed by expiry sweeps.
	GuestSessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shares",
			Name:      "guest_sessions_swept_total",
			Help:      "Guest sessions removed by expiry sweeps.",
		},
	)
)
