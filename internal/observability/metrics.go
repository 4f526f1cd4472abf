// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Instruction metrics
	InstructionsTotal  *prometheus.CounterVec
	InstructionErrors  *prometheus.CounterVec
	InstructionLatency *prometheus.HistogramVec
	VersionConflicts   *prometheus.CounterVec

	// Ledger metrics
	DuelsCreated     prometheus.Counter
	DuelsResolved    prometheus.Counter
	SupportPlaced    prometheus.Counter
	LamportsEscrowed prometheus.Counter
	LamportsPaidOut  prometheus.Counter

	// Stream metrics
	StreamSubscribers prometheus.Gauge
	StreamDropped     prometheus.Counter
	EventsPublished   *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastCommitTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "duel_crowd_bets"
	}

	return &Metrics{
		// Instruction metrics
		InstructionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "instructions_total",
			Help:      "Total number of instructions applied by kind and status",
		}, []string{"instruction", "status"}),
		InstructionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "instruction_errors_total",
			Help:      "Total number of rejected instructions by kind and reason",
		}, []string{"instruction", "reason"}),
		InstructionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "instruction_latency_seconds",
			Help:      "Instruction processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"instruction"}),
		VersionConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "version_conflicts_total",
			Help:      "Total number of optimistic-lock conflicts by instruction",
		}, []string{"instruction"}),

		// Ledger metrics
		DuelsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "duels_created_total",
			Help:      "Total number of duels created",
		}),
		DuelsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "duels_resolved_total",
			Help:      "Total number of duels resolved by an arbiter",
		}),
		SupportPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "support_placed_total",
			Help:      "Total number of crowd support wagers placed",
		}),
		LamportsEscrowed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "lamports_escrowed_total",
			Help:      "Total lamports received into duel escrows",
		}),
		LamportsPaidOut: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "lamports_paid_out_total",
			Help:      "Total lamports paid out of duel escrows",
		}),

		// Stream metrics
		StreamSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "subscribers",
			Help:      "Current number of connected WebSocket subscribers",
		}),
		StreamDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "dropped_total",
			Help:      "Total number of events dropped on slow subscribers",
		}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "events_published_total",
			Help:      "Total number of ledger events published by kind",
		}, []string{"kind"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastCommitTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_commit_timestamp",
			Help:      "Unix timestamp of the last committed instruction",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordInstruction records an applied or rejected instruction.
func RecordInstruction(instruction string, seconds float64, err error) {
	DefaultMetrics.InstructionLatency.WithLabelValues(instruction).Observe(seconds)
	if err != nil {
		DefaultMetrics.InstructionsTotal.WithLabelValues(instruction, "rejected").Inc()
		return
	}
	DefaultMetrics.InstructionsTotal.WithLabelValues(instruction, "ok").Inc()
}

// RecordInstructionError records a rejection reason.
func RecordInstructionError(instruction, reason string) {
	DefaultMetrics.InstructionErrors.WithLabelValues(instruction, reason).Inc()
}

// RecordVersionConflict records an optimistic-lock conflict.
func RecordVersionConflict(instruction string) {
	DefaultMetrics.VersionConflicts.WithLabelValues(instruction).Inc()
}

// RecordEventPublished increments the published-event counter for a kind.
func RecordEventPublished(kind string) {
	DefaultMetrics.EventsPublished.WithLabelValues(kind).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
