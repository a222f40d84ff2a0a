// Package metrics exposes the engine's operational counters: decision
// volume, membership lookup failures, and audit delivery health.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Audit failure stages.
const (
	StageSink  = "sink"
	StageSpool = "spool"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	decisionsTotal     *prometheus.CounterVec
	membershipFailures prometheus.Counter
	auditWriteFailures *prometheus.CounterVec
	auditSpooled       prometheus.Counter
	auditReplayed      prometheus.Counter
	auditQueueDepth    prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rowguard_decisions_total",
				Help: "Authorization decisions by resource, operation, outcome, and reason",
			},
			[]string{"resource", "operation", "outcome", "reason"},
		),

		membershipFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rowguard_membership_lookup_failures_total",
				Help: "Membership lookups that failed and were treated as deny",
			},
		),

		auditWriteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rowguard_audit_write_failures_total",
				Help: "Audit entry writes that failed, by delivery stage",
			},
			[]string{"stage"},
		),

		auditSpooled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rowguard_audit_spooled_entries_total",
				Help: "Audit entries diverted to the local fallback spool",
			},
		),

		auditReplayed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rowguard_audit_replayed_entries_total",
				Help: "Spooled audit entries successfully redelivered to the sink",
			},
		),

		auditQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rowguard_audit_queue_depth",
				Help: "Entries currently waiting in the audit delivery queue",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.decisionsTotal,
		m.membershipFailures,
		m.auditWriteFailures,
		m.auditSpooled,
		m.auditReplayed,
		m.auditQueueDepth,
	)

	return m
}

// RecordDecision counts one evaluation result.
func (m *Metrics) RecordDecision(resource, operation, outcome, reason string) {
	m.decisionsTotal.WithLabelValues(resource, operation, outcome, reason).Inc()
}

// RecordMembershipFailure counts one failed membership lookup.
func (m *Metrics) RecordMembershipFailure() {
	m.membershipFailures.Inc()
}

// RecordAuditWriteFailure counts one failed audit write at the given stage.
func (m *Metrics) RecordAuditWriteFailure(stage string) {
	m.auditWriteFailures.WithLabelValues(stage).Inc()
}

// RecordAuditSpooled counts one entry diverted to the fallback spool.
func (m *Metrics) RecordAuditSpooled() {
	m.auditSpooled.Inc()
}

// RecordAuditReplayed counts one spooled entry redelivered to the sink.
func (m *Metrics) RecordAuditReplayed() {
	m.auditReplayed.Inc()
}

// SetAuditQueueDepth reports the current audit queue depth.
func (m *Metrics) SetAuditQueueDepth(n int) {
	m.auditQueueDepth.Set(float64(n))
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
