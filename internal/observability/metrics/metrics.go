package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics exposes engine counters on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	commentsProcessed  prometheus.Counter
	automationOutcomes *prometheus.CounterVec
	actionsExecuted    *prometheus.CounterVec
	rateLimitDenials   *prometheus.CounterVec
	poolExhaustions    *prometheus.CounterVec
	deferredEnqueued   prometheus.Counter
	deferredDelivered  *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		commentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_comments_processed_total",
			Help: "Normalized comment events accepted by the orchestrator.",
		}),
		automationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_automation_outcomes_total",
			Help: "Terminal per-automation statuses written to the ledger.",
		}, []string{"status"}),
		actionsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_actions_total",
			Help: "Individual action attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		rateLimitDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_rate_limit_denials_total",
			Help: "Actions skipped because a per-user ceiling was reached.",
		}, []string{"limit_type"}),
		poolExhaustions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_discount_pool_exhaustions_total",
			Help: "Discount allocations that found the pool empty.",
		}, []string{"pool_type"}),
		deferredEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_deferred_messages_enqueued_total",
			Help: "Direct messages handed to the deferred delivery queue.",
		}),
		deferredDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_deferred_messages_delivered_total",
			Help: "Deferred direct message delivery attempts by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.commentsProcessed,
		m.automationOutcomes,
		m.actionsExecuted,
		m.rateLimitDenials,
		m.poolExhaustions,
		m.deferredEnqueued,
		m.deferredDelivered,
	)

	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncCommentProcessed() {
	if m == nil {
		return
	}
	m.commentsProcessed.Inc()
}

func (m *Metrics) IncAutomationOutcome(status string) {
	if m == nil {
		return
	}
	m.automationOutcomes.WithLabelValues(status).Inc()
}

func (m *Metrics) IncAction(kind, outcome string) {
	if m == nil {
		return
	}
	m.actionsExecuted.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncRateLimitDenial(limitType string) {
	if m == nil {
		return
	}
	m.rateLimitDenials.WithLabelValues(limitType).Inc()
}

func (m *Metrics) IncPoolExhaustion(poolType string) {
	if m == nil {
		return
	}
	m.poolExhaustions.WithLabelValues(poolType).Inc()
}

func (m *Metrics) IncDeferredEnqueued() {
	if m == nil {
		return
	}
	m.deferredEnqueued.Inc()
}

func (m *Metrics) IncDeferredDelivered(outcome string) {
	if m == nil {
		return
	}
	m.deferredDelivered.WithLabelValues(outcome).Inc()
}
