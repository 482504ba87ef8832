package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the screening engine. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	AnswersRecorded    prometheus.Counter
	SessionsStarted    prometheus.Counter
	RuleMatches        *prometheus.CounterVec
	DiagnosesCreated   *prometheus.CounterVec
	InvalidRules       prometheus.Counter
	CatalogLoads       *prometheus.CounterVec
	CatalogRules       prometheus.Gauge
	EvaluationDuration prometheus.Histogram
	ActiveSessions     prometheus.Gauge
}

// New registers the screening metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg. Tests pass a fresh
// registry so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AnswersRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "neuroease_answers_recorded_total",
			Help: "Total number of answers accepted into a session",
		}),
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "neuroease_sessions_started_total",
			Help: "Total number of screening sessions started",
		}),
		RuleMatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neuroease_rule_matches_total",
			Help: "Rule matches observed after an answer, by rule code",
		}, []string{"code"}),
		DiagnosesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neuroease_diagnoses_created_total",
			Help: "Diagnoses persisted, by rule code",
		}, []string{"code"}),
		InvalidRules: f.NewCounter(prometheus.CounterOpts{
			Name: "neuroease_invalid_rules_skipped_total",
			Help: "Rules skipped during evaluation because they failed validation",
		}),
		CatalogLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neuroease_catalog_loads_total",
			Help: "Rule catalog load attempts by outcome",
		}, []string{"outcome"}),
		CatalogRules: f.NewGauge(prometheus.GaugeOpts{
			Name: "neuroease_catalog_rules",
			Help: "Number of rules in the current catalog snapshot",
		}),
		EvaluationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "neuroease_evaluation_duration_seconds",
			Help:    "Duration of rule evaluation for one submitted answer",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "neuroease_active_sessions",
			Help: "Sessions currently held by the in-memory accumulator",
		}),
	}
}

func (m *Metrics) IncrementAnswersRecorded() {
	if m == nil {
		return
	}
	m.AnswersRecorded.Inc()
}

func (m *Metrics) IncrementSessionsStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

func (m *Metrics) IncrementRuleMatch(code string) {
	if m == nil {
		return
	}
	m.RuleMatches.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementDiagnosisCreated(code string) {
	if m == nil {
		return
	}
	m.DiagnosesCreated.WithLabelValues(code).Inc()
}

func (m *Metrics) AddInvalidRules(n int) {
	if m == nil || n == 0 {
		return
	}
	m.InvalidRules.Add(float64(n))
}

// RecordCatalogLoad counts a load attempt. rules is ignored on failure.
func (m *Metrics) RecordCatalogLoad(ok bool, rules int) {
	if m == nil {
		return
	}
	if !ok {
		m.CatalogLoads.WithLabelValues("failure").Inc()
		return
	}
	m.CatalogLoads.WithLabelValues("success").Inc()
	m.CatalogRules.Set(float64(rules))
}

// ObserveEvaluation records evaluation latency.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveEvaluation(start time.Time) {
	if m == nil {
		return
	}
	m.EvaluationDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
