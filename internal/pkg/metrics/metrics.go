// Package metrics exposes lifecycle counters and gauges to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wfh"

// Recorder receives lifecycle events from the services.
type Recorder interface {
	Submitted(kind string, occurrences int)
	TransitionAccepted(action string, affected int)
	TransitionFailed(action string, reason string)
	DelegationTransition(action string)
	SetStatusCounts(counts map[string]int64)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Submitted(string, int)            {}
func (Nop) TransitionAccepted(string, int)   {}
func (Nop) TransitionFailed(string, string)  {}
func (Nop) DelegationTransition(string)      {}
func (Nop) SetStatusCounts(map[string]int64) {}

// Metrics is a Recorder backed by its own Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	submissions   *prometheus.CounterVec
	occurrences   *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	failures      *prometheus.CounterVec
	delegations   *prometheus.CounterVec
	statusCurrent *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Accepted arrangement submissions by kind (ad_hoc, recurring).",
		}, []string{"kind"}),
		occurrences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrangements_created_total",
			Help:      "Arrangements created by submissions.",
		}, []string{"kind"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Arrangement status changes applied, by action.",
		}, []string{"action"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transition_failures_total",
			Help:      "Rejected transition commands by action and reason.",
		}, []string{"action", "reason"}),
		delegations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegation_transitions_total",
			Help:      "Delegation lifecycle changes by action.",
		}, []string{"action"}),
		statusCurrent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arrangements",
			Help:      "Arrangements per status at the last refresh.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.submissions,
		m.occurrences,
		m.transitions,
		m.failures,
		m.delegations,
		m.statusCurrent,
	)
	return m
}

func (m *Metrics) Submitted(kind string, occurrences int) {
	m.submissions.WithLabelValues(kind).Inc()
	m.occurrences.WithLabelValues(kind).Add(float64(occurrences))
}

func (m *Metrics) TransitionAccepted(action string, affected int) {
	m.transitions.WithLabelValues(action).Add(float64(affected))
}

func (m *Metrics) TransitionFailed(action string, reason string) {
	m.failures.WithLabelValues(action, reason).Inc()
}

func (m *Metrics) DelegationTransition(action string) {
	m.delegations.WithLabelValues(action).Inc()
}

// SetStatusCounts replaces the per-status gauge values.
func (m *Metrics) SetStatusCounts(counts map[string]int64) {
	m.statusCurrent.Reset()
	for status, n := range counts {
		m.statusCurrent.WithLabelValues(status).Set(float64(n))
	}
}

// Registry is exposed for tests and additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
