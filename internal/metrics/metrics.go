// Package metrics holds the Prometheus collectors exported by the ledger service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the ledger's collectors. A nil *Metrics is valid and records
// nothing, so packages can be used without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	BalanceRecomputes   prometheus.Counter
	RecomputeDuration   prometheus.Histogram
	PaymentTransitions  *prometheus.CounterVec
	TransitionConflicts prometheus.Counter
	Invalidations       prometheus.Counter
	ActiveWatchers      prometheus.Gauge
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BalanceRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "friend_view_recomputes_total",
			Help:      "Number of unified friend view computations.",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "friend_view_recompute_seconds",
			Help:      "Time spent loading facts and computing a friend view.",
			Buckets:   prometheus.DefBuckets,
		}),
		PaymentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "payment_transitions_total",
			Help:      "Payment lifecycle transitions by kind.",
		}, []string{"kind"}),
		TransitionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "payment_transition_conflicts_total",
			Help:      "Transitions refused because another one was in flight for the same pair.",
		}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "watch_invalidations_total",
			Help:      "Batched invalidations pushed to friend balance watchers.",
		}),
		ActiveWatchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger",
			Name:      "active_watchers",
			Help:      "Open friend balance streams.",
		}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.BalanceRecomputes,
		m.RecomputeDuration,
		m.PaymentTransitions,
		m.TransitionConflicts,
		m.Invalidations,
		m.ActiveWatchers,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRecompute records one friend view computation that took seconds.
func (m *Metrics) ObserveRecompute(seconds float64) {
	if m == nil {
		return
	}
	m.BalanceRecomputes.Inc()
	m.RecomputeDuration.Observe(seconds)
}

// Transition counts a payment transition of kind.
func (m *Metrics) Transition(kind string) {
	if m == nil {
		return
	}
	m.PaymentTransitions.WithLabelValues(kind).Inc()
}

// Conflict counts a transition refused by the in-flight guard.
func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.TransitionConflicts.Inc()
}

// Invalidated counts one batched invalidation pushed to a watcher.
func (m *Metrics) Invalidated() {
	if m == nil {
		return
	}
	m.Invalidations.Inc()
}

// WatcherStarted and WatcherStopped track open friend balance streams.
func (m *Metrics) WatcherStarted() {
	if m == nil {
		return
	}
	m.ActiveWatchers.Inc()
}

func (m *Metrics) WatcherStopped() {
	if m == nil {
		return
	}
	m.ActiveWatchers.Dec()
}
