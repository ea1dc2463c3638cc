package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Order submission outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the engine's collectors.
type Metrics struct {
	registry *prometheus.Registry

	inbound     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	orders      *prometheus.CounterVec
	products    *prometheus.CounterVec
	dispatch    prometheus.Histogram
}

// NewMetrics creates and registers the collectors, plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mercato_inbound_messages_total",
			Help: "Inbound customer events by kind.",
		}, []string{"kind"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mercato_step_transitions_total",
			Help: "Conversation step transitions by flow and target step.",
		}, []string{"flow", "step"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mercato_collaborator_failures_total",
			Help: "Failed calls to external collaborators.",
		}, []string{"collaborator", "op"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mercato_orders_submitted_total",
			Help: "Order submissions by outcome.",
		}, []string{"outcome"}),
		products: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mercato_products_submitted_total",
			Help: "Merchant product submissions by outcome.",
		}, []string{"outcome"}),
		dispatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mercato_dispatch_duration_seconds",
			Help:    "Time spent handling one inbound event.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.inbound, m.transitions, m.failures, m.orders, m.products, m.dispatch,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Inbound(kind string) {
	if m == nil {
		return
	}
	m.inbound.WithLabelValues(kind).Inc()
}

func (m *Metrics) Transition(flow, step string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(flow, step).Inc()
}

func (m *Metrics) CollaboratorFailure(collaborator, op string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(collaborator, op).Inc()
}

func (m *Metrics) OrderSubmitted(outcome string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ProductSubmitted(outcome string) {
	if m == nil {
		return
	}
	m.products.WithLabelValues(outcome).Inc()
}

// ObserveDispatch records the time since start.
func (m *Metrics) ObserveDispatch(start time.Time) {
	if m == nil {
		return
	}
	m.dispatch.Observe(time.Since(start).Seconds())
}
