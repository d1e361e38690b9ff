package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Outcome labels shared by remote call counters.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
)

// Metrics owns a private registry so tests can build as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	RemoteCalls     *prometheus.CounterVec
	RemoteLatency   *prometheus.HistogramVec
	FlowTransitions *prometheus.CounterVec
	SessionsIssued  prometheus.Counter
	TicketsOpened   prometheus.Counter
	OrdersPlaced    prometheus.Counter
}

// New registers the storefront collectors plus the Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RemoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_calls_total",
			Help:      "Calls made to the remote identity service by action and outcome.",
		}, []string{"action", "outcome"}),
		RemoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "identity_call_duration_seconds",
			Help:      "Latency of remote identity service calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		FlowTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_steps_total",
			Help:      "Verification flow steps entered.",
		}, []string{"step"}),
		SessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_issued_total",
			Help:      "Sessions written to the authenticated-user cache.",
		}),
		TicketsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "support_tickets_opened_total",
			Help:      "Support tickets created.",
		}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Checkout orders successfully paid.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RemoteCalls,
		m.RemoteLatency,
		m.FlowTransitions,
		m.SessionsIssued,
		m.TicketsOpened,
		m.OrdersPlaced,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRemoteCall records a single identity-service call. Safe on a nil receiver.
func (m *Metrics) ObserveRemoteCall(action, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(action, outcome).Inc()
	m.RemoteLatency.WithLabelValues(action).Observe(seconds)
}

// ObserveStep counts entry into a verification step. Safe on a nil receiver.
func (m *Metrics) ObserveStep(step string) {
	if m == nil {
		return
	}
	m.FlowTransitions.WithLabelValues(step).Inc()
}

// IncSessions, IncTickets and IncOrders are nil-safe counter helpers.
func (m *Metrics) IncSessions() {
	if m != nil {
		m.SessionsIssued.Inc()
	}
}

func (m *Metrics) IncTickets() {
	if m != nil {
		m.TicketsOpened.Inc()
	}
}

func (m *Metrics) IncOrders() {
	if m != nil {
		m.OrdersPlaced.Inc()
	}
}
