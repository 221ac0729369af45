package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the relay's Prometheus collectors.
// All methods are safe on a nil receiver so tests can skip metrics.
type Metrics struct {
	EventsTotal     *prometheus.CounterVec
	SendsTotal      *prometheus.CounterVec
	PendingSessions prometheus.GaugeFunc
}

// NewMetrics registers the collectors on registry. pending reports the
// current number of open reply sessions.
func NewMetrics(registry *prometheus.Registry, pending func() int) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relaybot_events_total",
				Help: "Inbound events by route",
			},
			[]string{"route"}, // start, forward, open_reply, send_reply, ignored
		),
		SendsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relaybot_sends_total",
				Help: "Outbound Bot API sends by content kind and status",
			},
			[]string{"kind", "status"},
		),
		PendingSessions: factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "relaybot_pending_sessions",
				Help: "Reply sessions waiting for an administrator message",
			},
			func() float64 { return float64(pending()) },
		),
	}
}

func (m *Metrics) RecordEvent(route string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(route).Inc()
}

func (m *Metrics) RecordSend(kind string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SendsTotal.WithLabelValues(kind, status).Inc()
}
