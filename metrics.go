package bridge

import "github.com/prometheus/client_golang/prometheus"

var (
	sendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_sends_total", Help: "Outbound method invocations by delivery outcome"},
		[]string{"method", "outcome"},
	)
	settledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_settled_total", Help: "Correlated calls settled by status"},
		[]string{"method", "status"},
	)
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_events_total", Help: "Inbound events by type"},
		[]string{"type"},
	)
	droppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_dropped_events_total", Help: "Result-shaped events dropped by the correlation pass"},
		[]string{"reason"},
	)
	listenerPanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bridge_listener_panics_total", Help: "Listener callbacks recovered from panic"},
	)
)

// RegisterMetrics registers the engine metrics with the given registry.
// Metrics are collected regardless; registration only exposes them.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(sendsTotal, settledTotal, eventsTotal, droppedTotal, listenerPanicsTotal)
}
