package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "educhat_websocket_connections_active",
			Help: "Number of currently open websocket connections",
		},
	)

	WebSocketConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "educhat_websocket_connections_total",
			Help: "Total number of websocket connections accepted",
		},
	)

	MessagesPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "educhat_messages_persisted_total",
			Help: "Total number of chat messages written to the store",
		},
	)

	EventsDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educhat_events_delivered_total",
			Help: "Realtime events delivered to connections",
		},
		[]string{"event"},
	)

	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educhat_events_dropped_total",
			Help: "Realtime events dropped because a connection could not accept them",
		},
		[]string{"event"},
	)
)
