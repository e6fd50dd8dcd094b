// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks currently-open websocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_connections_active",
		Help: "Number of open websocket connections.",
	})

	// RoomsActive tracks rooms currently held by the directory.
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_rooms_active",
		Help: "Number of active rooms.",
	})

	// EventsTotal counts processed client events by event name.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_events_total",
		Help: "Client events processed, labelled by event name.",
	}, []string{"event"})

	// EventsDropped counts events discarded for failing the identity check
	// or arriving malformed.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_events_dropped_total",
		Help: "Client events silently dropped, labelled by reason.",
	}, []string{"reason"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
