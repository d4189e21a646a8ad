package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart lifecycle events by kind.
type CartMetrics struct {
	events *prometheus.CounterVec
}

// NewCartMetrics registers the cart event counter on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_events_total",
		Help: "Cart lifecycle events emitted, by event kind.",
	}, []string{"event"})
	reg.MustRegister(events)
	return &CartMetrics{events: events}
}

// IncEvent increments the counter for the named event.
func (c *CartMetrics) IncEvent(event string) {
	if c == nil || c.events == nil {
		return
	}
	c.events.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
