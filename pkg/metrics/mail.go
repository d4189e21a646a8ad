package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MailMetrics counts outbound email deliveries by result.
type MailMetrics struct {
	deliveries *prometheus.CounterVec
	queued     prometheus.Gauge
}

// NewMailMetrics registers the mail metrics on the provided registerer.
func NewMailMetrics(reg prometheus.Registerer) *MailMetrics {
	if reg == nil {
		return &MailMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_deliveries_total",
		Help: "Email deliveries by result.",
	}, []string{"result"})
	queued := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "email_queue_depth",
		Help: "Messages waiting in the email queue.",
	})
	reg.MustRegister(deliveries, queued)
	return &MailMetrics{deliveries: deliveries, queued: queued}
}

// IncResult increments the delivery counter for result.
func (m *MailMetrics) IncResult(result string) {
	if m == nil || m.deliveries == nil {
		return
	}
	m.deliveries.WithLabelValues(normalizeLabel(result)).Inc()
}

// SetQueueDepth reports the current number of queued messages.
func (m *MailMetrics) SetQueueDepth(depth int) {
	if m == nil || m.queued == nil {
		return
	}
	m.queued.Set(float64(depth))
}
