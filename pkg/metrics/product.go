package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProductLookupMetrics records upstream product lookups.
type ProductLookupMetrics struct {
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewProductLookupMetrics registers lookup metrics on the provided registerer.
func NewProductLookupMetrics(reg prometheus.Registerer) *ProductLookupMetrics {
	if reg == nil {
		return &ProductLookupMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_lookup_total",
		Help: "Product lookups by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "product_lookup_duration_seconds",
		Help:    "Latency of upstream product lookups in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(outcomes, duration)
	return &ProductLookupMetrics{outcomes: outcomes, duration: duration}
}

// IncOutcome increments the counter for the given outcome.
func (p *ProductLookupMetrics) IncOutcome(outcome string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveDuration records an upstream round trip.
func (p *ProductLookupMetrics) ObserveDuration(d time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.Observe(d.Seconds())
}
