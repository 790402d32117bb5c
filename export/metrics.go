package export

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts exports and their durations.
type Metrics struct {
	exports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rejected prometheus.Counter
}

// NewMetrics creates unregistered collectors. Call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decal_exports_total",
				Help: "Total number of export attempts",
			},
			[]string{"format", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "decal_export_duration_seconds",
				Help:    "Duration of export compositing and encoding",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		rejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "decal_export_busy_rejections_total",
				Help: "Exports rejected because another export was in flight",
			},
		),
	}
}

// Register registers the collectors with r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.exports, m.duration, m.rejected} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observe(format Format, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.exports.WithLabelValues(string(format), outcome).Inc()
	m.duration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
}

func (m *Metrics) busy() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}
