package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/KaramelBytes/agroinsight-cli/internal/diagnostic"
)

// Metrics tracks analysis throughput and diagnostic outcomes.
type Metrics struct {
	analyses    prometheus.Counter
	diagnostics *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agroinsight_analyses_total",
			Help: "Total number of datasets analyzed",
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agroinsight_diagnostic_indicators_total",
			Help: "Numeric variables classified by diagnostics, by status band",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agroinsight_analysis_duration_seconds",
			Help:    "Time spent analyzing one dataset",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.analyses)
		reg.MustRegister(m.diagnostics)
		reg.MustRegister(m.duration)
	}
	return m
}

func (m *Metrics) observeAnalysis(seconds float64) {
	m.analyses.Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) observeDiagnostic(d *diagnostic.Diagnostico) {
	for status, n := range d.StatusCounts() {
		m.diagnostics.WithLabelValues(string(status)).Add(float64(n))
	}
}
