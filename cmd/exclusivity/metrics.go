package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexshd/exclusivity"
)

// runMetrics mirrors run progress into a private Prometheus registry, written
// out as a node_exporter textfile when the run ends.
type runMetrics struct {
	registry    *prometheus.Registry
	trials      prometheus.Counter
	failures    *prometheus.CounterVec
	callSeconds *prometheus.HistogramVec
	population  prometheus.Gauge
}

func newRunMetrics() *runMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &runMetrics{
		registry: reg,
		trials: factory.NewCounter(prometheus.CounterOpts{
			Name: "exclusivity_trials_total",
			Help: "Completed trials.",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exclusivity_algorithm_failures_total",
			Help: "Algorithm runs that failed.",
		}, []string{"algorithm"}),
		callSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exclusivity_algorithm_call_seconds",
			Help:    "Mean duration of one algorithm call per trial.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"algorithm"}),
		population: factory.NewGauge(prometheus.GaugeOpts{
			Name: "exclusivity_population",
			Help: "Population size whose trials are being generated.",
		}),
	}
}

func (m *runMetrics) PopulationStarted(population int) {
	m.population.Set(float64(population))
}

func (m *runMetrics) TrialCompleted(result exclusivity.TrialResult) {
	m.trials.Inc()
	for _, r := range result.Results {
		if !r.OK() {
			m.failures.WithLabelValues(r.Algorithm()).Inc()
			continue
		}
		m.callSeconds.WithLabelValues(r.Algorithm()).Observe(r.PerCall(result.Trial.Iterations).Seconds())
	}
}

// WriteTextfile writes every metric to path atomically.
func (m *runMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
