// Package metrics exposes Prometheus instrumentation for pipeline runs.
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector(reg)
//
//	timer := metrics.NewTimer()
//	out, err := applyStep(ds)
//	collector.ObserveStep("impute", metrics.StatusSuccess, ds.NumRows(), out.NumRows(), timer.Stop())
//
// Metrics are registered on the registry handed to NewCollector, never on
// the Prometheus default registry, so several collectors can coexist in one
// process and in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name
const Namespace = "tabprep"

// Step and run outcome label values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Collector records step and run outcomes
type Collector struct {
	steps       *prometheus.CounterVec
	rowsRemoved *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	runs        *prometheus.CounterVec
}

// NewCollector creates the tabprep metrics and registers them on reg. A nil
// reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		// tabprep_steps_total{kind,status}
		steps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "steps_total",
				Help:      "Total number of pipeline steps executed",
			},
			[]string{"kind", "status"},
		),
		rowsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "rows_removed_total",
				Help:      "Total number of rows removed by pipeline steps",
			},
			[]string{"kind"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "step_duration_seconds",
				Help:      "Pipeline step duration in seconds",
				Buckets: []float64{
					0.0001, // 100μs - tiny tables
					0.001,  // 1ms
					0.01,   // 10ms
					0.1,    // 100ms - sorting large columns
					1,      // 1s
					10,     // 10s - very large tables
				},
			},
			[]string{"kind"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs by final status",
			},
			[]string{"status"},
		),
	}
}

// ObserveStep records one executed step. Rows removed are only counted for
// successful steps that shrank the dataset.
func (c *Collector) ObserveStep(kind, status string, rowsIn, rowsOut int, d time.Duration) {
	c.steps.WithLabelValues(kind, status).Inc()
	c.duration.WithLabelValues(kind).Observe(d.Seconds())
	if status == StatusSuccess && rowsOut < rowsIn {
		c.rowsRemoved.WithLabelValues(kind).Add(float64(rowsIn - rowsOut))
	}
}

// ObserveRun records the final status of a pipeline run
func (c *Collector) ObserveRun(status string) {
	c.runs.WithLabelValues(status).Inc()
}

// Timer measures the duration of a single operation
type Timer struct {
	start time.Time
}

// NewTimer creates a timer started now
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed time since the timer was created. It may be
// called more than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
