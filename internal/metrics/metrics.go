// Package metrics exposes conversion counters on the default Prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidconv_conversions_total",
		Help: "Finished conversions by target format and outcome",
	}, []string{"format", "outcome"}) // outcome=completed|failed|cancelled

	conversionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidconv_conversion_duration_seconds",
		Help:    "Wall time of finished conversions",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
	}, []string{"format"})

	jobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidconv_jobs_active",
		Help: "Conversions currently registered (pending or processing)",
	})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidconv_batches_total",
		Help: "Finished batches by outcome",
	}, []string{"outcome"}) // outcome=success|partial|failed|aborted

	probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidconv_probes_total",
		Help: "ffprobe invocations by outcome",
	}, []string{"outcome"})
)

// JobStarted marks a job as registered.
func JobStarted() { jobsActive.Inc() }

// JobFinished records a terminal job.
func JobFinished(format, outcome string, elapsed time.Duration) {
	jobsActive.Dec()
	conversionsTotal.WithLabelValues(format, outcome).Inc()
	conversionDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// BatchFinished records a batch outcome.
func BatchFinished(outcome string) {
	batchesTotal.WithLabelValues(outcome).Inc()
}

// Probe records an ffprobe outcome.
func Probe(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	probesTotal.WithLabelValues(outcome).Inc()
}
