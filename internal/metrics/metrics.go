// Package metrics exposes Prometheus collectors for the updater.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsTotal            *prometheus.CounterVec
	publishBytes         prometheus.Gauge
	fetchDurationSeconds prometheus.Histogram
	fetchEntries         prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "malbox_runs_total",
				Help: "Total pipeline runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		publishBytes = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "malbox_publish_bytes",
				Help: "Size in bytes of the most recently published snapshot.",
			},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "malbox_fetch_duration_seconds",
				Help:    "Histogram of list fetch latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)

		fetchEntries = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "malbox_fetch_entries",
				Help: "Number of entries returned by the most recent fetch.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun increments the run counter for the given outcome.
func ObserveRun(outcome string) {
	if runsTotal == nil {
		return
	}
	runsTotal.WithLabelValues(outcome).Inc()
}

// ObservePublish records the size of a published snapshot.
func ObservePublish(bytes int) {
	if publishBytes == nil {
		return
	}
	publishBytes.Set(float64(bytes))
}

// ObserveFetch records a completed list fetch.
func ObserveFetch(duration time.Duration, entries int) {
	if fetchDurationSeconds == nil {
		return
	}
	fetchDurationSeconds.Observe(duration.Seconds())
	fetchEntries.Set(float64(entries))
}
