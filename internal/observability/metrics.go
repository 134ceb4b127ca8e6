package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the station export.
type Metrics struct {
	RegionsProcessed   *prometheus.CounterVec // labels: kind={state,country}, outcome={ok,failed}
	StationsNormalized prometheus.Counter
	RowsExported       prometheus.Gauge
	ExportRunning      prometheus.Gauge
	LastExportTime     prometheus.Gauge

	// Upstream registry metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,status_error,transport_error,malformed}
	FetchDuration prometheus.Histogram
	FetchStations prometheus.Histogram

	// Kafka publishing metrics.
	MessagesPublished prometheus.Counter
}

// NewMetrics creates and registers all export metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RegionsProcessed,
		m.StationsNormalized,
		m.RowsExported,
		m.ExportRunning,
		m.LastExportTime,
		m.FetchRequests,
		m.FetchDuration,
		m.FetchStations,
		m.MessagesPublished,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RegionsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noaa_stations",
			Name:      "regions_processed_total",
			Help:      "Regions queried, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		StationsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noaa_stations",
			Name:      "stations_normalized_total",
			Help:      "Station records normalized into export rows.",
		}),
		RowsExported: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "noaa_stations",
			Name:      "rows_exported",
			Help:      "Data rows in the most recently written export.",
		}),
		ExportRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "noaa_stations",
			Name:      "export_running",
			Help:      "1 while an export run is in progress, 0 otherwise.",
		}),
		LastExportTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "noaa_stations",
			Name:      "last_export_timestamp_seconds",
			Help:      "Unix time of the last successful export write.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noaa_stations",
			Name:      "fetch_requests_total",
			Help:      "Station registry requests by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "noaa_stations",
			Name:      "fetch_duration_seconds",
			Help:      "Station registry request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FetchStations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "noaa_stations",
			Name:      "fetch_stations",
			Help:      "Stations returned per successful region query.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noaa_stations",
			Name:      "messages_published_total",
			Help:      "Station rows published to Kafka.",
		}),
	}
}
