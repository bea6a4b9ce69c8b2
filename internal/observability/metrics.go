package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and the SMS alert handler.
type Metrics struct {
	EventsFetched   prometheus.Counter
	EventsStored    prometheus.Counter
	EventsSkipped   prometheus.Counter
	AlertsPublished prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Poll cycle metrics.
	PollCycles        *prometheus.CounterVec // labels: outcome={success,error,empty}
	PollCycleDuration prometheus.Histogram
	UpsertBatchSize   prometheus.Histogram

	// SMS gateway metrics.
	SMSSends *prometheus.CounterVec // labels: provider={twilio,fast2sms}, outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.EventsFetched,
		m.EventsStored,
		m.EventsSkipped,
		m.AlertsPublished,
		m.PipelineRunning,
		m.PollCycles,
		m.PollCycleDuration,
		m.UpsertBatchSize,
		m.SMSSends,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "events_fetched_total",
			Help:      "Total earthquake features fetched from the USGS feed.",
		}),
		EventsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "events_stored_total",
			Help:      "Total earthquake rows upserted into Postgres.",
		}),
		EventsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "events_skipped_total",
			Help:      "Total features dropped during transformation.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "alerts_published_total",
			Help:      "Total strong-quake alerts published to Kafka.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakewatch",
			Name:      "pipeline_running",
			Help:      "1 when the poll loop is active, 0 when shut down.",
		}),
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "poll_cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		PollCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakewatch",
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of a complete fetch-transform-upsert cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		UpsertBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakewatch",
			Name:      "upsert_batch_size",
			Help:      "Number of rows per upsert batch sent to Postgres.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500},
		}),
		SMSSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "sms_sends_total",
			Help:      "SMS gateway requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakewatch",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakewatch",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}
