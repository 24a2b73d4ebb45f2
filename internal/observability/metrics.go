package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "impact_api"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec // labels: route, status
	Computations *prometheus.CounterVec // labels: variant={basic,detailed}, outcome={success,invalid,not_found}

	// Catalog metrics.
	CatalogFetches  *prometheus.CounterVec   // labels: source={neows,file,samples}, outcome={success,error,empty}
	CatalogCache    *prometheus.CounterVec   // labels: result={hit,miss,stale}
	UpstreamLatency *prometheus.HistogramVec // labels: upstream={neows,llm}

	// Assistant metrics.
	LLMRequests *prometheus.CounterVec // labels: kind={explain,ask}, outcome={success,error,fallback}
	LLMEnabled  prometheus.Gauge

	// Assessment relay metrics.
	EventsPublished prometheus.Counter
	EventsDropped   prometheus.Counter
	PublishErrors   prometheus.Counter
	RelayRunning    prometheus.Gauge
	RelayBatchSize  prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "status"}),
		Computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computations_total",
			Help:      "Impact computations by variant and outcome.",
		}, []string{"variant", "outcome"}),
		CatalogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetches_total",
			Help:      "Asteroid catalog loads by source and outcome.",
		}, []string{"source", "outcome"}),
		CatalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"result"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "External API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"upstream"}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Assistant requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		LLMEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "llm_enabled",
			Help:      "1 when an LLM backend is configured, 0 when canned answers are served.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_published_total",
			Help:      "Assessments written to the sink topic.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_dropped_total",
			Help:      "Assessments discarded because the relay buffer was full.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed batch writes to the sink topic.",
		}),
		RelayRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_running",
			Help:      "1 when the assessment relay is active, 0 when shut down.",
		}),
		RelayBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_batch_size",
			Help:      "Number of assessments per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.HTTPRequests,
		m.Computations,
		m.CatalogFetches,
		m.CatalogCache,
		m.UpstreamLatency,
		m.LLMRequests,
		m.LLMEnabled,
		m.EventsPublished,
		m.EventsDropped,
		m.PublishErrors,
		m.RelayRunning,
		m.RelayBatchSize,
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
