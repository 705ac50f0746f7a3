package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the report pipeline.
type Metrics struct {
	ReportsGenerated prometheus.Counter
	PipelineHalts    *prometheus.CounterVec // labels: reason={config,resolution}

	// Best-effort stages record their outcome instead of failing the run.
	GeologyLookups *prometheus.CounterVec // labels: outcome={success,empty,error}
	MapRenders     *prometheus.CounterVec // labels: provider={static,screenshot}, outcome={success,error}

	ExternalRequestDuration *prometheus.HistogramVec // labels: service={opencage,gsi,mapbox,chrome}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsGenerated,
		m.PipelineHalts,
		m.GeologyLookups,
		m.MapRenders,
		m.ExternalRequestDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across test packages.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "subsidence",
			Name:      "reports_generated_total",
			Help:      "Total reports assembled and delivered.",
		}),
		PipelineHalts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subsidence",
			Name:      "pipeline_halts_total",
			Help:      "Submissions aborted before document assembly, by reason.",
		}, []string{"reason"}),
		GeologyLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subsidence",
			Name:      "geology_lookups_total",
			Help:      "Bedrock lookups by outcome; empty and error both degrade to the fallback sentence.",
		}, []string{"outcome"}),
		MapRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subsidence",
			Name:      "map_renders_total",
			Help:      "Map image acquisitions by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ExternalRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "subsidence",
			Name:      "external_request_duration_seconds",
			Help:      "Duration of calls to external services.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"service"}),
	}
}
