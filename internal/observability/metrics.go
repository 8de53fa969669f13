package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "parcel_geo"

// Metrics holds the Prometheus collectors for lookups, upstream calls and the
// catchment dataset.
type Metrics struct {
	// Lookups counts lookups by kind={parcel_by_id,parcel_by_point,address,catchment,retention}
	// and outcome={success,input,not_found,parse,coordinate,unknown,none}.
	Lookups *prometheus.CounterVec

	// UpstreamDuration observes GUGiK request latency, labels: upstream={uldk,uug,dataset}.
	UpstreamDuration *prometheus.HistogramVec

	// Catchment dataset metrics.
	DatasetLoads    *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoaded   prometheus.Gauge
	DatasetFeatures prometheus.Gauge

	// EventsPublished counts lookup events sent to Kafka, labels: outcome={success,error}.
	EventsPublished *prometheus.CounterVec
}

func newMetrics() *Metrics {
	return &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Lookups by kind and outcome.",
		}, []string{"kind", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"upstream"}),
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catchment_dataset_loads_total",
			Help:      "Catchment dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catchment_dataset_loaded",
			Help:      "1 once the catchment dataset is in memory, 0 before.",
		}),
		DatasetFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catchment_dataset_features",
			Help:      "Number of catchment polygons held in memory.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_events_published_total",
			Help:      "Lookup events written to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates all metrics and registers them with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.Lookups,
		m.UpstreamDuration,
		m.DatasetLoads,
		m.DatasetLoaded,
		m.DatasetFeatures,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
