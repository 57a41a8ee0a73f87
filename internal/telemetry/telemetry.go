/*------------------------------------------------------------------------------
* telemetry.go : request metrics for the service-mode driver
*
* Grounded on app/plot's OutMetrics/PushGaugeMetric (a GaugeVec per solution,
* pushed to a Pushgateway) generalized here to per-arrival counters and
* latency histograms exposed over /metrics instead of pushed, since a
* long-lived travel-time service is scraped rather than batch-pushed.
*-----------------------------------------------------------------------------*/
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors the service shell exposes.
type Metrics struct {
	Requests       *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
	Arrivals       *prometheus.CounterVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
}

// NewMetrics registers and returns a fresh Metrics bundle on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taupgo_requests_total",
			Help: "total get_tt requests handled, by model and outcome",
		}, []string{"model", "outcome"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taupgo_request_latency_seconds",
			Help:    "get_tt request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"model"}),
		Arrivals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taupgo_arrivals_total",
			Help: "arrivals returned, by phase code",
		}, []string{"phase"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taupgo_model_cache_hits_total",
			Help: "session factory model cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taupgo_model_cache_misses_total",
			Help: "session factory model cache misses",
		}),
	}
	reg.MustRegister(m.Requests, m.RequestLatency, m.Arrivals, m.CacheHits, m.CacheMisses)
	return m
}

// Handler returns the /metrics HTTP handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
