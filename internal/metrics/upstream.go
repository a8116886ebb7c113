package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream (Hound API) Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream API requests",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homedex",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	UpstreamRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "upstream_retries_total",
			Help:      "Upstream requests retried after a transient failure",
		},
		[]string{"endpoint"},
	)

	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "upstream_errors_total",
			Help:      "Total upstream API errors",
		},
		[]string{"endpoint", "error_type"},
	)
)

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers the upstream collectors with the default
// registry. Safe to call more than once; only the first call registers.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(UpstreamRetriesTotal)
	prometheus.MustRegister(UpstreamErrorsTotal)
	upstreamMetricsRegistered = true
}
