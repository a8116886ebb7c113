package metrics

import "github.com/prometheus/client_golang/prometheus"

// Browse Prometheus metrics.
var (
	BrowseFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "browse_fetches_total",
			Help:      "Total number of backend batch fetches",
		},
		[]string{"kind", "status"}, // kind: "foreground" / "prefetch"
	)

	BrowseFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homedex",
			Name:      "browse_fetch_duration_seconds",
			Help:      "Backend batch fetch duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	BrowseRecordsFetchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "browse_records_fetched_total",
			Help:      "Total listings returned by the backend",
		},
	)

	BrowseRecordsDedupedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "browse_records_deduped_total",
			Help:      "Listings skipped on merge because their ID was already cached",
		},
	)

	BrowseLineagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "browse_lineages_total",
			Help:      "Search lineages started",
		},
	)

	BrowseStaleDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "browse_stale_drops_total",
			Help:      "Fetch resolutions discarded due to lineage mismatch",
		},
	)

	BrowseSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "homedex",
			Name:      "browse_sessions_active",
			Help:      "Browse sessions currently held by the hub",
		},
	)
)

var browseMetricsRegistered bool

// RegisterBrowseMetrics registers the browse collectors with the default
// registry. Safe to call more than once; only the first call registers.
func RegisterBrowseMetrics() {
	if browseMetricsRegistered {
		return
	}
	prometheus.MustRegister(BrowseFetchesTotal)
	prometheus.MustRegister(BrowseFetchDuration)
	prometheus.MustRegister(BrowseRecordsFetchedTotal)
	prometheus.MustRegister(BrowseRecordsDedupedTotal)
	prometheus.MustRegister(BrowseLineagesTotal)
	prometheus.MustRegister(BrowseStaleDropsTotal)
	prometheus.MustRegister(BrowseSessionsActive)
	browseMetricsRegistered = true
}
