package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tardis_search",
			Name:      "engine_request_duration_seconds",
			Help:      "Batched search engine dispatch duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"status"}, // "ok" / "error" / "timeout" / "canceled"
	)

	EngineSubQueries = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tardis_search",
			Name:      "engine_sub_queries",
			Help:      "Number of index-scoped queries per batched dispatch",
			Buckets:   []float64{1, 2, 3, 4, 6},
		},
	)

	AccessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tardis_search",
			Name:      "access_decisions_total",
			Help:      "Hits kept or denied by the access filter",
		},
		[]string{"entity_type", "decision"}, // "allow" / "deny"
	)

	StaleReferencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tardis_search",
			Name:      "stale_references_total",
			Help:      "Hits referencing records missing from the system of record",
		},
		[]string{"entity_type"},
	)

	UnknownIndexHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tardis_search",
			Name:      "unknown_index_hits_total",
			Help:      "Engine hits dropped because their index is not mapped to an entity type",
		},
		[]string{"index"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineRequestDuration)
	prometheus.MustRegister(EngineSubQueries)
	prometheus.MustRegister(AccessDecisionsTotal)
	prometheus.MustRegister(StaleReferencesTotal)
	prometheus.MustRegister(UnknownIndexHitsTotal)
	searchMetricsRegistered = true
}
