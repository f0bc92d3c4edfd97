// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of enrichment provider calls",
		},
		[]string{"provider"},
	)

	ProviderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_failures_total",
			Help: "Total number of failed enrichment provider calls",
		},
		[]string{"provider", "error_code"},
	)

	ProviderDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_degradations_total",
			Help: "Total number of provider branches that exhausted retries and degraded",
		},
		[]string{"provider"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_duration_seconds",
			Help: "Duration of itinerary pipeline stages in seconds",
		},
		[]string{"stage"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_hits_total",
			Help: "Provider response cache hits",
		},
		[]string{"provider"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_misses_total",
			Help: "Provider response cache misses",
		},
		[]string{"provider"},
	)

	NarrativeFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "narrative_fallbacks_total",
			Help: "Itineraries returned without AI narrative after retry exhaustion",
		},
	)
)
