// Package metrics registers the Prometheus collectors of the service.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wavy"

var (
	// CacheLookups counts metadata cache lookups by result (fresh, stale, miss)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Metadata cache lookups by result",
		},
		[]string{"result"},
	)

	// UpstreamRequests counts metadata provider requests by outcome
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Metadata provider requests by outcome",
		},
		[]string{"outcome"},
	)

	// LocalizationOverlays counts secondary localization lookups by outcome
	LocalizationOverlays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "localization_overlays_total",
			Help:      "Secondary localization lookups by outcome",
		},
		[]string{"outcome"},
	)

	// RemoteSyncFailures counts failed best-effort collection mirrors
	RemoteSyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_sync_failures_total",
			Help:      "Failed remote mirrors of local collection mutations",
		},
		[]string{"collection"},
	)

	// DroppedEvents counts change notifications dropped for slow subscribers
	DroppedEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Collection change events dropped because a subscriber was full",
		},
	)

	// RateLimited counts requests rejected by the rate limiter
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_exceeded_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

// Handler serves the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
