package suggest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	suggestCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggest_cache_hits_total",
			Help: "Owner suggestion queries answered from the per-resolver cache",
		},
	)

	suggestStaleDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggest_stale_drops_total",
			Help: "Suggestion completions discarded because a newer query superseded them",
		},
	)
)
