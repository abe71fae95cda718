package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync cycle and map action counters. Registered on the default registry and
// served at /metrics.
var (
	SyncCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racelink_sync_cycles_total",
		Help: "Completed proximity sync cycles by result.",
	}, []string{"result"})

	SyncQueryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racelink_sync_query_failures_total",
		Help: "Failed proximity queries by collection.",
	}, []string{"collection"})

	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racelink_sync_stale_responses_total",
		Help: "Out-of-order sync responses discarded by collection.",
	}, []string{"collection"})

	MapActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racelink_map_actions_total",
		Help: "Dispatched map actions by kind and result.",
	}, []string{"action", "result"})
)
