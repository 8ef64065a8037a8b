package addition

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	strategyRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigadd_strategy_runs_total",
			Help: "The total number of strategy runs, by role and outcome",
		},
		[]string{"strategy", "role", "status"},
	)
	strategyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bigadd_strategy_duration_seconds",
			Help: "The duration of strategy runs in seconds",
		},
		[]string{"strategy", "role"},
	)
	digitsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigadd_digits_added_total",
			Help: "Digits added by workers",
		},
		[]string{"strategy"},
	)
	collectionProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bigadd_collection_progress",
			Help: "Fraction of the current result collected by the coordinator (0.0 to 1.0)",
		},
		[]string{"strategy_index"},
	)
)
