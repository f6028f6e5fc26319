package explorer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exploreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clint_explore_duration_seconds",
			Help:    "Time taken to explore a complete command tree",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	exploreTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clint_explore_total",
			Help: "Total number of exploration runs",
		},
		[]string{"status"}, // success or error
	)

	nodesExplored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clint_nodes_explored_total",
			Help: "Total number of command nodes explored",
		},
		[]string{"result"}, // parsed or empty
	)

	prunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clint_nodes_pruned_total",
			Help: "Total number of subcommands not explored",
		},
		[]string{"reason"}, // excluded, cycle, depth or budget
	)

	exploreNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clint_explore_nodes",
			Help: "Number of nodes in the last explored tree",
		},
	)
)
