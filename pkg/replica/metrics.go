package replica

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clint_replica_generate_duration_seconds",
			Help:    "Time taken to render and write a replica",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	generateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clint_replica_generate_total",
			Help: "Total number of replica generation attempts",
		},
		[]string{"status"}, // success or error
	)
)
