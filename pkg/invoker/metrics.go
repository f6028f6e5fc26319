package invoker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clint_invocation_total",
			Help: "Total number of target program invocations",
		},
		[]string{"status"}, // success, nonzero, timeout, cancelled or error
	)

	invocationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clint_invocation_duration_seconds",
			Help:    "Time taken by a single target program invocation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)
)
