package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Navigation outcomes.
const (
	OutcomeLoaded     = "loaded"
	OutcomeFallback   = "fallback"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

var (
	navigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vc_router_navigations_total",
			Help: "Router navigations by page and outcome.",
		},
		[]string{"page", "outcome"},
	)

	fragmentFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vc_router_fragment_fetch_seconds",
			Help:    "Time spent fetching page and header fragments.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"fragment"},
	)
)
