package expander

import (
	"unshorten/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint: gochecknoglobals
var (
	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unshorten",
		Name:      "outcomes_total",
		Help:      "Processed URLs by terminal outcome.",
	}, []string{"outcome"})

	cacheWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "unshorten",
		Name:      "cache_writes_total",
		Help:      "New resolutions written back to the cache.",
	})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "unshorten",
		Name:      "request_duration_seconds",
		Help:      "Latency of resolution attempts, success and failure alike.",
		Buckets:   metrics.DefaultBuckets,
	})

	inFlightExchanges = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "unshorten",
		Name:      "in_flight_exchanges",
		Help:      "Network exchanges currently holding an admission token.",
	})
)
