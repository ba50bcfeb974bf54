// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comj_api_requests_total",
			Help: "Total number of requests issued against the Comj API",
		},
		[]string{"operation", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "comj_api_request_duration_seconds",
			Help: "Duration of Comj API requests in seconds",
		},
		[]string{"operation"},
	)

	PollTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_ticks_total",
			Help: "Total number of poll ticks executed per poller",
		},
		[]string{"poller"},
	)

	PollFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_fetch_failures_total",
			Help: "Total number of failed sub-fetches per poller slice",
		},
		[]string{"poller", "slice"},
	)

	PollersRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pollers_running",
			Help: "Whether a poller is currently running (1) or stopped (0)",
		},
		[]string{"poller"},
	)
)
