// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoringRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_runs_total",
			Help: "Total number of event scoring runs",
		},
		[]string{"outcome"},
	)

	EventPointsHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_points",
			Help:    "Distribution of per-user points in one scored event",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"group"},
	)

	NotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_notifications_total",
			Help: "Total number of points-earned notifications emitted",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
