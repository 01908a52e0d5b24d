// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	LifecycleOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_lifecycle_outcomes_total",
			Help: "Lifecycle operations by operation and outcome kind",
		},
		[]string{"operation", "outcome"},
	)

	LifecycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "application_lifecycle_operation_duration_seconds",
			Help:    "Duration of lifecycle read-check-write operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_notifications_total",
			Help: "Notifications by type, channel and delivery status",
		},
		[]string{"type", "channel", "status"},
	)
)
