// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assistant_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	IntentsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intents_total",
			Help: "Messages classified, by intent and strategy",
		},
		[]string{"intent", "strategy"},
	)

	OptionsGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_options_generated",
			Help:    "Number of options returned per plan",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_source_failures_total",
			Help: "Restaurant and availability source calls that failed",
		},
		[]string{"source"},
	)
)

