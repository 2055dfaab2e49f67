package worker

import (
	"rsvp-reader/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SweepMetrics provides Prometheus metrics for maintenance jobs.
//
// Embedded from ConfigMetrics:
//   - sweep_config_load_timestamp
//   - sweep_config_fallbacks_total
//   - sweep_config_fallback_active
//
// Job metrics:
//   - sweep_job_runs_total{job,status}
//   - sweep_job_duration_seconds{job}
//   - sweep_job_items_removed_total{job}
//   - sweep_job_last_success_timestamp{job}
type SweepMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   *prometheus.HistogramVec
	ItemsRemovedTotal    *prometheus.CounterVec
	LastSuccessTimestamp *prometheus.GaugeVec
}

// NewSweepMetrics creates and registers the metrics with reg.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	factory := promauto.With(reg)
	return &SweepMetrics{
		ConfigMetrics: config.NewConfigMetrics("sweep", reg),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sweep_job_runs_total",
			Help: "Total number of maintenance job runs by job and status",
		}, []string{"job", "status"}),

		JobDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sweep_job_duration_seconds",
			Help:    "Duration of maintenance job runs in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}, []string{"job"}),

		ItemsRemovedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sweep_job_items_removed_total",
			Help: "Total number of entries removed by maintenance jobs",
		}, []string{"job"}),

		LastSuccessTimestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sweep_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

// RecordRun records the outcome of one job run.
func (m *SweepMetrics) RecordRun(job string, err error, seconds float64, removed int) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
	if err != nil {
		m.JobRunsTotal.WithLabelValues(job, "failure").Inc()
		return
	}

	m.JobRunsTotal.WithLabelValues(job, "success").Inc()
	m.ItemsRemovedTotal.WithLabelValues(job).Add(float64(removed))
	m.LastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
