// internal/common/metrics/metrics.go
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess         = "success"
	OutcomeUnknownIndustry = "unknown_industry"
	OutcomeUnknownSolution = "unknown_solution"
	OutcomeError           = "error"

	// UnknownIndustryLabel stands in for caller input that never matched the
	// catalog, so label values stay bounded by the catalog size.
	UnknownIndustryLabel = "unknown"

	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
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

	ROICalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roi_calculations_total",
			Help: "ROI calculations by industry and outcome",
		},
		[]string{"industry", "outcome"},
	)

	ROIMultiplier = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roi_multiplier",
			Help:    "Distribution of computed ROI multipliers",
			Buckets: []float64{3, 3.5, 4, 4.5, 5, 5.5, 6, 6.5, 7, 8},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roi_http_requests_total",
			Help: "HTTP API requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// JobObserver receives every finished job alongside the prometheus vectors.
type JobObserver interface {
	ObserveJob(taskType, status string, elapsed time.Duration)
}

var (
	observersMu sync.RWMutex
	observers   = map[int]JobObserver{}
	nextID      int
)

// AddJobObserver registers o for jobs finished after the call and returns a
// func that removes it.
func AddJobObserver(o JobObserver) func() {
	observersMu.Lock()
	defer observersMu.Unlock()
	id := nextID
	nextID++
	observers[id] = o
	return func() {
		observersMu.Lock()
		delete(observers, id)
		observersMu.Unlock()
	}
}

// JobStarted marks a job active and returns a func that records its
// duration and outcome. errorCode is empty on success.
func JobStarted(taskType string) func(errorCode string) {
	start := time.Now()
	WorkerJobsActive.WithLabelValues(taskType).Inc()

	return func(errorCode string) {
		elapsed := time.Since(start)
		WorkerJobsActive.WithLabelValues(taskType).Dec()
		WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		status := JobStatusCompleted
		if errorCode == "" {
			WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		} else {
			status = JobStatusFailed
			WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
		}

		observersMu.RLock()
		defer observersMu.RUnlock()
		for _, o := range observers {
			o.ObserveJob(taskType, status, elapsed)
		}
	}
}

// IndustryLabel returns the label recorded for a calculation outcome. Only
// success and unknown_solution guarantee the industry matched the catalog.
func IndustryLabel(industry, outcome string) string {
	switch outcome {
	case OutcomeSuccess, OutcomeUnknownSolution:
		return industry
	default:
		return UnknownIndustryLabel
	}
}

// RecordCalculation counts one engine run. multiplier is observed only on
// success with at least one solution selected.
func RecordCalculation(industry, outcome string, multiplier float64) {
	ROICalculations.WithLabelValues(IndustryLabel(industry, outcome), outcome).Inc()
	if outcome == OutcomeSuccess && multiplier > 0 {
		ROIMultiplier.Observe(multiplier)
	}
}
