package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics contains Prometheus metrics for the background job manager
type JobMetrics struct {
	registry *prometheus.Registry

	jobsSubmittedTotal *prometheus.CounterVec
	jobsCompletedTotal *prometheus.CounterVec
	jobDurationSeconds *prometheus.HistogramVec
	queueDepth         prometheus.Gauge
}

// NewJobMetrics creates and registers new job metrics
func NewJobMetrics(registry *prometheus.Registry) (*JobMetrics, error) {
	m := &JobMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *JobMetrics) initMetrics() {
	m.jobsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_submitted_total",
			Help: "Total number of jobs submitted",
		},
		[]string{"job"},
	)

	m.jobsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_completed_total",
			Help: "Total number of jobs completed",
		},
		[]string{"job", "status"}, // status: success, error, panic
	)

	m.jobDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobs_duration_seconds",
			Help:    "Time taken to run a job",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12), // 1ms to ~4s
		},
		[]string{"job"},
	)

	m.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobs_queue_depth",
		Help: "Number of jobs waiting for a worker",
	})
}

// Describe implements the Collector interface
func (m *JobMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.jobsSubmittedTotal.Describe(ch)
	m.jobsCompletedTotal.Describe(ch)
	m.jobDurationSeconds.Describe(ch)
	m.queueDepth.Describe(ch)
}

// Collect implements the Collector interface
func (m *JobMetrics) Collect(ch chan<- prometheus.Metric) {
	m.jobsSubmittedTotal.Collect(ch)
	m.jobsCompletedTotal.Collect(ch)
	m.jobDurationSeconds.Collect(ch)
	m.queueDepth.Collect(ch)
}

// RecordSubmitted counts a job accepted by the queue
func (m *JobMetrics) RecordSubmitted(name string) {
	m.jobsSubmittedTotal.WithLabelValues(name).Inc()
}

// RecordCompleted records the outcome and run time of a job
func (m *JobMetrics) RecordCompleted(name, status string, d time.Duration) {
	m.jobsCompletedTotal.WithLabelValues(name, status).Inc()
	m.jobDurationSeconds.WithLabelValues(name).Observe(d.Seconds())
}

// SetQueueDepth sets the current queue depth
func (m *JobMetrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}
