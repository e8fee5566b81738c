package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AudioMetrics contains Prometheus metrics for the capture stream and the recorder.
// The period methods are called from the audio thread and only touch atomics.
type AudioMetrics struct {
	registry *prometheus.Registry

	// Stream metrics
	periodsTotal        prometheus.Counter
	framesTotal         prometheus.Counter
	clippedSamplesTotal prometheus.Counter
	streamOpensTotal    *prometheus.CounterVec

	// Session metrics
	sessionsStartedTotal  prometheus.Counter
	sessionsFinishedTotal *prometheus.CounterVec
	sessionActive         prometheus.Gauge

	// Disk streaming metrics
	bytesFlushedTotal prometheus.Counter
	flushWaitSeconds  prometheus.Histogram
	fileErrorsTotal   *prometheus.CounterVec
}

// NewAudioMetrics creates and registers new audio metrics
func NewAudioMetrics(registry *prometheus.Registry) (*AudioMetrics, error) {
	m := &AudioMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AudioMetrics) initMetrics() {
	m.periodsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_periods_total",
		Help: "Total number of audio periods processed",
	})

	m.framesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_frames_total",
		Help: "Total number of audio frames processed",
	})

	m.clippedSamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_clipped_samples_total",
		Help: "Total number of output samples hard-clipped to [-1, 1]",
	})

	m.streamOpensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_stream_opens_total",
			Help: "Total number of stream open attempts",
		},
		[]string{"status"}, // status: success, error
	)

	m.sessionsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recorder_sessions_started_total",
		Help: "Total number of recording sessions started",
	})

	m.sessionsFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_sessions_finished_total",
			Help: "Total number of recording sessions finished",
		},
		[]string{"reason"}, // reason: autostop, manual, shutdown
	)

	m.sessionActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recorder_session_active",
		Help: "1 while a recording session is active",
	})

	m.bytesFlushedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recorder_bytes_flushed_total",
		Help: "Total bytes handed to background append jobs",
	})

	m.flushWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recorder_flush_wait_seconds",
		Help:    "Time the audio thread waited for the previous append job before swapping buffers",
		Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor4, BucketCount10), // 0.1ms to ~26s
	})

	m.fileErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_file_errors_total",
			Help: "Total number of file errors in recording jobs",
		},
		[]string{"operation"}, // operation: create, append, finalize
	)
}

// Describe implements the Collector interface
func (m *AudioMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.periodsTotal.Describe(ch)
	m.framesTotal.Describe(ch)
	m.clippedSamplesTotal.Describe(ch)
	m.streamOpensTotal.Describe(ch)
	m.sessionsStartedTotal.Describe(ch)
	m.sessionsFinishedTotal.Describe(ch)
	m.sessionActive.Describe(ch)
	m.bytesFlushedTotal.Describe(ch)
	m.flushWaitSeconds.Describe(ch)
	m.fileErrorsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *AudioMetrics) Collect(ch chan<- prometheus.Metric) {
	m.periodsTotal.Collect(ch)
	m.framesTotal.Collect(ch)
	m.clippedSamplesTotal.Collect(ch)
	m.streamOpensTotal.Collect(ch)
	m.sessionsStartedTotal.Collect(ch)
	m.sessionsFinishedTotal.Collect(ch)
	m.sessionActive.Collect(ch)
	m.bytesFlushedTotal.Collect(ch)
	m.flushWaitSeconds.Collect(ch)
	m.fileErrorsTotal.Collect(ch)
}

// RecordPeriod counts one processed period of the given length.
func (m *AudioMetrics) RecordPeriod(frames int) {
	m.periodsTotal.Inc()
	m.framesTotal.Add(float64(frames))
}

// RecordClipped counts samples that were clipped in a period.
func (m *AudioMetrics) RecordClipped(n int) {
	if n > 0 {
		m.clippedSamplesTotal.Add(float64(n))
	}
}

// RecordStreamOpen records the outcome of opening a stream
func (m *AudioMetrics) RecordStreamOpen(status string) {
	m.streamOpensTotal.WithLabelValues(status).Inc()
}

// RecordSessionStarted marks the start of a recording session
func (m *AudioMetrics) RecordSessionStarted() {
	m.sessionsStartedTotal.Inc()
	m.sessionActive.Set(1)
}

// RecordSessionFinished marks the end of a recording session
func (m *AudioMetrics) RecordSessionFinished(reason string) {
	m.sessionsFinishedTotal.WithLabelValues(reason).Inc()
	m.sessionActive.Set(0)
}

// RecordFlush records a staging buffer swap and how long the swap waited.
func (m *AudioMetrics) RecordFlush(bytes int, wait time.Duration) {
	m.bytesFlushedTotal.Add(float64(bytes))
	m.flushWaitSeconds.Observe(wait.Seconds())
}

// RecordFileError counts a failed file operation
func (m *AudioMetrics) RecordFileError(operation string) {
	m.fileErrorsTotal.WithLabelValues(operation).Inc()
}
