package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorageMetrics tracks the volume that recordings are written to. Every
// series carries a dir label so several recording directories can be watched.
type StorageMetrics struct {
	freeBytes    *prometheus.GaugeVec
	totalBytes   *prometheus.GaugeVec
	usedPercent  *prometheus.GaugeVec
	orphanFiles  *prometheus.GaugeVec
	lowSpace     *prometheus.CounterVec
	probeSeconds prometheus.Histogram
}

// NewStorageMetrics builds the storage collector and registers it.
func NewStorageMetrics(registry *prometheus.Registry) (*StorageMetrics, error) {
	m := &StorageMetrics{
		freeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recordings_volume_free_bytes",
			Help: "Bytes available on the volume holding recordings",
		}, []string{"dir"}),
		totalBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recordings_volume_size_bytes",
			Help: "Size of the volume holding recordings",
		}, []string{"dir"}),
		usedPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recordings_volume_used_percent",
			Help: "Share of the recordings volume in use",
		}, []string{"dir"}),
		orphanFiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recordings_orphan_temp_files",
			Help: "Temporary session files left behind by an interrupted run",
		}, []string{"dir"}),
		lowSpace: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recordings_volume_low_space_total",
			Help: "Free space probes that came in under the configured minimum",
		}, []string{"dir"}),
		probeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recordings_volume_probe_seconds",
			Help:    "Latency of a free space probe",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10),
		}),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *StorageMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.freeBytes, m.totalBytes, m.usedPercent, m.orphanFiles, m.lowSpace, m.probeSeconds}
}

// Describe implements prometheus.Collector.
func (m *StorageMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *StorageMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// ObserveVolume stores the result of one probe of dir.
func (m *StorageMetrics) ObserveVolume(dir string, free, total uint64, seconds float64) {
	m.probeSeconds.Observe(seconds)
	m.freeBytes.WithLabelValues(dir).Set(float64(free))
	m.totalBytes.WithLabelValues(dir).Set(float64(total))
	if total == 0 {
		m.usedPercent.WithLabelValues(dir).Set(0)
		return
	}
	m.usedPercent.WithLabelValues(dir).Set(float64(total-free) / float64(total) * PercentageFactor)
}

// ObserveProbeFailure records the latency of a probe that returned an error.
func (m *StorageMetrics) ObserveProbeFailure(seconds float64) {
	m.probeSeconds.Observe(seconds)
}

// IncLowSpace counts a probe of dir that found too little room.
func (m *StorageMetrics) IncLowSpace(dir string) {
	m.lowSpace.WithLabelValues(dir).Inc()
}

// SetOrphanFiles publishes how many leftover temp files dir holds.
func (m *StorageMetrics) SetOrphanFiles(dir string, n int) {
	m.orphanFiles.WithLabelValues(dir).Set(float64(n))
}
