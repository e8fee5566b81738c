// Package observability exposes the application's Prometheus collectors over HTTP.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vk2gpu/music-app/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Audio    *metrics.AudioMetrics
	Jobs     *metrics.JobMetrics
	Storage  *metrics.StorageMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register Go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	audioMetrics, err := metrics.NewAudioMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio metrics: %w", err)
	}

	jobMetrics, err := metrics.NewJobMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create job metrics: %w", err)
	}

	storageMetrics, err := metrics.NewStorageMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Audio:    audioMetrics,
		Jobs:     jobMetrics,
		Storage:  storageMetrics,
	}, nil
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterHandlers registers the metrics endpoint with the provided http.ServeMux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
}
