package observability

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/observability/metrics"
)

// ErrTelemetryDisabled is returned by NewEndpoint when telemetry is switched off.
var ErrTelemetryDisabled = errors.New(errors.NewStd("telemetry not enabled in settings")).
	Component("observability").
	Category(errors.CategoryConfiguration).
	Build()

// Endpoint serves /metrics, plus pprof routes in debug mode.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	debug         bool
	metrics       *Metrics

	mu       sync.Mutex
	listener net.Listener
}

// NewEndpoint creates a new telemetry Endpoint. It does not create metrics;
// pass an initialized Metrics instance.
func NewEndpoint(settings *conf.Settings, m *Metrics) (*Endpoint, error) {
	if !settings.Telemetry.Enabled {
		return nil, ErrTelemetryDisabled
	}

	return &Endpoint{
		listenAddress: settings.Telemetry.Listen,
		debug:         settings.Debug,
		metrics:       m,
	}, nil
}

// Start binds the listener and serves in the background until quitChan closes.
// Binding errors are returned synchronously.
func (e *Endpoint) Start(wg *sync.WaitGroup, quitChan <-chan struct{}) error {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)
	if e.debug {
		mountProfiling(mux)
	}

	ln, err := net.Listen("tcp", e.listenAddress)
	if err != nil {
		return errors.New(err).
			Component("observability").
			Category(errors.CategoryNetwork).
			Context("address", e.listenAddress).
			Build()
	}

	e.mu.Lock()
	e.listener = ln
	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	server := e.server
	e.mu.Unlock()

	log := GetLogger()
	wg.Go(func() {
		log.Info("telemetry endpoint starting", logger.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("telemetry HTTP server error", logger.Error(err))
		}
	})

	wg.Go(func() {
		e.gracefulShutdown(quitChan)
	})
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (e *Endpoint) Addr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return ""
	}
	return e.listener.Addr().String()
}

// gracefulShutdown waits for the quit signal and shuts down the server gracefully.
func (e *Endpoint) gracefulShutdown(quitChan <-chan struct{}) {
	<-quitChan
	log := GetLogger()
	log.Info("stopping telemetry server")
	ctx, cancel := context.WithTimeout(context.Background(), metrics.ShutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		log.Error("telemetry server shutdown error", logger.Error(err))
	}
}

// GetMetrics returns the Metrics instance associated with this Endpoint.
func (e *Endpoint) GetMetrics() *Metrics {
	return e.metrics
}
