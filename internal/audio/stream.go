package audio

import (
	"fmt"
	"sync"

	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/observability/metrics"
)

// StreamSettings selects the devices and timing of a duplex stream.
// Zero device IDs select the first device of each list; zero rates and sizes
// fall back to conf.SampleRate and conf.BufferSize.
type StreamSettings struct {
	InputDevice  DeviceID
	OutputDevice DeviceID
	SampleRate   int
	BufferSize   int
}

// StreamConfig is what a Backend is asked to open.
type StreamConfig struct {
	Input          DeviceInfo
	Output         DeviceInfo
	InputChannels  int
	OutputChannels int
	SampleRate     int
	BufferSize     int
	LowLatency     bool
}

// PeriodFunc is called by a stream once per hardware period with
// non-interleaved float32 buffers.
type PeriodFunc func(in, out [][]float32, frames int)

// Stream is an opened device stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Backend opens duplex streams.
type Backend interface {
	OpenStream(cfg StreamConfig, cb PeriodFunc) (Stream, error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClip enables or disables hard clipping of the outputs to [-1, 1].
func WithClip(clip bool) EngineOption {
	return func(e *Engine) {
		e.clip = clip
	}
}

// WithEngineMetrics records period and clipping counts.
func WithEngineMetrics(m *metrics.AudioMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Engine owns the single open stream and routes its periods to a Registry.
type Engine struct {
	catalog  *Catalog
	registry *Registry
	backend  Backend
	clip     bool
	metrics  *metrics.AudioMetrics

	mu     sync.Mutex
	stream Stream
	config StreamConfig
}

// NewEngine returns a closed engine. Clipping is on by default.
func NewEngine(catalog *Catalog, registry *Registry, backend Backend, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:  catalog,
		registry: registry,
		backend:  backend,
		clip:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open closes any current stream, then opens and starts a new one.
// On failure nothing is left open.
func (e *Engine) Open(settings StreamSettings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := GetLogger()
	if err := e.closeLocked(); err != nil {
		log.Warn("failed to close previous stream", logger.Error(err))
	}

	input, ok := e.catalog.resolveInput(settings.InputDevice)
	if !ok {
		return fmt.Errorf("%w: input %s", ErrDeviceNotFound, settings.InputDevice)
	}
	output, ok := e.catalog.resolveOutput(settings.OutputDevice)
	if !ok {
		return fmt.Errorf("%w: output %s", ErrDeviceNotFound, settings.OutputDevice)
	}

	cfg := StreamConfig{
		Input:          input,
		Output:         output,
		InputChannels:  min(input.MaxInputs, maxChannels),
		OutputChannels: min(output.MaxOutputs, maxChannels),
		SampleRate:     settings.SampleRate,
		BufferSize:     settings.BufferSize,
		LowLatency:     true,
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = conf.SampleRate
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = conf.BufferSize
	}

	stream, err := e.backend.OpenStream(cfg, e.process)
	if err != nil {
		e.recordOpen(metrics.StatusError)
		return fmt.Errorf("%w: %w", ErrStreamOpenFailed, err)
	}
	if err := stream.Start(); err != nil {
		if cerr := stream.Close(); cerr != nil {
			log.Warn("failed to close stream after start failure", logger.Error(cerr))
		}
		e.recordOpen(metrics.StatusError)
		return fmt.Errorf("%w: %w", ErrStreamStartFailed, err)
	}

	e.stream = stream
	e.config = cfg
	e.recordOpen(metrics.StatusSuccess)
	log.Info("audio stream opened",
		logger.String("input", input.Name),
		logger.String("output", output.Name),
		logger.Int("input_channels", cfg.InputChannels),
		logger.Int("output_channels", cfg.OutputChannels),
		logger.Int("sample_rate", cfg.SampleRate),
		logger.Int("buffer_size", cfg.BufferSize))
	return nil
}

func (e *Engine) recordOpen(status string) {
	if e.metrics != nil {
		e.metrics.RecordStreamOpen(status)
	}
}

// Close stops and closes the current stream. Closing a closed engine is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeLocked()
}

func (e *Engine) closeLocked() error {
	if e.stream == nil {
		return nil
	}
	stream := e.stream
	e.stream = nil
	e.config = StreamConfig{}

	stopErr := stream.Stop()
	closeErr := stream.Close()
	if stopErr != nil {
		GetLogger().Warn("failed to stop audio stream", logger.Error(stopErr))
	}
	if closeErr != nil {
		return fmt.Errorf("closing audio stream: %w", closeErr)
	}
	GetLogger().Info("audio stream closed")
	return nil
}

// IsOpen reports whether a stream is running.
func (e *Engine) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream != nil
}

// Config returns the configuration of the open stream.
func (e *Engine) Config() (StreamConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stream == nil {
		return StreamConfig{}, ErrNotOpen
	}
	return e.config, nil
}

// process is the period callback handed to the backend.
func (e *Engine) process(in, out [][]float32, frames int) {
	for _, ch := range out {
		clear(ch[:frames])
	}

	e.registry.Dispatch(in, out, frames)

	if e.clip {
		n := clipOutputs(out, frames)
		if e.metrics != nil {
			e.metrics.RecordClipped(n)
		}
	}
	if e.metrics != nil {
		e.metrics.RecordPeriod(frames)
	}
}

// clipOutputs hard-clips every output sample to [-1, 1] and returns how many were changed.
func clipOutputs(out [][]float32, frames int) int {
	clipped := 0
	for _, ch := range out {
		for i, s := range ch[:frames] {
			switch {
			case s > 1:
				ch[i] = 1
				clipped++
			case s < -1:
				ch[i] = -1
				clipped++
			}
		}
	}
	return clipped
}
