package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/jobs"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/observability/metrics"
	"github.com/vk2gpu/music-app/internal/sound"
)

// Channel masks used when wiring the default consumers.
const (
	maskFirst uint32 = 0x1
	maskNone  uint32 = 0x0
	maskQuad  uint32 = 0xF
)

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	metrics        *metrics.AudioMetrics
	onSessionStart func(ctx context.Context, id uint32) error
	cache          *sound.Cache
}

// WithAudioMetrics records stream, session and flush metrics.
func WithAudioMetrics(m *metrics.AudioMetrics) AppOption {
	return func(o *appOptions) { o.metrics = m }
}

// WithSessionStartHook runs fn as a background job whenever a recording starts.
func WithSessionStartHook(fn func(ctx context.Context, id uint32) error) AppOption {
	return func(o *appOptions) { o.onSessionStart = fn }
}

// WithSoundCache shares a decoded-sound cache with the playback engine.
func WithSoundCache(c *sound.Cache) AppOption {
	return func(o *appOptions) { o.cache = c }
}

// App wires the device catalog, the stream engine and the default consumers.
type App struct {
	Catalog  *Catalog
	Registry *Registry
	Engine   *Engine
	Stats    *StatsProbe
	Recorder *Recorder
	Scope    *Scope
	Playback *Playback

	mu   sync.Mutex
	open bool
}

// NewApp builds an App from the recording and audio settings. Nothing is
// opened until Open.
func NewApp(driver Driver, backend Backend, submitter jobs.Submitter, settings *conf.Settings, opts ...AppOption) *App {
	o := appOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cache == nil {
		o.cache = sound.NewCache(0)
	}

	catalog := NewCatalog(driver)
	registry := NewRegistry()
	stats := NewStatsProbe()

	rate := settings.Audio.SampleRate
	if rate <= 0 {
		rate = conf.SampleRate
	}
	recorder := NewRecorder(stats, submitter, RecorderOptions{
		Dir:            settings.Recording.Path,
		SampleRate:     rate,
		Format:         sound.ParseFormat(settings.Recording.Format),
		ThresholdStart: settings.Recording.ThresholdStart,
		ThresholdStop:  settings.Recording.ThresholdStop,
		Timeout:        settings.Recording.Timeout,
		AutoStop:       settings.Recording.AutoStop,
		Metrics:        o.metrics,
		OnSessionStart: o.onSessionStart,
	})

	return &App{
		Catalog:  catalog,
		Registry: registry,
		Engine: NewEngine(catalog, registry, backend,
			WithClip(settings.Audio.Clip),
			WithEngineMetrics(o.metrics)),
		Stats:    stats,
		Recorder: recorder,
		Scope:    NewScope(DefaultScopeSize),
		Playback: NewPlayback(o.cache),
	}
}

// Open enumerates devices, registers the consumers and opens the stream
// described by settings. The scope is only registered when monitoring is on.
func (a *App) Open(settings conf.AudioSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.Catalog.Enumerate(); err != nil {
		return err
	}

	a.Registry.Register(a.Stats, maskFirst, maskNone)
	a.Registry.Register(a.Recorder, maskFirst, maskNone)
	if settings.Monitor {
		a.Registry.Register(a.Scope, maskFirst, maskQuad)
	} else {
		a.Registry.Unregister(a.Scope)
	}
	a.Registry.Register(a.Playback, maskNone, maskQuad)

	err := a.Engine.Open(StreamSettings{
		InputDevice:  ParseDeviceID(settings.InputDevice),
		OutputDevice: ParseDeviceID(settings.OutputDevice),
		SampleRate:   settings.SampleRate,
		BufferSize:   settings.BufferSize,
	})
	if err != nil {
		a.unregisterAll()
		return err
	}
	a.open = true
	return nil
}

// Close stops the stream, ends any active recording and waits for its file
// to be written, then unregisters the consumers.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if err := a.Engine.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.Recorder.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("finalizing recordings: %w", err))
	}
	a.Playback.Stop()
	a.unregisterAll()

	if a.open {
		GetLogger().Info("audio app closed", logger.Int("sessions", len(a.Recorder.Results())))
	}
	a.open = false
	return errors.Join(errs...)
}

func (a *App) unregisterAll() {
	a.Registry.Unregister(a.Stats)
	a.Registry.Unregister(a.Recorder)
	a.Registry.Unregister(a.Scope)
	a.Registry.Unregister(a.Playback)
}
