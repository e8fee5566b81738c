package capture

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk2gpu/music-app/internal/audio"
	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/sound"
)

// Play loops path through the configured output device until SIGINT or SIGTERM.
func Play(settings *conf.Settings, path string) error {
	driver, err := audio.NewMalgoDriver(settings.Debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			GetLogger().Warn("failed to release audio driver", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return play(ctx, settings, path, driver, driver)
}

// play wires only the playback consumer, so nothing is recorded while the
// file loops.
func play(ctx context.Context, settings *conf.Settings, path string, driver audio.Driver, backend audio.Backend) error {
	catalog := audio.NewCatalog(driver)
	if err := catalog.Enumerate(); err != nil {
		return err
	}
	registry := audio.NewRegistry()
	engine := audio.NewEngine(catalog, registry, backend, audio.WithClip(settings.Audio.Clip))

	playback := audio.NewPlayback(sound.NewCache(0))
	if err := playback.Play(path); err != nil {
		return err
	}
	registry.Register(playback, 0x0, 0xF)
	defer registry.Unregister(playback)

	if err := engine.Open(audio.StreamSettings{
		InputDevice:  audio.ParseDeviceID(settings.Audio.InputDevice),
		OutputDevice: audio.ParseDeviceID(settings.Audio.OutputDevice),
		SampleRate:   settings.Audio.SampleRate,
		BufferSize:   settings.Audio.BufferSize,
	}); err != nil {
		return err
	}

	<-ctx.Done()
	playback.Stop()
	return engine.Close()
}
