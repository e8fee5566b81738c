// Package capture runs the command-line workflows: continuous recording,
// looped playback, device listing and file conversion.
package capture

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vk2gpu/music-app/internal/audio"
	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/diskmanager"
	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/jobs"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/observability"
)

// ShutdownTimeout bounds how long recordings may take to finalize on exit.
const ShutdownTimeout = 30 * time.Second

// Record opens the configured devices through the platform driver and
// records sessions until SIGINT or SIGTERM.
func Record(settings *conf.Settings) error {
	driver, err := audio.NewMalgoDriver(settings.Debug)
	if err != nil {
		return errors.New(err).
			Component("capture").
			Category(errors.CategoryAudioDevice).
			Operation("init_driver").
			Build()
	}
	defer func() {
		if err := driver.Close(); err != nil {
			GetLogger().Warn("failed to release audio driver", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return record(ctx, settings, driver, driver)
}

// record runs until ctx is done, then closes the stream, finalizes any
// active session and stops the workers.
func record(ctx context.Context, settings *conf.Settings, driver audio.Driver, backend audio.Backend) error {
	log := GetLogger()

	m, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	diskmanager.SetMetrics(m.Storage)

	if err := prepareRecordingDir(settings); err != nil {
		return err
	}

	manager := jobs.NewManager(settings.Jobs.Workers, settings.Jobs.QueueSize, jobs.WithMetrics(m.Jobs))
	manager.Start(context.WithoutCancel(ctx))
	defer func() {
		if err := manager.Stop(); err != nil {
			log.Error("job manager did not stop cleanly", logger.Error(err))
		}
	}()

	app := audio.NewApp(driver, backend, manager, settings,
		audio.WithAudioMetrics(m.Audio),
		audio.WithSessionStartHook(diskSpaceHook(settings)))
	if err := app.Open(settings.Audio); err != nil {
		return err
	}

	quit := make(chan struct{})
	var wg sync.WaitGroup
	if err := startTelemetryEndpoint(&wg, settings, m, quit); err != nil {
		_ = closeApp(app)
		return err
	}
	wg.Go(func() {
		reportSessions(app.Recorder.Sessions(), quit)
	})

	log.Info("recording armed",
		logger.Float64("threshold_start", settings.Recording.ThresholdStart),
		logger.Float64("threshold_stop", settings.Recording.ThresholdStop),
		logger.Float64("timeout_seconds", settings.Recording.Timeout),
		logger.String("path", settings.Recording.Path))

	<-ctx.Done()
	log.Info("shutting down")

	close(quit)
	err = closeApp(app)
	wg.Wait()
	return err
}

func closeApp(app *audio.App) error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return app.Close(ctx)
}

// prepareRecordingDir creates the output directory, reports leftovers from an
// interrupted run and refuses to start when the volume is nearly full.
func prepareRecordingDir(settings *conf.Settings) error {
	dir := settings.Recording.Path
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(err).
			Component("capture").
			Category(errors.CategoryFileIO).
			FileContext(dir, 0).
			Build()
	}

	orphans, err := diskmanager.FindOrphanedTempFiles(dir)
	if err != nil {
		GetLogger().Warn("failed to scan for orphaned temp files", logger.Error(err))
	}
	for _, f := range orphans {
		GetLogger().Warn("found temp file from an interrupted recording",
			logger.String("path", f.Path),
			logger.Int64("size", f.Size),
			logger.Time("modified", f.ModTime))
	}

	existing, err := diskmanager.ListRecordings(dir)
	if err != nil {
		GetLogger().Warn("failed to list existing recordings", logger.Error(err))
	}
	if len(existing) > 0 {
		var total int64
		for _, f := range existing {
			total += f.Size
		}
		GetLogger().Info("recordings directory already holds files",
			logger.String("dir", dir),
			logger.Int("count", len(existing)),
			logger.Int64("bytes", total),
			logger.String("newest", existing[len(existing)-1].Path))
	}

	_, err = diskmanager.CheckFreeSpace(dir, minFreeBytes(settings))
	return err
}

func minFreeBytes(settings *conf.Settings) uint64 {
	if settings.Recording.MinFreeMB <= 0 {
		return 0
	}
	return uint64(settings.Recording.MinFreeMB) << 20
}

// diskSpaceHook re-checks free space whenever a session starts. Low space
// is logged by the check itself; the session carries on.
func diskSpaceHook(settings *conf.Settings) func(context.Context, uint32) error {
	return func(_ context.Context, id uint32) error {
		_, err := diskmanager.CheckFreeSpace(settings.Recording.Path, minFreeBytes(settings))
		if errors.Is(err, diskmanager.ErrLowDiskSpace) {
			GetLogger().Warn("recording session started with low disk space", logger.Uint64("stream_id", uint64(id)))
			return nil
		}
		return err
	}
}

func startTelemetryEndpoint(wg *sync.WaitGroup, settings *conf.Settings, m *observability.Metrics, quit <-chan struct{}) error {
	if !settings.Telemetry.Enabled {
		return nil
	}
	endpoint, err := observability.NewEndpoint(settings, m)
	if err != nil {
		return err
	}
	return endpoint.Start(wg, quit)
}

// reportSessions logs each finished session once its file is written.
func reportSessions(sessions <-chan audio.Result, quit <-chan struct{}) {
	log := GetLogger()
	for {
		select {
		case <-quit:
			return
		case res := <-sessions:
			select {
			case <-res.Finalized.Done():
			case <-quit:
				return
			}
			if err := res.Finalized.Err(); err != nil {
				log.Error("recording session was not saved",
					logger.Uint64("stream_id", uint64(res.ID)),
					logger.Error(err))
				continue
			}
			log.Info("recording session complete",
				logger.Uint64("stream_id", uint64(res.ID)),
				logger.String("path", res.Path))
		}
	}
}
