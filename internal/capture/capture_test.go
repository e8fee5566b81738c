package capture

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk2gpu/music-app/internal/audio"
	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/diskmanager"
	"github.com/vk2gpu/music-app/internal/sound"
)

const (
	testTimeout = 5 * time.Second
	testFrames  = 512
)

type stubDriver struct{}

func (stubDriver) Devices() ([]audio.DriverDevice, error) {
	return []audio.DriverDevice{
		{Name: "Line In", MaxInputs: 2, Backend: "stub"},
		{Name: "Speakers", MaxOutputs: 2, Backend: "stub"},
	}, nil
}

type stubStream struct{}

func (stubStream) Start() error { return nil }
func (stubStream) Stop() error  { return nil }
func (stubStream) Close() error { return nil }

// stubBackend exposes the period callback of the last opened stream.
type stubBackend struct {
	mu sync.Mutex
	cb audio.PeriodFunc
}

func (b *stubBackend) OpenStream(_ audio.StreamConfig, cb audio.PeriodFunc) (audio.Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cb = cb
	return stubStream{}, nil
}

func (b *stubBackend) callback() audio.PeriodFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cb
}

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	return &conf.Settings{
		Audio: conf.AudioSettings{SampleRate: 48000, BufferSize: testFrames, Clip: true},
		Recording: conf.RecordingSettings{
			Path:           filepath.Join(t.TempDir(), "recordings"),
			ThresholdStart: 0.1,
			ThresholdStop:  0.1,
			Timeout:        2,
			AutoStop:       true,
			Format:         conf.FormatS16,
		},
		Jobs: conf.JobSettings{Workers: 2, QueueSize: 8},
	}
}

func level(v float32) [][]float32 {
	ch := make([]float32, testFrames)
	for i := range ch {
		ch[i] = v
	}
	return [][]float32{ch, make([]float32, testFrames)}
}

func TestRecordSavesSessionOnShutdown(t *testing.T) {
	settings := testSettings(t)
	settings.Telemetry = conf.TelemetrySettings{Enabled: true, Listen: "127.0.0.1:0"}
	backend := &stubBackend{}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- record(ctx, settings, stubDriver{}, backend)
	}()

	require.Eventually(t, func() bool { return backend.callback() != nil }, testTimeout, 10*time.Millisecond)
	cb := backend.callback()
	out := [][]float32{make([]float32, testFrames), make([]float32, testFrames)}
	cb(level(0.5), out, testFrames)
	cb(level(0), out, testFrames)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(testTimeout):
		require.Fail(t, "record did not shut down")
	}

	files, err := diskmanager.ListRecordings(settings.Recording.Path)
	require.NoError(t, err)
	require.Len(t, files, 1)

	buf, err := sound.LoadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, sound.FormatS16, buf.Format)
	assert.Equal(t, 2*testFrames, buf.SampleCount)

	orphans, err := diskmanager.FindOrphanedTempFiles(settings.Recording.Path)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestRecordDeviceNotFound(t *testing.T) {
	settings := testSettings(t)
	settings.Audio.InputDevice = "Missing"

	err := record(t.Context(), settings, stubDriver{}, &stubBackend{})
	require.ErrorIs(t, err, audio.ErrDeviceNotFound)
}

func TestRecordRefusesLowDiskSpace(t *testing.T) {
	settings := testSettings(t)
	settings.Recording.MinFreeMB = 1 << 40 // more than any test volume

	err := record(t.Context(), settings, stubDriver{}, &stubBackend{})
	require.ErrorIs(t, err, diskmanager.ErrLowDiskSpace)
}

func TestPlayStopsOnCancel(t *testing.T) {
	settings := testSettings(t)
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, sound.SaveFile(path, sound.NewFloat32Buffer([]float32{0.5, -0.5}, 1, 48000)))

	ctx, cancel := context.WithCancel(t.Context())
	backend := &stubBackend{}
	done := make(chan error, 1)
	go func() {
		done <- play(ctx, settings, path, stubDriver{}, backend)
	}()

	require.Eventually(t, func() bool { return backend.callback() != nil }, testTimeout, 10*time.Millisecond)
	out := [][]float32{make([]float32, 4), make([]float32, 4)}
	backend.callback()([][]float32{make([]float32, 4)}, out, 4)
	assert.InDeltaSlice(t, []float32{0.5, -0.5, 0.5, -0.5}, out[1], 1e-7)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(testTimeout):
		require.Fail(t, "play did not stop")
	}
}

func TestPlayMissingFile(t *testing.T) {
	err := play(t.Context(), testSettings(t), filepath.Join(t.TempDir(), "none.wav"), stubDriver{}, &stubBackend{})
	require.Error(t, err)
}

func TestListDevices(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listDevices(stubDriver{}, &out))

	text := out.String()
	assert.Contains(t, text, "Inputs:")
	assert.Contains(t, text, "Outputs:")
	assert.Contains(t, text, "Line In")
	assert.Contains(t, text, "Speakers")
	assert.Contains(t, text, audio.NewDeviceID("Line In").String())
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	require.NoError(t, sound.SaveFile(in, sound.NewFloat32Buffer([]float32{0.5, -1, 0.25, 0}, 2, 44100)))

	tests := []struct {
		name   string
		format sound.Format
		want   sound.Format
	}{
		{"keep format", sound.FormatUnknown, sound.FormatF32},
		{"to s16", sound.FormatS16, sound.FormatS16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".wav")
			require.NoError(t, Convert(in, out, tt.format))

			buf, err := sound.LoadFile(out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.Format)
			assert.Equal(t, 2, buf.Channels)
			assert.Equal(t, 44100, buf.SampleRate)
			assert.Equal(t, 2, buf.SampleCount)
		})
	}
}

func TestConvertS16ToF32(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	require.NoError(t, sound.SaveFile(in, sound.NewInt16Buffer([]int16{16384, -16384}, 1, 8000)))

	out := filepath.Join(dir, "out.wav")
	require.NoError(t, Convert(in, out, sound.FormatF32))

	buf, err := sound.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sound.FormatF32, buf.Format)
	assert.Equal(t, []float32{0.5, -0.5}, buf.Float32s())
}

func TestConvertUndecodable(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "junk.bin")
	require.NoError(t, sound.SaveFile(in, sound.NewFloat32Buffer(nil, 1, 48000)))

	err := Convert(in, filepath.Join(dir, "out.wav"), sound.FormatUnknown)
	require.ErrorIs(t, err, ErrUndecodable)
}

func TestSelectDevices(t *testing.T) {
	settings := testSettings(t)
	var saved *conf.Settings
	save := func(s *conf.Settings) error {
		saved = s
		return nil
	}

	var out bytes.Buffer
	require.NoError(t, selectDevices(stubDriver{}, settings, "0", "Speakers", &out, save))

	require.Same(t, settings, saved)
	assert.Equal(t, audio.NewDeviceID("Line In").String(), settings.Audio.InputDevice)
	assert.Equal(t, audio.NewDeviceID("Speakers").String(), settings.Audio.OutputDevice)
	assert.Contains(t, out.String(), "Line In")
	assert.Contains(t, out.String(), "Speakers")
}

func TestSelectDevicesByID(t *testing.T) {
	settings := testSettings(t)
	id := audio.NewDeviceID("Speakers").String()

	require.NoError(t, selectDevices(stubDriver{}, settings, "", id, &bytes.Buffer{}, func(*conf.Settings) error { return nil }))
	assert.Empty(t, settings.Audio.InputDevice)
	assert.Equal(t, id, settings.Audio.OutputDevice)
}

func TestSelectDevicesUnknown(t *testing.T) {
	settings := testSettings(t)
	saveCalled := false

	err := selectDevices(stubDriver{}, settings, "Headset", "", &bytes.Buffer{}, func(*conf.Settings) error {
		saveCalled = true
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrDeviceNotFound)
	assert.False(t, saveCalled)
	assert.Empty(t, settings.Audio.InputDevice)
}
