package audio

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/observability/metrics"
)

func newTestEngine(t *testing.T, backend *fakeBackend, opts ...EngineOption) (*Engine, *Registry) {
	t.Helper()
	catalog := NewCatalog(&fakeDriver{devices: defaultDevices()})
	require.NoError(t, catalog.Enumerate())
	registry := NewRegistry()
	return NewEngine(catalog, registry, backend, opts...), registry
}

func TestOpenDefaults(t *testing.T) {
	backend := &fakeBackend{}
	e, _ := newTestEngine(t, backend)

	require.NoError(t, e.Open(StreamSettings{}))
	assert.True(t, e.IsOpen())

	cfg, err := e.Config()
	require.NoError(t, err)
	assert.Equal(t, "Built-in Microphone", cfg.Input.Name)
	assert.Equal(t, "Built-in Output", cfg.Output.Name)
	assert.Equal(t, 2, cfg.InputChannels)
	assert.Equal(t, 2, cfg.OutputChannels)
	assert.Equal(t, conf.SampleRate, cfg.SampleRate)
	assert.Equal(t, conf.BufferSize, cfg.BufferSize)
	assert.True(t, cfg.LowLatency)
	assert.Equal(t, 1, backend.lastStream().started)
}

func TestOpenSelectsDevicesByID(t *testing.T) {
	backend := &fakeBackend{}
	e, _ := newTestEngine(t, backend)

	usb := NewDeviceID("USB Interface")
	require.NoError(t, e.Open(StreamSettings{
		InputDevice:  usb,
		OutputDevice: usb,
		SampleRate:   44100,
		BufferSize:   256,
	}))

	cfg, err := e.Config()
	require.NoError(t, err)
	assert.Equal(t, "USB Interface", cfg.Input.Name)
	assert.Equal(t, 4, cfg.InputChannels)
	assert.Equal(t, 4, cfg.OutputChannels)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 256, cfg.BufferSize)
}

func TestOpenDeviceNotFound(t *testing.T) {
	backend := &fakeBackend{}
	e, _ := newTestEngine(t, backend)

	err := e.Open(StreamSettings{InputDevice: NewDeviceID("Missing")})
	require.ErrorIs(t, err, ErrDeviceNotFound)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, backend.configs, "backend must not be asked to open")
	assert.False(t, e.IsOpen())

	err = e.Open(StreamSettings{OutputDevice: NewDeviceID("Built-in Microphone")})
	require.ErrorIs(t, err, ErrDeviceNotFound, "input-only device is not an output")
}

func TestOpenFailure(t *testing.T) {
	driverErr := errors.NewStd("device busy")
	backend := &fakeBackend{openErr: driverErr}
	e, _ := newTestEngine(t, backend)

	err := e.Open(StreamSettings{})
	require.ErrorIs(t, err, ErrStreamOpenFailed)
	require.ErrorIs(t, err, driverErr)
	assert.False(t, e.IsOpen())

	_, err = e.Config()
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestStartFailureClosesStream(t *testing.T) {
	backend := &fakeBackend{startErr: errors.NewStd("start refused")}
	e, _ := newTestEngine(t, backend)

	err := e.Open(StreamSettings{})
	require.ErrorIs(t, err, ErrStreamStartFailed)
	assert.False(t, e.IsOpen())

	s := backend.lastStream()
	require.NotNil(t, s)
	assert.Equal(t, 1, s.closed)
}

func TestReopenClosesPrevious(t *testing.T) {
	backend := &fakeBackend{}
	e, _ := newTestEngine(t, backend)

	require.NoError(t, e.Open(StreamSettings{}))
	first := backend.lastStream()
	require.NoError(t, e.Open(StreamSettings{}))

	assert.Equal(t, 1, first.stopped)
	assert.Equal(t, 1, first.closed)
	assert.Len(t, backend.streams, 2)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close(), "closing twice is a no-op")
	assert.Equal(t, 1, backend.lastStream().closed)
}

func TestProcessZeroesDispatchesAndClips(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewAudioMetrics(reg)
	require.NoError(t, err)

	backend := &fakeBackend{}
	e, registry := newTestEngine(t, backend, WithEngineMetrics(m))
	registry.Register(&recordingConsumer{write: 0.75}, 0x0, 0x3)
	registry.Register(&recordingConsumer{write: 0.75}, 0x0, 0x1)
	require.NoError(t, e.Open(StreamSettings{}))

	out := planar(2, 4)
	for i := range out[1] {
		out[1][i] = 9 // stale data from the previous period
	}
	backend.period(t, planar(2, 4), out, 4)

	assert.Equal(t, []float32{1, 1, 1, 1}, out[0], "1.5 is clipped")
	assert.Equal(t, []float32{0.75, 0.75, 0.75, 0.75}, out[1])

	for _, name := range []string{"audio_clipped_samples_total", "audio_periods_total", "audio_frames_total"} {
		count, err := testutil.GatherAndCount(reg, name)
		require.NoError(t, err)
		assert.Equal(t, 1, count, name)
	}
	opens, err := testutil.GatherAndCount(reg, "audio_stream_opens_total")
	require.NoError(t, err)
	assert.Equal(t, 1, opens)
}

func TestClipDisabled(t *testing.T) {
	backend := &fakeBackend{}
	e, registry := newTestEngine(t, backend, WithClip(false))
	registry.Register(&recordingConsumer{write: 2}, 0x0, 0x1)
	require.NoError(t, e.Open(StreamSettings{}))

	out := planar(1, 2)
	backend.period(t, nil, out, 2)
	assert.Equal(t, []float32{2, 2}, out[0])
}

func TestClipOutputsCounts(t *testing.T) {
	out := [][]float32{{-2, 0.5, 1.5}, {1, -1, -1.01}}
	assert.Equal(t, 3, clipOutputs(out, 3))
	assert.Equal(t, []float32{-1, 0.5, 1}, out[0])
	assert.Equal(t, []float32{1, -1, -1}, out[1])
}
