package audio

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/jobs"
)

const (
	testTimeout = 5 * time.Second
	testRate    = 48000
	testFrames  = 512
)

// fakeDriver reports a fixed device list.
type fakeDriver struct {
	devices []DriverDevice
	err     error
	calls   int
}

func (d *fakeDriver) Devices() ([]DriverDevice, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.devices, nil
}

func defaultDevices() []DriverDevice {
	return []DriverDevice{
		{Name: "USB Interface", MaxInputs: 4, MaxOutputs: 4, Backend: "fake", NativeIndex: 0},
		{Name: "Built-in Microphone", MaxInputs: 2, Backend: "fake", NativeIndex: 1},
		{Name: "Built-in Output", MaxOutputs: 2, Backend: "fake", NativeIndex: 2},
	}
}

// fakeStream records lifecycle calls.
type fakeStream struct {
	startErr error
	stopErr  error
	closeErr error

	started int
	stopped int
	closed  int
}

func (s *fakeStream) Start() error {
	s.started++
	return s.startErr
}

func (s *fakeStream) Stop() error {
	s.stopped++
	return s.stopErr
}

func (s *fakeStream) Close() error {
	s.closed++
	return s.closeErr
}

// fakeBackend hands out fakeStreams and lets tests drive the period callback.
type fakeBackend struct {
	mu       sync.Mutex
	openErr  error
	startErr error
	streams  []*fakeStream
	configs  []StreamConfig
	callback PeriodFunc
}

func (b *fakeBackend) OpenStream(cfg StreamConfig, cb PeriodFunc) (Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configs = append(b.configs, cfg)
	if b.openErr != nil {
		return nil, b.openErr
	}
	s := &fakeStream{startErr: b.startErr}
	b.streams = append(b.streams, s)
	b.callback = cb
	return s, nil
}

func (b *fakeBackend) lastStream() *fakeStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.streams) == 0 {
		return nil
	}
	return b.streams[len(b.streams)-1]
}

// period runs one callback with the given buffers.
func (b *fakeBackend) period(t *testing.T, in, out [][]float32, frames int) {
	t.Helper()
	b.mu.Lock()
	cb := b.callback
	b.mu.Unlock()
	require.NotNil(t, cb, "no stream opened")
	cb(in, out, frames)
}

// planar allocates channels zeroed buffers of frames samples.
func planar(channels, frames int) [][]float32 {
	p := make([][]float32, channels)
	for i := range p {
		p[i] = make([]float32, frames)
	}
	return p
}

// constant returns a single-channel period filled with v.
func constant(v float32, frames int) [][]float32 {
	p := planar(1, frames)
	for i := range p[0] {
		p[0][i] = v
	}
	return p
}

// recordingConsumer captures what it is handed.
type recordingConsumer struct {
	name     string
	order    *[]string
	inCount  int
	outCount int
	frames   int
	write    float32
}

func (c *recordingConsumer) OnAudio(in, out [][]float32, frames int) {
	if c.order != nil {
		*c.order = append(*c.order, c.name)
	}
	c.inCount = len(in)
	c.outCount = len(out)
	c.frames = frames
	for _, ch := range out {
		for i := range ch {
			ch[i] += c.write
		}
	}
}

// newTestManager returns a running job manager stopped on cleanup.
func newTestManager(t *testing.T) *jobs.Manager {
	t.Helper()
	m := jobs.NewManager(2, 16)
	m.Start(t.Context())
	t.Cleanup(func() {
		require.NoError(t, m.StopWithTimeout(testTimeout))
	})
	return m
}

// failingSubmitter rejects every job.
type failingSubmitter struct{}

func (failingSubmitter) Submit(string, jobs.Func) (*jobs.Job, error) {
	return nil, errors.NewStd("queue closed")
}
