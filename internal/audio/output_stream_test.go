package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk2gpu/music-app/internal/observability/metrics"
	"github.com/vk2gpu/music-app/internal/sound"
)

var monoF32 = StreamFormat{Format: sound.FormatF32, Channels: 1, SampleRate: testRate}

func TestNextStreamIDIncrements(t *testing.T) {
	a := NextStreamID()
	b := NextStreamID()
	assert.Equal(t, a+1, b)
	assert.NotZero(t, a)
}

func TestNextStreamIDConcurrent(t *testing.T) {
	const workers, perWorker = 8, 200

	got := make([][]uint32, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Go(func() {
			ids := make([]uint32, perWorker)
			for i := range ids {
				ids[i] = NextStreamID()
			}
			got[w] = ids
		})
	}
	wg.Wait()

	var all []uint32
	for _, ids := range got {
		assert.True(t, slices.IsSorted(ids), "ids seen by one caller increase")
		for i := 1; i < len(ids); i++ {
			assert.Less(t, ids[i-1], ids[i])
		}
		all = append(all, ids...)
	}
	slices.Sort(all)
	assert.Len(t, slices.Compact(slices.Clone(all)), workers*perWorker, "no identity handed out twice")
	assert.Equal(t, all[0]+uint32(len(all)-1), all[len(all)-1], "identities are contiguous")
}

func TestOutputStreamNaming(t *testing.T) {
	dir := t.TempDir()
	s := NewOutputStream(dir, newTestManager(t), monoF32, nil)

	assert.Equal(t, filepath.Join(dir, fmt.Sprintf("audio_out_%08d.wav", s.ID())), s.Path())
	assert.Equal(t, filepath.Join(dir, fmt.Sprintf("temp_audio_out_%08d.raw", s.ID())), s.TempPath())
	assert.FileExists(t, s.TempPath(), "temp file is created eagerly")

	require.NoError(t, s.Close().Wait())
}

func TestOutputStreamWritesWAV(t *testing.T) {
	dir := t.TempDir()
	s := NewOutputStream(dir, newTestManager(t), monoF32, nil)

	s.PushFloat32([]float32{0.1, 0.2})
	s.PushFloat32([]float32{-0.3})
	job := s.Close()
	require.NotNil(t, job)
	require.NoError(t, job.Wait())

	buf, err := sound.LoadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, sound.FormatF32, buf.Format)
	assert.Equal(t, 1, buf.Channels)
	assert.Equal(t, testRate, buf.SampleRate)
	assert.Equal(t, 3, buf.SampleCount)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, -0.3}, buf.Float32s(), 1e-7)

	assert.NoFileExists(t, s.TempPath())
	assert.Equal(t, int64(12), s.BytesWritten())
}

func TestOutputStreamInt16(t *testing.T) {
	dir := t.TempDir()
	format := StreamFormat{Format: sound.FormatS16, Channels: 1, SampleRate: 22050}
	s := NewOutputStream(dir, newTestManager(t), format, nil)

	s.PushInt16([]int16{1, -2, 32767})
	require.NoError(t, s.Close().Wait())

	buf, err := sound.LoadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, sound.FormatS16, buf.Format)
	assert.Equal(t, 22050, buf.SampleRate)
	assert.Equal(t, []byte{1, 0, 0xFE, 0xFF, 0xFF, 0x7F}, buf.Data)
}

func TestOutputStreamChunksLargePushInOrder(t *testing.T) {
	dir := t.TempDir()
	reg := prometheus.NewRegistry()
	m, err := metrics.NewAudioMetrics(reg)
	require.NoError(t, err)

	s := NewOutputStream(dir, newTestManager(t), StreamFormat{Format: sound.FormatS16, Channels: 1, SampleRate: testRate}, m)

	// Two and a half staging buffers of a repeating byte pattern
	total := FlushSize*2 + FlushSize/2
	payload := make([]byte, total)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	s.Push(payload[:10])
	s.Push(payload[10:])
	require.NoError(t, s.Close().Wait())

	buf, err := sound.LoadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, total/2, buf.SampleCount)
	assert.Equal(t, payload, buf.Data)
	assert.Equal(t, int64(total), s.BytesWritten())

	flushed, err := testutil.GatherAndCount(reg, "recorder_flush_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, flushed)
}

func TestOutputStreamDropsPartialFrame(t *testing.T) {
	dir := t.TempDir()
	stereo := StreamFormat{Format: sound.FormatS16, Channels: 2, SampleRate: testRate}
	s := NewOutputStream(dir, newTestManager(t), stereo, nil)

	s.Push([]byte{1, 0, 2, 0, 3, 0})
	require.NoError(t, s.Close().Wait())

	buf, err := sound.LoadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, buf.SampleCount)
	assert.Equal(t, []byte{1, 0, 2, 0}, buf.Data)
}

func TestOutputStreamEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewOutputStream(dir, newTestManager(t), monoF32, nil)
	require.NoError(t, s.Close().Wait())

	buf, err := sound.LoadFile(s.Path())
	require.NoError(t, err)
	assert.Zero(t, buf.SampleCount)
}

func TestOutputStreamCloseIsIdempotent(t *testing.T) {
	s := NewOutputStream(t.TempDir(), newTestManager(t), monoF32, nil)
	first := s.Close()
	second := s.Close()
	assert.Same(t, first, second)
	require.NoError(t, first.Wait())

	s.PushFloat32([]float32{1})
	assert.Zero(t, s.BytesWritten(), "pushes after close are dropped")
}

func TestOutputStreamSinkOnCreateFailure(t *testing.T) {
	// A regular file where the directory should be
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	reg := prometheus.NewRegistry()
	m, err := metrics.NewAudioMetrics(reg)
	require.NoError(t, err)

	s := NewOutputStream(blocker, newTestManager(t), monoF32, m)
	s.PushFloat32(make([]float32, 1024))
	s.FlushData()
	assert.Nil(t, s.Close())
	assert.Zero(t, s.BytesWritten())

	errs, err := testutil.GatherAndCount(reg, "recorder_file_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, errs)
}

func TestOutputStreamSubmitFailure(t *testing.T) {
	s := NewOutputStream(t.TempDir(), failingSubmitter{}, monoF32, nil)
	s.PushFloat32([]float32{0.5})
	assert.Nil(t, s.Close(), "no finalize job when the queue rejects it")
	assert.Zero(t, s.BytesWritten())

	require.ErrorIs(t, s.file.Close(), os.ErrClosed, "temp file handle released")
	assert.NoFileExists(t, s.tempPath)
}
