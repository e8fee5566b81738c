package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/jobs"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/observability/metrics"
	"github.com/vk2gpu/music-app/internal/sound"
)

// FlushSize is the capacity of each staging buffer in bytes.
const FlushSize = 1 << 20

const (
	finalNameFormat = "audio_out_%08d.wav"
	tempNameFormat  = "temp_audio_out_%08d.raw"

	jobAppend   = "append"
	jobFinalize = "finalize"
)

var streamCounter atomic.Uint32

// NextStreamID returns a new process-wide stream identity, starting at 1.
func NextStreamID() uint32 {
	return streamCounter.Add(1)
}

// StreamFormat describes the samples pushed into an OutputStream.
type StreamFormat struct {
	Format     sound.Format
	Channels   int
	SampleRate int
}

// OutputStream writes pushed samples to a temporary file through background
// append jobs, and encodes the final container when closed.
//
// Push, FlushData and Close must be called from one goroutine. Only one
// append job is outstanding at a time, so the file sees chunks in push order.
type OutputStream struct {
	id       uint32
	dir      string
	format   StreamFormat
	jobs     jobs.Submitter
	metrics  *metrics.AudioMetrics
	file     *os.File
	tempPath string
	path     string

	staging []byte
	shadow  []byte
	length  int
	pending *jobs.Job
	final   *jobs.Job
	closed  bool

	bytesWritten atomic.Int64
}

// NewOutputStream creates the temp file for a new stream in dir. If the file
// cannot be created the failure is logged and the stream silently drops
// everything pushed to it.
func NewOutputStream(dir string, submitter jobs.Submitter, format StreamFormat, m *metrics.AudioMetrics) *OutputStream {
	id := NextStreamID()
	s := &OutputStream{
		id:       id,
		dir:      dir,
		format:   format,
		jobs:     submitter,
		metrics:  m,
		tempPath: filepath.Join(dir, fmt.Sprintf(tempNameFormat, id)),
		path:     filepath.Join(dir, fmt.Sprintf(finalNameFormat, id)),
	}

	file, err := createTemp(s.tempPath)
	if err != nil {
		GetLogger().Error("failed to create recording temp file",
			logger.Uint64("stream_id", uint64(id)),
			logger.Error(err))
		s.recordFileError("create")
		return s
	}
	s.file = file
	s.staging = make([]byte, FlushSize)
	s.shadow = make([]byte, FlushSize)
	return s
}

func createTemp(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			Operation("create_directory").
			Build()
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	return file, nil
}

// ID returns the stream identity.
func (s *OutputStream) ID() uint32 { return s.id }

// Path returns the final container path.
func (s *OutputStream) Path() string { return s.path }

// TempPath returns the path of the raw temporary file.
func (s *OutputStream) TempPath() string { return s.tempPath }

// BytesWritten returns the bytes appended to the temp file so far.
func (s *OutputStream) BytesWritten() int64 { return s.bytesWritten.Load() }

// Push appends raw sample bytes, flushing first if they do not fit.
func (s *OutputStream) Push(p []byte) {
	if s.file == nil || s.closed {
		return
	}
	if s.length+len(p) > len(s.staging) {
		s.FlushData()
	}
	// Larger than one buffer: fill and flush in chunks
	for len(p) > 0 {
		if s.length == len(s.staging) {
			s.FlushData()
		}
		n := copy(s.staging[s.length:], p)
		s.length += n
		p = p[n:]
	}
}

// PushFloat32 appends samples encoded as little-endian float32.
func (s *OutputStream) PushFloat32(samples []float32) {
	if s.file == nil || s.closed {
		return
	}
	if s.length+len(samples)*4 > len(s.staging) {
		s.FlushData()
	}
	for _, v := range samples {
		if s.length+4 > len(s.staging) {
			s.FlushData()
		}
		binary.LittleEndian.PutUint32(s.staging[s.length:], math.Float32bits(v))
		s.length += 4
	}
}

// PushInt16 appends samples encoded as little-endian int16.
func (s *OutputStream) PushInt16(samples []int16) {
	if s.file == nil || s.closed {
		return
	}
	if s.length+len(samples)*2 > len(s.staging) {
		s.FlushData()
	}
	for _, v := range samples {
		if s.length+2 > len(s.staging) {
			s.FlushData()
		}
		binary.LittleEndian.PutUint16(s.staging[s.length:], uint16(v))
		s.length += 2
	}
}

// FlushData waits for the previous append job, swaps the staging and shadow
// buffers and submits an append job for the swapped-out data.
func (s *OutputStream) FlushData() {
	if s.file == nil {
		return
	}

	start := time.Now()
	// Failures were already logged by the job
	_ = s.pending.Wait()
	wait := time.Since(start)

	s.staging, s.shadow = s.shadow, s.staging
	n := s.length
	s.length = 0
	s.pending = nil
	if n == 0 {
		return
	}

	chunk := s.shadow[:n]
	job, err := s.jobs.Submit(jobAppend, func(context.Context) error {
		return s.appendChunk(chunk)
	})
	if err != nil {
		GetLogger().Error("failed to submit append job",
			logger.Uint64("stream_id", uint64(s.id)),
			logger.Error(err))
		s.recordFileError(jobAppend)
		return
	}
	s.pending = job
	if s.metrics != nil {
		s.metrics.RecordFlush(n, wait)
	}
}

// appendChunk runs on a job worker.
func (s *OutputStream) appendChunk(chunk []byte) error {
	n, err := s.file.Write(chunk)
	s.bytesWritten.Add(int64(n))
	if err != nil {
		s.recordFileError(jobAppend)
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			FileContext(s.tempPath, int64(n)).
			Context("stream_id", s.id).
			Build()
	}
	return nil
}

// Close flushes the remaining data and submits the finalize job, which waits
// for the last append, encodes the container and removes the temp file.
// The returned job may be waited on; it is nil if nothing could be written.
// Calling Close again returns the same job.
func (s *OutputStream) Close() *jobs.Job {
	if s.closed {
		return s.final
	}
	s.FlushData()
	s.closed = true
	if s.file == nil {
		return nil
	}

	last := s.pending
	job, err := s.jobs.Submit(jobFinalize, func(context.Context) error {
		_ = last.Wait()
		return s.finalize()
	})
	if err != nil {
		GetLogger().Error("failed to submit finalize job",
			logger.Uint64("stream_id", uint64(s.id)),
			logger.Error(err))
		s.recordFileError(jobFinalize)
		_ = last.Wait()
		s.abandon()
		return nil
	}
	s.final = job
	return job
}

// abandon releases the temp file when no finalize job can run.
func (s *OutputStream) abandon() {
	if err := s.file.Close(); err != nil {
		GetLogger().Warn("failed to close temp file",
			logger.String("path", s.tempPath),
			logger.Error(err))
	}
	if err := os.Remove(s.tempPath); err != nil && !os.IsNotExist(err) {
		GetLogger().Warn("failed to remove temp file",
			logger.String("path", s.tempPath),
			logger.Error(err))
	}
}

// finalize runs on a job worker once every append has completed.
func (s *OutputStream) finalize() error {
	if err := s.file.Close(); err != nil {
		s.recordFileError(jobFinalize)
		return fmt.Errorf("closing temp file: %w", err)
	}

	raw, err := os.ReadFile(s.tempPath)
	if err != nil {
		s.recordFileError(jobFinalize)
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			FileContext(s.tempPath, 0).
			Build()
	}

	frameBytes := max(s.format.Channels, 1) * s.format.Format.BytesPerSample()
	frames := 0
	if frameBytes > 0 {
		frames = len(raw) / frameBytes
	}
	buf := sound.Buffer{
		Channels:    s.format.Channels,
		SampleRate:  s.format.SampleRate,
		SampleCount: frames,
		Format:      s.format.Format,
		Data:        raw[:frames*frameBytes],
	}
	if err := sound.SaveFile(s.path, buf); err != nil {
		s.recordFileError(jobFinalize)
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryFileIO).
			FileContext(s.path, int64(len(buf.Data))).
			Build()
	}

	if err := os.Remove(s.tempPath); err != nil {
		GetLogger().Warn("failed to remove temp file",
			logger.String("path", s.tempPath),
			logger.Error(err))
	}

	GetLogger().Info("recording saved",
		logger.String("path", s.path),
		logger.Int("frames", frames),
		logger.Int("channels", s.format.Channels),
		logger.Int("sample_rate", s.format.SampleRate))
	return nil
}

func (s *OutputStream) recordFileError(op string) {
	if s.metrics != nil {
		s.metrics.RecordFileError(op)
	}
}
