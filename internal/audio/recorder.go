package audio

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/jobs"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/observability/metrics"
	"github.com/vk2gpu/music-app/internal/sound"
)

// Default recorder tunables.
const (
	DefaultThresholdStart = 0.1
	DefaultThresholdStop  = 0.1
	DefaultTimeout        = 2.0 // seconds
)

// sessionBacklog is the capacity of the Sessions channel.
const sessionBacklog = 16

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	Dir            string
	SampleRate     int
	Format         sound.Format // FormatF32 or FormatS16
	ThresholdStart float64
	ThresholdStop  float64
	Timeout        float64 // seconds of quiet before an automatic stop
	AutoStop       bool
	Metrics        *metrics.AudioMetrics

	// OnSessionStart runs as a background job when a session begins.
	OnSessionStart func(ctx context.Context, id uint32) error
}

// DefaultRecorderOptions returns options with the default tunables.
func DefaultRecorderOptions(dir string, sampleRate int) RecorderOptions {
	return RecorderOptions{
		Dir:            dir,
		SampleRate:     sampleRate,
		Format:         sound.FormatF32,
		ThresholdStart: DefaultThresholdStart,
		ThresholdStop:  DefaultThresholdStop,
		Timeout:        DefaultTimeout,
		AutoStop:       true,
	}
}

// Result identifies a finished session. Finalized completes once the
// container file has been written.
type Result struct {
	ID        uint32
	Path      string
	Finalized *jobs.Job
}

// Recorder starts a session when the smoothed input peak crosses the start
// threshold, or on Start, and stops it after Timeout seconds below the stop
// threshold, or on Stop. Each session streams the first input channel to its
// own OutputStream.
type Recorder struct {
	stats     *StatsProbe
	jobs      jobs.Submitter
	dir       string
	rate      int
	format    sound.Format
	metrics   *metrics.AudioMetrics
	onSession func(ctx context.Context, id uint32) error

	thresholdStart atomicFloat
	thresholdStop  atomicFloat
	timeout        atomicFloat
	autoStop       atomic.Bool

	startSignal atomic.Bool
	stopSignal  atomic.Bool

	// procMu serializes OnAudio with Close. It is uncontended while streaming.
	procMu    sync.Mutex
	stream    *OutputStream
	countdown float64
	scratch   []int16

	recording atomic.Bool
	timeLeft  atomicFloat

	mu         sync.Mutex
	results    []uint32
	finalizers []*jobs.Job
	sessions   chan Result
}

var _ Consumer = (*Recorder)(nil)

// NewRecorder returns an idle recorder reading levels from stats.
func NewRecorder(stats *StatsProbe, submitter jobs.Submitter, opts RecorderOptions) *Recorder {
	r := &Recorder{
		stats:     stats,
		jobs:      submitter,
		dir:       opts.Dir,
		rate:      opts.SampleRate,
		format:    opts.Format,
		metrics:   opts.Metrics,
		onSession: opts.OnSessionStart,
		sessions:  make(chan Result, sessionBacklog),
	}
	if r.rate <= 0 {
		r.rate = 48000
	}
	if r.format != sound.FormatS16 {
		r.format = sound.FormatF32
	}
	r.thresholdStart.Store(opts.ThresholdStart)
	r.thresholdStop.Store(opts.ThresholdStop)
	r.timeout.Store(opts.Timeout)
	r.autoStop.Store(opts.AutoStop)
	r.countdown = opts.Timeout
	r.timeLeft.Store(opts.Timeout)
	return r
}

// SetThresholdStart sets the smoothed peak above which an idle recorder starts.
func (r *Recorder) SetThresholdStart(v float64) { r.thresholdStart.Store(v) }

// SetThresholdStop sets the smoothed peak above which the stop countdown is reset.
func (r *Recorder) SetThresholdStop(v float64) { r.thresholdStop.Store(v) }

// SetTimeout sets the quiet time in seconds before an automatic stop.
func (r *Recorder) SetTimeout(seconds float64) { r.timeout.Store(seconds) }

// SetAutoStop enables or disables the automatic stop.
func (r *Recorder) SetAutoStop(v bool) { r.autoStop.Store(v) }

// Start asks the recorder to begin a session on the next period.
func (r *Recorder) Start() { r.startSignal.Store(true) }

// Stop asks the recorder to end the active session on the next period.
func (r *Recorder) Stop() { r.stopSignal.Store(true) }

// IsRecording reports whether a session is active.
func (r *Recorder) IsRecording() bool { return r.recording.Load() }

// TimeLeft returns the seconds remaining before an automatic stop.
func (r *Recorder) TimeLeft() float64 { return r.timeLeft.Load() }

// Results returns a copy of the finished session identities in order.
func (r *Recorder) Results() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.results)
}

// Sessions delivers finished sessions. Results that do not fit are dropped
// from the channel but still appear in Results.
func (r *Recorder) Sessions() <-chan Result {
	return r.sessions
}

// OnAudio implements Consumer.
func (r *Recorder) OnAudio(in, _ [][]float32, frames int) {
	if len(in) == 0 || frames == 0 {
		return
	}

	r.procMu.Lock()
	defer r.procMu.Unlock()

	dt := float64(frames) / float64(r.rate)

	// A start request made while a session is active is consumed and dropped.
	started := r.startSignal.CompareAndSwap(true, false)
	if r.stream == nil {
		if started || r.stats.MaxSmoothed() > r.thresholdStart.Load() {
			r.begin()
		}
	}
	if r.stream == nil {
		return
	}

	stop := false
	reason := metrics.ReasonAutoStop
	timeout := r.timeout.Load()
	if r.autoStop.Load() {
		if r.stats.MaxSmoothed() > r.thresholdStop.Load() {
			r.countdown = timeout
		} else {
			r.countdown -= dt
			if r.countdown <= 0 {
				stop = true
			}
		}
	}
	if r.stopSignal.CompareAndSwap(true, false) {
		stop = true
		reason = metrics.ReasonManual
	}

	r.push(in[0][:frames])

	if stop {
		r.end(reason)
	}
	r.timeLeft.Store(r.countdown)
}

func (r *Recorder) push(samples []float32) {
	if r.format == sound.FormatS16 {
		if cap(r.scratch) < len(samples) {
			r.scratch = make([]int16, len(samples))
		}
		out := r.scratch[:len(samples)]
		for i, s := range samples {
			out[i] = sound.Float32ToInt16(s)
		}
		r.stream.PushInt16(out)
		return
	}
	r.stream.PushFloat32(samples)
}

// begin opens a new session. Called with procMu held.
func (r *Recorder) begin() {
	r.stream = NewOutputStream(r.dir, r.jobs, StreamFormat{
		Format:     r.format,
		Channels:   1,
		SampleRate: r.rate,
	}, r.metrics)
	r.countdown = r.timeout.Load()
	r.recording.Store(true)

	if r.metrics != nil {
		r.metrics.RecordSessionStarted()
	}
	GetLogger().Info("recording session started",
		logger.Uint64("stream_id", uint64(r.stream.ID())),
		logger.Float64("max_smoothed", r.stats.MaxSmoothed()))

	if r.onSession != nil {
		id := r.stream.ID()
		hook := r.onSession
		if _, err := r.jobs.Submit("session_start", func(ctx context.Context) error {
			return hook(ctx, id)
		}); err != nil {
			GetLogger().Warn("failed to submit session start hook", logger.Error(err))
		}
	}
}

// end closes the active session. Called with procMu held.
func (r *Recorder) end(reason string) {
	stream := r.stream
	r.stream = nil
	r.recording.Store(false)

	job := stream.Close()
	result := Result{ID: stream.ID(), Path: stream.Path(), Finalized: job}

	r.mu.Lock()
	r.results = append(r.results, result.ID)
	if job != nil {
		r.finalizers = append(r.finalizers, job)
	}
	r.mu.Unlock()

	select {
	case r.sessions <- result:
	default:
	}

	r.countdown = r.timeout.Load()
	if r.metrics != nil {
		r.metrics.RecordSessionFinished(reason)
	}
	GetLogger().Info("recording session finished",
		logger.Uint64("stream_id", uint64(result.ID)),
		logger.String("reason", reason))
}

// Wait blocks until every finalization handed out so far has completed,
// returning the joined job errors, or ctx.Err if ctx ends first.
func (r *Recorder) Wait(ctx context.Context) error {
	r.mu.Lock()
	pending := slices.Clone(r.finalizers)
	r.mu.Unlock()

	var errs []error
	for _, job := range pending {
		if err := job.WaitContext(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close ends an active session without waiting for another period, then
// waits for all finalizations.
func (r *Recorder) Close(ctx context.Context) error {
	r.procMu.Lock()
	if r.stream != nil {
		r.end(metrics.ReasonShutdown)
		r.timeLeft.Store(r.countdown)
	}
	r.procMu.Unlock()
	return r.Wait(ctx)
}
