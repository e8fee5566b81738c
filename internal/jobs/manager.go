// Package jobs runs background work on a fixed pool of workers.
//
// Jobs are taken from a bounded FIFO queue. Submit blocks while the queue is
// full rather than dropping work, and Stop drains everything already queued
// before the workers exit.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/observability/metrics"
)

// DefaultStopTimeout bounds how long Stop waits for queued jobs.
const DefaultStopTimeout = 30 * time.Second

// Stats is a snapshot of manager counters. Completed counts every finished
// job, including failed and panicked ones.
type Stats struct {
	Submitted uint64
	Completed uint64
	Failed    uint64
	Panicked  uint64
	Pending   int
	Workers   int
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records job counts and durations.
func WithMetrics(m *metrics.JobMetrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// Manager owns the worker pool and the job queue.
type Manager struct {
	workers int
	queue   chan *Job
	metrics *metrics.JobMetrics

	// mu guards started/stopped and every send on queue, so that
	// Stop can close the queue without racing a Submit.
	mu      sync.RWMutex
	started bool
	stopped bool
	group   *errgroup.Group
	cancel  context.CancelFunc

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
}

var _ Submitter = (*Manager)(nil)

// NewManager creates a manager with the given pool and queue sizes.
// Values below the minimum are raised to 1 worker and an unbuffered queue.
func NewManager(workers, queueSize int, opts ...Option) *Manager {
	m := &Manager{
		workers: max(workers, 1),
		queue:   make(chan *Job, max(queueSize, 0)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the workers. Calling Start more than once, or after Stop, is a no-op.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.stopped {
		return
	}
	m.started = true

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	group, groupCtx := errgroup.WithContext(runCtx)
	m.group = group

	for range m.workers {
		group.Go(func() error {
			m.worker(groupCtx)
			return nil
		})
	}

	GetLogger().Debug("job manager started",
		logger.Int("workers", m.workers),
		logger.Int("queue_size", cap(m.queue)))
}

// Submit queues fn for execution, blocking while the queue is full.
func (m *Manager) Submit(name string, fn Func) (*Job, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return nil, ErrManagerStopped
	}

	job := newJob(name, fn)
	m.queue <- job
	m.submitted.Add(1)

	if m.metrics != nil {
		m.metrics.RecordSubmitted(name)
		m.metrics.SetQueueDepth(len(m.queue))
	}
	return job, nil
}

// Stop drains the queue and waits for the workers, up to DefaultStopTimeout.
func (m *Manager) Stop() error {
	return m.StopWithTimeout(DefaultStopTimeout)
}

// StopWithTimeout rejects new submissions, lets the workers finish every
// queued job and waits up to timeout for them to exit.
func (m *Manager) StopWithTimeout(timeout time.Duration) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	close(m.queue)
	started := m.started
	group := m.group
	cancel := m.cancel
	m.mu.Unlock()

	if !started {
		// Nobody will ever run these
		for job := range m.queue {
			job.finish(ErrManagerStopped)
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		GetLogger().Debug("job manager stopped", logger.Uint64("completed", m.completed.Load()))
		return nil
	case <-time.After(timeout):
		cancel()
		return fmt.Errorf("%w after %v", ErrStopTimeout, timeout)
	}
}

// Stats returns a snapshot of the manager counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Submitted: m.submitted.Load(),
		Completed: m.completed.Load(),
		Failed:    m.failed.Load(),
		Panicked:  m.panicked.Load(),
		Pending:   len(m.queue),
		Workers:   m.workers,
	}
}

// worker runs jobs until the queue is closed and empty.
func (m *Manager) worker(ctx context.Context) {
	for job := range m.queue {
		m.execute(ctx, job)
	}
}

func (m *Manager) execute(ctx context.Context, job *Job) {
	start := time.Now()
	status := metrics.StatusSuccess

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %s: %v", ErrJobPanicked, job.name, r)
				status = metrics.StatusPanic
				m.panicked.Add(1)
			}
		}()
		err = job.fn(ctx)
	}()

	if err != nil {
		m.failed.Add(1)
		if status == metrics.StatusSuccess {
			status = metrics.StatusError
		}
		GetLogger().Error("job failed",
			logger.String("job", job.name),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err))
	}
	m.completed.Add(1)

	if m.metrics != nil {
		m.metrics.RecordCompleted(job.name, status, time.Since(start))
		m.metrics.SetQueueDepth(len(m.queue))
	}

	job.finish(err)
}
