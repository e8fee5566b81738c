package jobs

import (
	"context"
	"time"
)

// Func is the body of a job. The context is cancelled when the context
// passed to Manager.Start is cancelled.
type Func func(ctx context.Context) error

// Submitter accepts jobs for background execution.
type Submitter interface {
	Submit(name string, fn Func) (*Job, error)
}

// Job is a handle to a submitted unit of work. A nil *Job is treated as
// already complete, so callers can wait on a handle that was never assigned.
type Job struct {
	name      string
	fn        Func
	submitted time.Time
	done      chan struct{}
	err       error
}

func newJob(name string, fn Func) *Job {
	return &Job{
		name:      name,
		fn:        fn,
		submitted: time.Now(),
		done:      make(chan struct{}),
	}
}

// closedChan is returned by Done on a nil job.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Name returns the name given at submission.
func (j *Job) Name() string {
	if j == nil {
		return ""
	}
	return j.name
}

// Done returns a channel that is closed once the job has finished.
func (j *Job) Done() <-chan struct{} {
	if j == nil {
		return closedChan
	}
	return j.done
}

// Wait blocks until the job has finished and returns its error.
func (j *Job) Wait() error {
	if j == nil {
		return nil
	}
	<-j.done
	return j.err
}

// WaitContext blocks until the job has finished or ctx is done.
func (j *Job) WaitContext(ctx context.Context) error {
	if j == nil {
		return nil
	}
	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the job error, or nil while the job is still pending.
func (j *Job) Err() error {
	if j == nil {
		return nil
	}
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// finish records the result and releases waiters. Called exactly once.
func (j *Job) finish(err error) {
	j.err = err
	close(j.done)
}
