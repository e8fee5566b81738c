package jobs

import "github.com/vk2gpu/music-app/internal/errors"

var (
	// ErrManagerStopped is returned by Submit after Stop, and is the error of
	// jobs that were still queued when an unstarted manager was stopped.
	ErrManagerStopped = errors.New(errors.NewStd("job manager has been stopped")).
				Component("jobs").
				Category(errors.CategoryState).
				Build()

	// ErrNilFunc is returned when submitting a nil job body.
	ErrNilFunc = errors.New(errors.NewStd("cannot submit nil job function")).
			Component("jobs").
			Category(errors.CategoryValidation).
			Build()

	// ErrJobPanicked wraps the recovered value of a panicking job.
	ErrJobPanicked = errors.New(errors.NewStd("job panicked")).
			Component("jobs").
			Category(errors.CategoryJobQueue).
			Build()

	// ErrStopTimeout is returned when workers do not drain in time.
	ErrStopTimeout = errors.New(errors.NewStd("timed out waiting for jobs to complete")).
			Component("jobs").
			Category(errors.CategoryTimeout).
			Build()
)
