package audio

import "github.com/vk2gpu/music-app/internal/errors"

var (
	// ErrDeviceNotFound is returned by Engine.Open when a configured device
	// is not in the current enumeration.
	ErrDeviceNotFound = errors.New(errors.NewStd("audio device not found")).
				Component("audio").
				Category(errors.CategoryNotFound).
				Build()

	// ErrStreamOpenFailed wraps a driver failure while opening a stream.
	ErrStreamOpenFailed = errors.New(errors.NewStd("failed to open audio stream")).
				Component("audio").
				Category(errors.CategoryAudioStream).
				Build()

	// ErrStreamStartFailed wraps a driver failure while starting an opened stream.
	ErrStreamStartFailed = errors.New(errors.NewStd("failed to start audio stream")).
				Component("audio").
				Category(errors.CategoryAudioStream).
				Build()

	// ErrNotOpen is returned by operations that need an open stream.
	ErrNotOpen = errors.New(errors.NewStd("audio stream is not open")).
			Component("audio").
			Category(errors.CategoryState).
			Build()

	// ErrEmptySound is returned by Playback when a sound has no playable frames.
	ErrEmptySound = errors.New(errors.NewStd("sound has no playable frames")).
			Component("audio").
			Category(errors.CategoryAudio).
			Build()
)
