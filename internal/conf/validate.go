package conf

import (
	"fmt"
	"math/bits"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateAudioSettings(&settings.Audio)...)
	ve.Errors = append(ve.Errors, validateRecordingSettings(&settings.Recording)...)
	ve.Errors = append(ve.Errors, validateJobSettings(&settings.Jobs)...)

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateAudioSettings(settings *AudioSettings) []string {
	var errs []string

	if settings.SampleRate < MinSampleRate || settings.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Sprintf("audio.samplerate %d must be between %d and %d",
			settings.SampleRate, MinSampleRate, MaxSampleRate))
	}

	if settings.BufferSize < MinBufferSize || settings.BufferSize > MaxBufferSize ||
		bits.OnesCount(uint(settings.BufferSize)) != 1 {
		errs = append(errs, fmt.Sprintf("audio.buffersize %d must be a power of two between %d and %d",
			settings.BufferSize, MinBufferSize, MaxBufferSize))
	}

	return errs
}

func validateRecordingSettings(settings *RecordingSettings) []string {
	var errs []string

	if settings.ThresholdStart < 0 || settings.ThresholdStart > 1 {
		errs = append(errs, "recording.thresholdstart must be between 0 and 1")
	}
	if settings.ThresholdStop < 0 || settings.ThresholdStop > 1 {
		errs = append(errs, "recording.thresholdstop must be between 0 and 1")
	}
	if settings.Timeout <= 0 {
		errs = append(errs, "recording.timeout must be greater than 0")
	}
	if settings.Path == "" {
		errs = append(errs, "recording.path must not be empty")
	}

	switch settings.Format {
	case FormatF32, FormatS16:
	default:
		errs = append(errs, fmt.Sprintf("recording.format %q must be %q or %q", settings.Format, FormatF32, FormatS16))
	}

	if settings.MinFreeMB < 0 {
		errs = append(errs, "recording.minfreemb must not be negative")
	}

	return errs
}

func validateJobSettings(settings *JobSettings) []string {
	var errs []string
	if settings.Workers < 1 {
		errs = append(errs, "jobs.workers must be at least 1")
	}
	if settings.QueueSize < 1 {
		errs = append(errs, "jobs.queuesize must be at least 1")
	}
	return errs
}
