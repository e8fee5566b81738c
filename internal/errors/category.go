package errors

import "strings"

// ErrorCategory groups errors by the subsystem or kind of failure.
type ErrorCategory string

const (
	CategoryAudioDevice   ErrorCategory = "audio-device"     // enumeration and lookup
	CategoryAudioStream   ErrorCategory = "audio-stream"     // opening or running the duplex stream
	CategoryAudio         ErrorCategory = "audio-processing" // sound decode and playback
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryFileParsing   ErrorCategory = "file-parsing"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryNotFound      ErrorCategory = "not-found"
	CategoryState         ErrorCategory = "state"
	CategoryResource      ErrorCategory = "resource"
	CategoryJobQueue      ErrorCategory = "job-queue"
	CategoryDiskUsage     ErrorCategory = "disk-usage"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryNetwork       ErrorCategory = "network"
	CategoryGeneric       ErrorCategory = "generic"
)

// messageHints map message fragments to a category, checked in order.
var messageHints = []struct {
	category ErrorCategory
	words    []string
}{
	{CategoryNotFound, []string{"not found"}},
	{CategoryFileIO, []string{"file", "open", "read"}},
	{CategoryValidation, []string{"invalid", "validation"}},
	{CategoryTimeout, []string{"timeout", "deadline"}},
}

// guessCategory is used when Build is called without Category. A wrapped
// EnhancedError passes its category up; otherwise the message decides.
func guessCategory(err error) ErrorCategory {
	var inner *EnhancedError
	if As(err, &inner) && inner.Category != "" {
		return inner.Category
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range messageHints {
		for _, w := range hint.words {
			if strings.Contains(msg, w) {
				return hint.category
			}
		}
	}
	return CategoryGeneric
}
