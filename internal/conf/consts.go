package conf

// Audio defaults. The recorder and the stream engine use these when the
// configuration leaves a value unset.
const (
	SampleRate     = 48000 // Hz
	BufferSize     = 512   // frames per period
	NumChannels    = 1     // recorded channels
	MinSampleRate  = 8000
	MaxSampleRate  = 384000
	MinBufferSize  = 16
	MaxBufferSize  = 8192
	DefaultWorkers = 4
)

// Recording sample formats accepted in recording.format
const (
	FormatF32 = "f32"
	FormatS16 = "s16"
)

const configFileName = "config.yaml"
