// Package sound holds in-memory sample buffers and the container codecs used
// to load them from and save them to disk.
//
// WAV is read and written. FLAC and MP3 are decoded read-only into 32-bit
// float. Load sniffs the container from the first four bytes.
package sound

import (
	"encoding/binary"
	"math"

	"github.com/go-audio/audio"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/logger"
)

// Format is the encoding of a single sample.
type Format int

const (
	FormatUnknown Format = iota
	FormatS16            // 16-bit signed integer PCM
	FormatF32            // 32-bit IEEE float
)

// BytesPerSample returns the storage size of one sample, 0 for FormatUnknown.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatS16:
		return 2
	case FormatF32:
		return 4
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatS16:
		return "s16"
	case FormatF32:
		return "f32"
	default:
		return "unknown"
	}
}

// ParseFormat maps a configuration value to a Format.
func ParseFormat(s string) Format {
	switch s {
	case "s16":
		return FormatS16
	case "f32":
		return FormatF32
	default:
		return FormatUnknown
	}
}

var (
	// ErrUnsupportedFormat is returned when writing a buffer without a known sample format.
	ErrUnsupportedFormat = errors.New(errors.NewStd("unsupported sample format")).
				Component("sound").
				Category(errors.CategoryValidation).
				Build()

	// ErrInvalidWAV is returned when RIFF/WAVE tags are missing or truncated.
	ErrInvalidWAV = errors.New(errors.NewStd("invalid WAV container")).
			Component("sound").
			Category(errors.CategoryFileParsing).
			Build()

	// ErrInvalidFLAC is returned when the fLaC tag is missing.
	ErrInvalidFLAC = errors.New(errors.NewStd("invalid FLAC stream")).
			Component("sound").
			Category(errors.CategoryFileParsing).
			Build()
)

// Buffer is a decoded block of interleaved samples. SampleCount counts frames,
// so len(Data) == SampleCount * Channels * Format.BytesPerSample().
type Buffer struct {
	Channels    int
	SampleRate  int
	SampleCount int
	Format      Format
	Data        []byte
}

// IsValid reports whether the buffer has a known format, at least one channel
// and a payload matching its declared size.
func (b Buffer) IsValid() bool {
	bps := b.Format.BytesPerSample()
	if bps == 0 || b.Channels <= 0 || b.SampleRate <= 0 {
		return false
	}
	return len(b.Data) == b.SampleCount*b.Channels*bps
}

// ByteLength returns the payload size implied by the header fields.
func (b Buffer) ByteLength() int {
	return b.SampleCount * b.Channels * b.Format.BytesPerSample()
}

// Float32s returns the interleaved samples as float32. S16 samples are scaled to [-1, 1).
func (b Buffer) Float32s() []float32 {
	switch b.Format {
	case FormatF32:
		out := make([]float32, len(b.Data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b.Data[i*4:]))
		}
		return out
	case FormatS16:
		out := make([]float32, len(b.Data)/2)
		for i := range out {
			out[i] = float32(int16(binary.LittleEndian.Uint16(b.Data[i*2:]))) / 32768
		}
		return out
	default:
		return nil
	}
}

// Channel returns one channel of the buffer as float32 samples.
func (b Buffer) Channel(ch int) []float32 {
	if ch < 0 || ch >= b.Channels {
		return nil
	}
	all := b.Float32s()
	out := make([]float32, 0, b.SampleCount)
	for i := ch; i < len(all); i += b.Channels {
		out = append(out, all[i])
	}
	return out
}

// IntBuffer converts the buffer to a go-audio IntBuffer at 16-bit depth.
func (b Buffer) IntBuffer() *audio.IntBuffer {
	samples := b.Float32s()
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(clampInt16(s))
	}
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: b.Channels,
			SampleRate:  b.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
}

// NewFloat32Buffer builds an F32 buffer from interleaved samples.
func NewFloat32Buffer(samples []float32, channels, sampleRate int) Buffer {
	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	return Buffer{
		Channels:    channels,
		SampleRate:  sampleRate,
		SampleCount: len(samples) / max(channels, 1),
		Format:      FormatF32,
		Data:        data,
	}
}

// NewInt16Buffer builds an S16 buffer from interleaved samples.
func NewInt16Buffer(samples []int16, channels, sampleRate int) Buffer {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return Buffer{
		Channels:    channels,
		SampleRate:  sampleRate,
		SampleCount: len(samples) / max(channels, 1),
		Format:      FormatS16,
		Data:        data,
	}
}

// clampInt16 converts a float sample to int16 with saturation.
func clampInt16(s float32) int16 {
	v := s * 32767
	switch {
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// Float32ToInt16 converts with saturation; the recorder uses it for s16 output.
func Float32ToInt16(s float32) int16 {
	return clampInt16(s)
}

// GetLogger returns the sound package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("sound")
}
