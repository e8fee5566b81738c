package sound

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/vk2gpu/music-app/internal/errors"
)

// ErrInvalidOgg is returned when the stream is not a decodable Ogg Vorbis file.
var ErrInvalidOgg = errors.New(errors.NewStd("invalid Ogg Vorbis stream")).
	Component("sound").
	Category(errors.CategoryFileParsing).
	Build()

// oggReadChunk is the number of interleaved values pulled per Read call.
const oggReadChunk = 4096

// decodeOgg decodes a complete Ogg Vorbis stream into interleaved float32 samples.
func decodeOgg(r io.Reader) (Buffer, error) {
	rd, err := oggvorbis.NewReader(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidOgg, err)
	}
	channels, rate := rd.Channels(), rd.SampleRate()
	if channels < 1 || rate < 1 {
		return Buffer{}, ErrInvalidOgg
	}

	var samples []float32
	chunk := make([]float32, oggReadChunk*channels)
	for {
		n, err := rd.Read(chunk)
		samples = append(samples, chunk[:n]...)
		if err == io.EOF || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidOgg, err)
		}
	}
	if len(samples) == 0 {
		return Buffer{}, ErrInvalidOgg
	}
	return NewFloat32Buffer(samples, channels, rate), nil
}
