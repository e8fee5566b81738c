package sound

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tosone/minimp3"

	"github.com/vk2gpu/music-app/internal/errors"
)

// ErrInvalidMP3 is returned when neither an ID3 tag nor a frame sync starts the stream.
var ErrInvalidMP3 = errors.New(errors.NewStd("invalid MP3 stream")).
	Component("sound").
	Category(errors.CategoryFileParsing).
	Build()

// isMP3Header reports whether the first bytes look like an ID3v2 tag or an MPEG frame sync.
func isMP3Header(b []byte) bool {
	if len(b) >= 3 && string(b[:3]) == "ID3" {
		return true
	}
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0
}

// decodeMP3 decodes a complete MP3 stream into interleaved float32 samples.
func decodeMP3(r io.Reader) (Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidMP3, err)
	}
	if !isMP3Header(data) {
		return Buffer{}, ErrInvalidMP3
	}

	dec, pcm, err := minimp3.DecodeFull(data)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidMP3, err)
	}
	if dec == nil || dec.Channels < 1 || len(pcm) == 0 {
		return Buffer{}, ErrInvalidMP3
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768
	}
	return NewFloat32Buffer(samples, dec.Channels, dec.SampleRate), nil
}
