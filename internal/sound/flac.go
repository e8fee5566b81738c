package sound

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tphakala/flac"
)

// decodeFLAC decodes a complete FLAC stream into interleaved float32 samples.
func decodeFLAC(r io.Reader) (Buffer, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil || string(magic) != "fLaC" {
		return Buffer{}, ErrInvalidFLAC
	}

	decoder, err := flac.NewDecoder(br)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidFLAC, err)
	}

	bytesPerSample := decoder.BitsPerSample / 8
	if bytesPerSample < 1 || bytesPerSample > 4 || decoder.NChannels < 1 {
		return Buffer{}, fmt.Errorf("%w: %d bits, %d channels", ErrUnsupportedFormat, decoder.BitsPerSample, decoder.NChannels)
	}
	scale := 1 / float32(int64(1)<<(decoder.BitsPerSample-1))

	samples := make([]float32, 0, int(decoder.TotalSamples)*decoder.NChannels)
	for {
		frame, err := decoder.Next()
		if err == io.EOF || (err == nil && len(frame) == 0) {
			break
		}
		if err != nil {
			return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidFLAC, err)
		}
		for i := 0; i+bytesPerSample <= len(frame); i += bytesPerSample {
			samples = append(samples, float32(flacSample(frame[i:], bytesPerSample))*scale)
		}
	}

	return NewFloat32Buffer(samples, decoder.NChannels, decoder.SampleRate), nil
}

// flacSample reads one little-endian signed sample of n bytes.
func flacSample(b []byte, n int) int32 {
	switch n {
	case 1:
		return int32(int8(b[0]))
	case 2:
		return int32(int16(binary.LittleEndian.Uint16(b)))
	case 3:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		// sign extend from bit 23
		return (v << 8) >> 8
	default:
		return int32(binary.LittleEndian.Uint32(b))
	}
}
