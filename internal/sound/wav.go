package sound

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3

	riffHeaderSize  = 12
	chunkHeaderSize = 8
	fmtPayloadSize  = 16
	factPayloadSize = 4
)

// wavFmt mirrors the 16-byte payload of a `fmt ` chunk.
type wavFmt struct {
	FormatTag     uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// formatFromWAV maps a (format tag, bits per sample) pair to a Format.
func formatFromWAV(tag, bits uint16) Format {
	switch {
	case tag == wavFormatPCM && bits == 16:
		return FormatS16
	case tag == wavFormatFloat && bits == 32:
		return FormatF32
	default:
		return FormatUnknown
	}
}

// ReadWAV decodes a RIFF/WAVE stream. Chunks may appear in any order; each
// chunk is skipped by its declared size whether or not its payload was read,
// so unknown chunks are tolerated. Only PCM16 and float32 yield a known
// Format; other encodings return the header fields with FormatUnknown and no
// payload.
func ReadWAV(r io.ReadSeeker) (Buffer, error) {
	var riff [riffHeaderSize]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Buffer{}, fmt.Errorf("%w: reading RIFF header: %w", ErrInvalidWAV, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Buffer{}, fmt.Errorf("%w: missing RIFF/WAVE tags", ErrInvalidWAV)
	}

	var (
		header     wavFmt
		haveFmt    bool
		haveData   bool
		dataOffset int64
		dataSize   uint32
	)

	for {
		var chunk [chunkHeaderSize]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			// End of file or a truncated trailing header ends the scan
			break
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		start, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
		}

		switch id {
		case "fmt ":
			payload := make([]byte, min(size, fmtPayloadSize))
			if _, err := io.ReadFull(r, payload); err != nil {
				return Buffer{}, fmt.Errorf("%w: reading fmt chunk: %w", ErrInvalidWAV, err)
			}
			if len(payload) < fmtPayloadSize {
				return Buffer{}, fmt.Errorf("%w: fmt chunk too short (%d bytes)", ErrInvalidWAV, size)
			}
			if err := binary.Read(bytes.NewReader(payload), binary.LittleEndian, &header); err != nil {
				return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
			}
			haveFmt = true
		case "fact":
			// Sample count as written by the encoder. The data chunk is authoritative.
		case "PEAK":
			// Per-channel peak values. Not needed for playback.
		case "data":
			haveData = true
			dataOffset = start
			dataSize = size
		}

		// Chunks are word aligned
		next := start + int64(size) + int64(size&1)
		if _, err := r.Seek(next, io.SeekStart); err != nil {
			return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
		}
		if haveFmt && haveData && id == "data" {
			break
		}
	}

	if !haveFmt {
		return Buffer{}, fmt.Errorf("%w: no fmt chunk", ErrInvalidWAV)
	}

	buf := Buffer{
		Channels:   int(header.Channels),
		SampleRate: int(header.SampleRate),
		Format:     formatFromWAV(header.FormatTag, header.BitsPerSample),
	}

	frameBytes := (int(header.BitsPerSample) * int(header.Channels)) / 8
	if !haveData || frameBytes == 0 {
		return buf, nil
	}
	buf.SampleCount = int(dataSize) / frameBytes

	if buf.Format == FormatUnknown {
		return buf, nil
	}

	if _, err := r.Seek(dataOffset, io.SeekStart); err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}
	// LimitReader keeps a bogus size field from forcing a huge allocation up front
	data, err := io.ReadAll(io.LimitReader(r, int64(dataSize)))
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: reading data chunk: %w", ErrInvalidWAV, err)
	}
	if len(data) < int(dataSize) {
		// Truncated file: keep whole frames only
		buf.SampleCount = len(data) / frameBytes
		data = data[:buf.SampleCount*frameBytes]
	}
	buf.Data = data

	return buf, nil
}

// WriteWAV encodes buf as RIFF/WAVE with chunks in the order `fmt `, `fact`, `data`.
func WriteWAV(w io.Writer, buf Buffer) error {
	var tag uint16
	switch buf.Format {
	case FormatS16:
		tag = wavFormatPCM
	case FormatF32:
		tag = wavFormatFloat
	default:
		return ErrUnsupportedFormat
	}
	if buf.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrUnsupportedFormat, buf.Channels)
	}

	dataLen := len(buf.Data)
	pad := dataLen & 1
	bps := buf.Format.BytesPerSample()
	riffSize := 4 +
		chunkHeaderSize + fmtPayloadSize +
		chunkHeaderSize + factPayloadSize +
		chunkHeaderSize + dataLen + pad

	header := make([]byte, 0, riffHeaderSize+3*chunkHeaderSize+fmtPayloadSize+factPayloadSize)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(riffSize))
	header = append(header, "WAVE"...)

	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, fmtPayloadSize)
	header = binary.LittleEndian.AppendUint16(header, tag)
	header = binary.LittleEndian.AppendUint16(header, uint16(buf.Channels))
	header = binary.LittleEndian.AppendUint32(header, uint32(buf.SampleRate))
	header = binary.LittleEndian.AppendUint32(header, uint32(buf.SampleRate*buf.Channels*bps))
	header = binary.LittleEndian.AppendUint16(header, uint16(buf.Channels*bps))
	header = binary.LittleEndian.AppendUint16(header, uint16(bps*8))

	header = append(header, "fact"...)
	header = binary.LittleEndian.AppendUint32(header, factPayloadSize)
	header = binary.LittleEndian.AppendUint32(header, uint32(buf.SampleCount))

	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(dataLen))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}
	if _, err := w.Write(buf.Data); err != nil {
		return fmt.Errorf("writing WAV data: %w", err)
	}
	if pad == 1 {
		if _, err := w.Write([]byte{0}); err != nil {
			return fmt.Errorf("writing WAV pad byte: %w", err)
		}
	}
	return nil
}
