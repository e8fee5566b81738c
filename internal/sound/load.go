package sound

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"

	"github.com/vk2gpu/music-app/internal/logger"
)

// Load sniffs the container from the first four bytes and decodes it.
// Decode failures are logged and yield an empty Buffer, never an error.
func Load(r io.ReadSeeker) Buffer {
	log := GetLogger()

	var magic [4]byte
	n, err := io.ReadFull(r, magic[:])
	if err != nil && n == 0 {
		log.Debug("empty or unreadable input", logger.Error(err))
		return Buffer{}
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		log.Warn("failed to rewind input", logger.Error(err))
		return Buffer{}
	}

	var (
		buf       Buffer
		container string
	)
	switch {
	case string(magic[:n]) == "RIFF":
		container = "wav"
		buf, err = ReadWAV(r)
		if err == nil && buf.Format == FormatUnknown && buf.SampleCount > 0 {
			// Integer PCM at other bit depths goes through go-audio
			if _, serr := r.Seek(0, io.SeekStart); serr != nil {
				err = serr
				break
			}
			buf, err = decodeWAVInt(r)
		}
	case string(magic[:n]) == "fLaC":
		container = "flac"
		buf, err = decodeFLAC(r)
	case string(magic[:n]) == "OggS":
		container = "ogg"
		buf, err = decodeOgg(r)
	case isMP3Header(magic[:n]):
		container = "mp3"
		buf, err = decodeMP3(r)
	default:
		log.Debug("unrecognised container", logger.String("magic", fmt.Sprintf("%q", magic[:n])))
		return Buffer{}
	}

	if err != nil {
		log.Warn("failed to decode sound",
			logger.String("container", container),
			logger.Error(err))
		return Buffer{}
	}
	return buf
}

// decodeWAVInt decodes integer PCM WAV data of any bit depth go-audio supports into float32.
func decodeWAVInt(r io.ReadSeeker) (Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Buffer{}, ErrInvalidWAV
	}
	if d.WavAudioFormat != wavFormatPCM {
		return Buffer{}, fmt.Errorf("%w: wav format tag %d", ErrUnsupportedFormat, d.WavAudioFormat)
	}
	ib, err := d.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}
	bits := int(d.BitDepth)
	if bits < 8 || bits > 32 {
		return Buffer{}, fmt.Errorf("%w: %d bits", ErrUnsupportedFormat, bits)
	}
	scale := 1 / float32(int64(1)<<(bits-1))
	samples := make([]float32, len(ib.Data))
	for i, v := range ib.Data {
		samples[i] = float32(v) * scale
	}
	return NewFloat32Buffer(samples, int(d.NumChans), int(d.SampleRate)), nil
}

// LoadFile opens path and decodes it with Load. Only open failures are returned.
func LoadFile(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("opening sound file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			GetLogger().Debug("failed to close sound file", logger.String("path", path), logger.Error(cerr))
		}
	}()
	return Load(f), nil
}

// SaveFile writes buf to path as WAV, creating parent directories as needed.
func SaveFile(path string, buf Buffer) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sound file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing sound file: %w", cerr)
		}
	}()
	return WriteWAV(f, buf)
}

// SaveFileS16 writes buf to path as 16-bit PCM WAV through the go-audio encoder.
func SaveFileS16(path string, buf Buffer) (err error) {
	if buf.Channels < 1 || buf.SampleRate < 1 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, buf.Channels, buf.SampleRate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sound file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing sound file: %w", cerr)
		}
	}()

	enc := wav.NewEncoder(f, buf.SampleRate, 16, buf.Channels, wavFormatPCM)
	if err := enc.Write(buf.IntBuffer()); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	// Close patches the RIFF and data sizes; it does not close f.
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalising wav header: %w", err)
	}
	return nil
}
