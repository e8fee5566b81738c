package capture

import (
	"fmt"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/sound"
)

// ErrUndecodable is returned by Convert when the input holds no playable audio.
var ErrUndecodable = errors.New(errors.NewStd("input could not be decoded")).
	Component("capture").
	Category(errors.CategoryFileParsing).
	Build()

// Convert decodes in and writes it to out as WAV. FormatS16 re-encodes to
// 16-bit PCM, FormatF32 to float; FormatUnknown keeps the decoded format.
func Convert(in, out string, format sound.Format) error {
	buf, err := sound.LoadFile(in)
	if err != nil {
		return err
	}
	if !buf.IsValid() || buf.SampleCount == 0 {
		return fmt.Errorf("%w: %s", ErrUndecodable, in)
	}

	if format == sound.FormatF32 && buf.Format != sound.FormatF32 {
		buf = sound.NewFloat32Buffer(buf.Float32s(), buf.Channels, buf.SampleRate)
	}
	outFormat := buf.Format
	if format == sound.FormatS16 {
		outFormat = sound.FormatS16
		err = sound.SaveFileS16(out, buf)
	} else {
		err = sound.SaveFile(out, buf)
	}
	if err != nil {
		return errors.New(err).
			Component("capture").
			Category(errors.CategoryFileIO).
			FileContext(out, int64(len(buf.Data))).
			Build()
	}

	GetLogger().Info("converted sound file",
		logger.String("input", in),
		logger.String("output", out),
		logger.String("format", outFormat.String()),
		logger.Int("channels", buf.Channels),
		logger.Int("frames", buf.SampleCount))
	return nil
}
