package convert

import (
	"github.com/spf13/cobra"

	"github.com/vk2gpu/music-app/internal/capture"
	"github.com/vk2gpu/music-app/internal/sound"
)

// Command creates the convert command.
func Command() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert [input] [output.wav]",
		Short: "Convert a sound file to WAV",
		Long:  "Decode a WAV, FLAC, MP3 or Ogg Vorbis file and write it as WAV, optionally changing the sample format.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture.Convert(args[0], args[1], sound.ParseFormat(format))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output sample format: f32, s16 (default: keep)")
	return cmd
}
