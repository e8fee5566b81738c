package play

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vk2gpu/music-app/internal/capture"
	"github.com/vk2gpu/music-app/internal/conf"
)

// Command creates the play command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Loop a sound file through the output device",
		Long:  "Play a WAV, FLAC or MP3 file on repeat until interrupted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture.Play(settings, args[0])
		},
	}

	cmd.Flags().StringVar(&settings.Audio.OutputDevice, "output", viper.GetString("audio.outputdevice"), "Output device name or ID (see 'devices')")
	return cmd
}
