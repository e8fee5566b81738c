package record

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vk2gpu/music-app/internal/capture"
	"github.com/vk2gpu/music-app/internal/conf"
)

// Command creates the record command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record audio sessions triggered by loudness",
		Long: "Open the input device and record a new file every time the input gets loud, " +
			"stopping after it has been quiet for the timeout. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture.Record(settings)
		},
	}

	// Set up flags specific to the 'record' command
	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the record command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Audio.InputDevice, "input", viper.GetString("audio.inputdevice"), "Input device name or ID (see 'devices')")
	cmd.Flags().StringVar(&settings.Audio.OutputDevice, "output", viper.GetString("audio.outputdevice"), "Output device name or ID (see 'devices')")
	cmd.Flags().IntVar(&settings.Audio.SampleRate, "rate", viper.GetInt("audio.samplerate"), "Sample rate in Hz")
	cmd.Flags().IntVar(&settings.Audio.BufferSize, "buffer", viper.GetInt("audio.buffersize"), "Frames per period")
	cmd.Flags().BoolVar(&settings.Audio.Monitor, "monitor", viper.GetBool("audio.monitor"), "Route the input to the outputs")
	cmd.Flags().StringVar(&settings.Recording.Path, "path", viper.GetString("recording.path"), "Directory to save recordings to")
	cmd.Flags().StringVar(&settings.Recording.Format, "format", viper.GetString("recording.format"), "Sample format of recordings (f32, s16)")
	cmd.Flags().Float64Var(&settings.Recording.ThresholdStart, "threshold-start", viper.GetFloat64("recording.thresholdstart"), "Smoothed peak level that starts a recording")
	cmd.Flags().Float64Var(&settings.Recording.ThresholdStop, "threshold-stop", viper.GetFloat64("recording.thresholdstop"), "Smoothed peak level that keeps a recording going")
	cmd.Flags().Float64Var(&settings.Recording.Timeout, "timeout", viper.GetFloat64("recording.timeout"), "Seconds of quiet before a recording stops")
	cmd.Flags().BoolVar(&settings.Recording.AutoStop, "autostop", viper.GetBool("recording.autostop"), "Stop recordings automatically after the timeout")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "listen", viper.GetString("telemetry.listen"), "Listen address and port of telemetry endpoint")

	// Bind flags to the viper settings
	bindings := map[string]string{
		"audio.inputdevice":        "input",
		"audio.outputdevice":       "output",
		"audio.samplerate":         "rate",
		"audio.buffersize":         "buffer",
		"audio.monitor":            "monitor",
		"recording.path":           "path",
		"recording.format":         "format",
		"recording.thresholdstart": "threshold-start",
		"recording.thresholdstop":  "threshold-stop",
		"recording.timeout":        "timeout",
		"recording.autostop":       "autostop",
		"telemetry.enabled":        "telemetry",
		"telemetry.listen":         "listen",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}
