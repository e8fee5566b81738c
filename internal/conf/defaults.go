package conf

import "github.com/spf13/viper"

// setDefaultConfig registers a default for every configuration key
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("audio.inputdevice", "")
	viper.SetDefault("audio.outputdevice", "")
	viper.SetDefault("audio.samplerate", SampleRate)
	viper.SetDefault("audio.buffersize", BufferSize)
	viper.SetDefault("audio.clip", true)
	viper.SetDefault("audio.monitor", false)

	viper.SetDefault("midi.inputdevice", "")
	viper.SetDefault("midi.outputdevice", "")

	viper.SetDefault("recording.path", "recordings")
	viper.SetDefault("recording.thresholdstart", 0.1)
	viper.SetDefault("recording.thresholdstop", 0.1)
	viper.SetDefault("recording.timeout", 2.0)
	viper.SetDefault("recording.autostop", true)
	viper.SetDefault("recording.format", FormatF32)
	viper.SetDefault("recording.minfreemb", 256)

	viper.SetDefault("jobs.workers", DefaultWorkers)
	viper.SetDefault("jobs.queuesize", 256)

	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", "logs/music-app.log")
	viper.SetDefault("logging.file_output.max_size", 50)
	viper.SetDefault("logging.file_output.max_age", 30)
	viper.SetDefault("logging.file_output.max_rotated_files", 5)
	viper.SetDefault("logging.file_output.compress", false)
	viper.SetDefault("logging.file_output.level", "debug")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")
	viper.SetDefault("telemetry.sentrydsn", "")
}
