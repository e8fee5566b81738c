package conf

import (
	"github.com/vk2gpu/music-app/internal/logger"
)

// AudioSettings selects the duplex stream. Device fields hold the stable
// identity printed by the devices command.
type AudioSettings struct {
	InputDevice  string `yaml:"inputdevice"`
	OutputDevice string `yaml:"outputdevice"`
	SampleRate   int    `yaml:"samplerate"`
	BufferSize   int    `yaml:"buffersize"`
	Clip         bool   `yaml:"clip"`
	Monitor      bool   `yaml:"monitor"`
}

// MIDISettings is persisted for compatibility; nothing opens MIDI devices.
type MIDISettings struct {
	InputDevice  string `yaml:"inputdevice"`
	OutputDevice string `yaml:"outputdevice"`
}

// RecordingSettings holds the loudness trigger tunables and output location.
type RecordingSettings struct {
	Path           string  `yaml:"path"`
	ThresholdStart float64 `yaml:"thresholdstart"` // smoothed peak that starts a recording
	ThresholdStop  float64 `yaml:"thresholdstop"`  // smoothed peak that keeps a recording alive
	Timeout        float64 `yaml:"timeout"`        // seconds
	AutoStop       bool    `yaml:"autostop"`
	Format         string  `yaml:"format"`
	MinFreeMB      int     `yaml:"minfreemb"`
}

// JobSettings sizes the background worker pool.
type JobSettings struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queuesize"`
}

// TelemetrySettings controls the Prometheus endpoint and Sentry reporting.
type TelemetrySettings struct {
	Enabled   bool   `yaml:"enabled"`
	Listen    string `yaml:"listen"`
	SentryDSN string `yaml:"sentrydsn"`
}

// Settings contains all configuration options.
type Settings struct {
	Debug     bool                 `yaml:"debug"`
	Audio     AudioSettings        `yaml:"audio"`
	MIDI      MIDISettings         `yaml:"midi"`
	Recording RecordingSettings    `yaml:"recording"`
	Jobs      JobSettings          `yaml:"jobs"`
	Logging   logger.LoggingConfig `yaml:"logging"`
	Telemetry TelemetrySettings    `yaml:"telemetry"`
}
