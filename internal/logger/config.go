package logger

// LoggingConfig is the logging section of config.yaml.
type LoggingConfig struct {
	DefaultLevel string            `yaml:"default_level" mapstructure:"default_level"`
	Timezone     string            `yaml:"timezone" mapstructure:"timezone"` // "Local", "UTC" or an IANA name, applied to file timestamps
	Console      *ConsoleOutput    `yaml:"console" mapstructure:"console"`
	FileOutput   *FileOutput       `yaml:"file_output" mapstructure:"file_output"`
	ModuleLevels map[string]string `yaml:"module_levels" mapstructure:"module_levels"` // e.g. audio.recorder: trace
}

// ConsoleOutput writes text records to stdout.
type ConsoleOutput struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Level   string `yaml:"level" mapstructure:"level"`
}

// FileOutput writes JSON records to a size-rotated file.
type FileOutput struct {
	Enabled         bool   `yaml:"enabled" mapstructure:"enabled"`
	Path            string `yaml:"path" mapstructure:"path"`
	MaxSize         int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxAge          int    `yaml:"max_age" mapstructure:"max_age"`   // days, 0 keeps forever
	MaxRotatedFiles int    `yaml:"max_rotated_files" mapstructure:"max_rotated_files"`
	Compress        bool   `yaml:"compress" mapstructure:"compress"`
	Level           string `yaml:"level" mapstructure:"level"`
}

// Defaults shared with conf/defaults.go.
const (
	DefaultLogLevel        = "info"
	DefaultLogPath         = "logs/music-app.log"
	DefaultMaxSize         = 50
	DefaultMaxAge          = 30
	DefaultMaxRotatedFiles = 5
)

// withDefaults returns a copy of cfg with empty sections filled in. A config
// that names nothing still logs to the console at info.
func withDefaults(cfg LoggingConfig) LoggingConfig {
	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = DefaultLogLevel
	}
	if cfg.Console == nil {
		cfg.Console = &ConsoleOutput{Enabled: true, Level: cfg.DefaultLevel}
	}
	if f := cfg.FileOutput; f != nil && f.Enabled {
		file := *f
		if file.Path == "" {
			file.Path = DefaultLogPath
		}
		if file.MaxSize == 0 {
			file.MaxSize = DefaultMaxSize
		}
		if file.Level == "" {
			file.Level = cfg.DefaultLevel
		}
		cfg.FileOutput = &file
	}
	return cfg
}
