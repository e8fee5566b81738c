package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/viper"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// envPrefix namespaces environment overrides, e.g. MUSICAPP_RECORDING.PATH.
const envPrefix = "MUSICAPP"

var (
	current   *Settings
	currentMu sync.RWMutex
)

// Load reads config.yaml and the environment, validates the result and
// remembers it for GetSettings and SaveSettings.
func Load() (*Settings, error) {
	currentMu.Lock()
	defer currentMu.Unlock()

	if err := readConfig(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := new(Settings)
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("decode config: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	current = settings
	return settings, nil
}

// GetSettings returns the settings produced by the last successful Load.
func GetSettings() *Settings {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// readConfig points viper at the search paths and reads config.yaml. When
// no file is found the embedded default is written to the first path.
func readConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	dirs, err := GetDefaultConfigPaths()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		viper.AddConfigPath(dir)
	}
	setDefaultConfig()

	err = viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &notFound):
		return writeDefaultConfig(dirs[0])
	default:
		return fmt.Errorf("read %s: %w", configFileName, err)
	}
}

func writeDefaultConfig(dir string) error {
	path := filepath.Join(dir, configFileName)

	data, err := fs.ReadFile(configFiles, configFileName)
	if err != nil {
		return fmt.Errorf("embedded %s: %w", configFileName, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(fmt.Errorf("create config directory: %w", err), path, 0)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileError(fmt.Errorf("write default config: %w", err), path, int64(len(data)))
	}

	GetLogger().Info("wrote default config file", logger.String("path", path))
	return viper.ReadInConfig()
}

// GetDefaultConfigPaths lists the directories searched for config.yaml,
// most specific first.
func GetDefaultConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Operation("get_home_directory").
			Build()
	}

	if runtime.GOOS != "windows" {
		return []string{filepath.Join(home, ".config", "music-app"), "/etc/music-app", "."}, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return []string{filepath.Join(home, "AppData", "Roaming", "music-app"), filepath.Dir(exe)}, nil
}
