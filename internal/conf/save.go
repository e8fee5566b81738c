package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/logger"
)

// ErrNotLoaded is returned by SaveSettings before Load has succeeded.
var ErrNotLoaded = errors.New(errors.NewStd("settings have not been loaded")).
	Component("conf").
	Category(errors.CategoryState).
	Build()

// SaveSettings writes the loaded settings to the config file viper read, or
// to the first search path when none was read.
func SaveSettings() error {
	currentMu.RLock()
	if current == nil {
		currentMu.RUnlock()
		return ErrNotLoaded
	}
	snapshot := *current
	currentMu.RUnlock()

	path := viper.ConfigFileUsed()
	if path == "" {
		dirs, err := GetDefaultConfigPaths()
		if err != nil {
			return err
		}
		path = filepath.Join(dirs[0], configFileName)
	}

	if err := SaveYAMLConfig(path, &snapshot); err != nil {
		return err
	}
	GetLogger().Info("settings saved", logger.String("path", path))
	return nil
}

// SaveYAMLConfig replaces path with settings encoded as YAML. The data goes to
// a temporary file in the same directory first and is renamed over path, so a
// crash never leaves a truncated config. Comments in the old file are lost.
func SaveYAMLConfig(path string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(err, path, 0)
	}

	tmp, err := os.CreateTemp(dir, "config-*.yaml")
	if err != nil {
		return errors.FileError(fmt.Errorf("create temp config: %w", err), path, 0)
	}
	defer os.Remove(tmp.Name())

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return errors.FileError(fmt.Errorf("write temp config: %w", err), tmp.Name(), int64(len(data)))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.FileError(fmt.Errorf("replace config: %w", err), path, int64(len(data)))
	}
	return nil
}
