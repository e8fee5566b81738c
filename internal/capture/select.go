package capture

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk2gpu/music-app/internal/audio"
	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/logger"
)

// SelectDevices resolves the input and output choices against the device
// catalog, stores their identities in settings and writes the config file.
// A choice may be an ordinal from the devices listing, an ID or a name; an
// empty choice leaves that direction unchanged.
func SelectDevices(settings *conf.Settings, input, output string, w io.Writer) error {
	driver, err := audio.NewMalgoDriver(settings.Debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			GetLogger().Warn("failed to release audio driver", logger.Error(err))
		}
	}()
	return selectDevices(driver, settings, input, output, w, func(*conf.Settings) error {
		return conf.SaveSettings()
	})
}

func selectDevices(driver audio.Driver, settings *conf.Settings, input, output string, w io.Writer, save func(*conf.Settings) error) error {
	catalog := audio.NewCatalog(driver)
	if err := catalog.Enumerate(); err != nil {
		return err
	}

	if input != "" {
		d, err := pickDevice(input, catalog.InputByIndex, catalog.InputByID)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		settings.Audio.InputDevice = d.ID.String()
		fmt.Fprintf(w, "input:  %s\n", d)
	}
	if output != "" {
		d, err := pickDevice(output, catalog.OutputByIndex, catalog.OutputByID)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		settings.Audio.OutputDevice = d.ID.String()
		fmt.Fprintf(w, "output: %s\n", d)
	}

	if input == "" && output == "" {
		return nil
	}
	return save(settings)
}

func pickDevice(choice string, byIndex func(int) (audio.DeviceInfo, bool), byID func(audio.DeviceID) (audio.DeviceInfo, bool)) (audio.DeviceInfo, error) {
	choice = strings.TrimSpace(choice)
	if n, err := strconv.Atoi(choice); err == nil {
		if d, ok := byIndex(n); ok {
			return d, nil
		}
	}
	if d, ok := byID(audio.ParseDeviceID(choice)); ok {
		return d, nil
	}
	return audio.DeviceInfo{}, fmt.Errorf("%w: %q", audio.ErrDeviceNotFound, choice)
}
