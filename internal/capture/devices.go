package capture

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vk2gpu/music-app/internal/audio"
	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/logger"
)

// ListDevices prints the platform device catalog to w.
func ListDevices(settings *conf.Settings, w io.Writer) error {
	driver, err := audio.NewMalgoDriver(settings.Debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			GetLogger().Warn("failed to release audio driver", logger.Error(err))
		}
	}()
	return listDevices(driver, w)
}

func listDevices(driver audio.Driver, w io.Writer) error {
	catalog := audio.NewCatalog(driver)
	if err := catalog.Enumerate(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printSection(tw, "Inputs", catalog.Inputs(), func(d audio.DeviceInfo) int { return d.MaxInputs })
	printSection(tw, "Outputs", catalog.Outputs(), func(d audio.DeviceInfo) int { return d.MaxOutputs })
	return tw.Flush()
}

func printSection(w io.Writer, title string, devices []audio.DeviceInfo, channels func(audio.DeviceInfo) int) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(devices) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	fmt.Fprintln(w, "  #\tID\tNAME\tCHANNELS\tBACKEND")
	for _, d := range devices {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%d\t%s\n", d.Index, d.ID, d.Name, channels(d), d.Backend)
	}
}
