package devices

import (
	"github.com/spf13/cobra"

	"github.com/vk2gpu/music-app/internal/capture"
	"github.com/vk2gpu/music-app/internal/conf"
)

// Command creates the devices command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio devices",
		Long:  "List input and output devices with the IDs accepted by --input, --output and the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture.ListDevices(settings, cmd.OutOrStdout())
		},
	}
	cmd.AddCommand(selectCommand(settings))
	return cmd
}

func selectCommand(settings *conf.Settings) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Save the input and output device in the config file",
		Long:  "Each device may be given by its number in the devices listing, its ID or its name.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture.SelectDevices(settings, input, output, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input device")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output device")
	cmd.MarkFlagsOneRequired("input", "output")
	return cmd
}
