package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vk2gpu/music-app/internal/buildinfo"
)

// Command creates the version command.
func Command(info *buildinfo.Info) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
		},
	}
}
