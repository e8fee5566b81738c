package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vk2gpu/music-app/cmd/convert"
	"github.com/vk2gpu/music-app/cmd/devices"
	"github.com/vk2gpu/music-app/cmd/play"
	"github.com/vk2gpu/music-app/cmd/record"
	"github.com/vk2gpu/music-app/cmd/version"
	"github.com/vk2gpu/music-app/internal/buildinfo"
	"github.com/vk2gpu/music-app/internal/conf"
	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, info *buildinfo.Info) *cobra.Command {
	var central *logger.CentralLogger

	rootCmd := &cobra.Command{
		Use:          "music-app",
		Short:        "Loudness-triggered audio recorder",
		SilenceUsage: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	versionCmd := version.Command(info)
	rootCmd.AddCommand(
		record.Command(settings),
		devices.Command(settings),
		play.Command(settings),
		convert.Command(),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Skip setup for the version command
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		var err error
		central, err = initialize(settings, info)
		return err
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return central.Close()
	}

	return rootCmd
}

// initialize installs the global logger and, when configured, error
// reporting. It runs after flags are parsed so --debug takes effect.
func initialize(settings *conf.Settings, info *buildinfo.Info) (*logger.CentralLogger, error) {
	if err := conf.ValidateSettings(settings); err != nil {
		return nil, err
	}

	cfg := settings.Logging
	if settings.Debug {
		cfg.DefaultLevel = "debug"
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = "debug"
			cfg.Console = &console
		}
	}
	central, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)

	if err := errors.InitSentry(settings.Telemetry.SentryDSN, info.Release()); err != nil {
		logger.Global().Module("main").Warn("error reporting disabled", logger.Error(err))
	}

	logger.Global().Module("main").Debug("starting", logger.String("version", info.GetVersion()))
	return central, nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
