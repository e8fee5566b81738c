package main

import (
	"fmt"
	"os"

	"github.com/vk2gpu/music-app/cmd"
	"github.com/vk2gpu/music-app/internal/buildinfo"
	"github.com/vk2gpu/music-app/internal/conf"
)

// Set at link time with -ldflags "-X main.version=..."
var (
	version   = "dev"
	buildDate string
	commit    string
)

func main() {
	os.Exit(run())
}

func run() int {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	rootCmd := cmd.RootCommand(settings, buildinfo.New(version, buildDate, commit))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
