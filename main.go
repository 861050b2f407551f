package main

import (
	"log/slog"
	"os"

	"github.com/RustycyberShackleford/WellAtlas3.0/cmd"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/logging"
)

// set by the build process
var version = "dev"
var buildDate = "unknown"

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.Fatal("failed to load configuration", "error", err)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
