package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	seedcmd "github.com/RustycyberShackleford/WellAtlas3.0/cmd/seed"
	"github.com/RustycyberShackleford/WellAtlas3.0/cmd/serve"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wellatlas",
		Short: "WellAtlas well-drilling records server",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		serve.Command(settings),
		seedcmd.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&settings.WebServer.Port, "port", "p", viper.GetString("webserver.port"), "Port for the web server")
	rootCmd.PersistentFlags().StringVar(&settings.Output.SQLite.Path, "db", viper.GetString("output.sqlite.path"), "Path to the sqlite database")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
