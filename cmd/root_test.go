package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
)

func TestRootCommand_Subcommands(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := RootCommand(&conf.Settings{})

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["seed"])
}

func TestRootCommand_FlagsBindIntoSettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	settings := &conf.Settings{}
	root := RootCommand(settings)

	require.NoError(t, root.PersistentFlags().Parse([]string{
		"--debug", "--port", "8080", "--db", "/tmp/flags.db",
	}))

	assert.True(t, settings.Debug)
	assert.Equal(t, "8080", settings.WebServer.Port)
	assert.Equal(t, "/tmp/flags.db", settings.Output.SQLite.Path)

	// bound flags also win inside viper for later viper.Get callers
	assert.Equal(t, "8080", viper.GetString("port"))
}
