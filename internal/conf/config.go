// Package conf loads and holds the application settings
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/errors"
)

// LogConfig holds log file settings for a service
type LogConfig struct {
	Enabled bool   // true to write a service log file
	Path    string // log file path
	MaxSize int64  // max log file size in bytes before rotation
}

// Settings holds the complete application configuration
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build

	Main struct {
		Name string    // name of this WellAtlas node, used in log attributes
		Log  LogConfig // logging configuration
	}

	WebServer struct {
		Enabled bool      // true to enable web server
		Port    string    // port for web server
		Debug   bool      // true to enable web server debug mode
		Log     LogConfig // logging configuration for web server
	}

	Output struct {
		SQLite struct {
			Enabled bool   // true to use the sqlite store
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled  bool   // true to use the mysql store
			Username string // username for mysql database
			Password string // password for mysql database
			Database string // database name for mysql database
			Host     string // host for mysql database
			Port     string // port for mysql database
		}
	}
}

// Load reads the configuration file and environment into a Settings struct.
// A missing config file is not an error; defaults apply.
func Load() (*Settings, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range configPaths() {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("wellatlas")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.New(fmt.Errorf("reading config file: %w", err)).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("unmarshaling config: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return settings, nil
}

// setDefaults registers default configuration values with viper
func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("main.name", "wellatlas")
	viper.SetDefault("main.log.enabled", false)
	viper.SetDefault("main.log.path", "logs/wellatlas.log")
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "5000")
	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.log.enabled", false)
	viper.SetDefault("webserver.log.path", "logs/web.log")
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "data/wellatlas.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "wellatlas")
}

// configPaths returns the directories searched for a config file, in order
func configPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wellatlas"))
	}
	paths = append(paths, "/etc/wellatlas")
	return paths
}

// GetBasePath expands dir relative to the working directory and ensures it
// exists, creating it when needed.
func GetBasePath(dir string) string {
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) {
		if wd, err := os.Getwd(); err == nil {
			dir = filepath.Join(wd, dir)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "."
	}
	return dir
}
