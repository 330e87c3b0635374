package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds settings read from hubstream.yaml, HUBSTREAM_* environment
// variables and command line flags, in increasing order of precedence.
type Config struct {
	Database   string        `mapstructure:"database"`
	StreamsDir string        `mapstructure:"streams_dir"`
	Logging    LoggingConfig `mapstructure:"logging"`
	Output     OutputConfig  `mapstructure:"output"`
	Search     SearchConfig  `mapstructure:"search"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // text | json | color
}

// OutputConfig controls command output.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text | json
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Limit int `mapstructure:"limit"`
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"db":         "database",
	"streams":    "streams_dir",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"format":     "output.format",
}

// LoadConfig builds a Config. When configFile is empty, hubstream.yaml is
// searched for in the working directory and the user config directory,
// and a missing file is not an error.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("database", "hubstream.db")
	v.SetDefault("streams_dir", "streams")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("output.format", "text")
	v.SetDefault("search.limit", 50)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("hubstream")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "hubstream"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("HUBSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
