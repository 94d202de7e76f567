package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	fileName  = ".jsxcheck"
	envPrefix = "JSXCHECK"

	// Points to a config file outside the working directory
	PathEnv = envPrefix + "_CONFIG"
)

type Config struct {
	Mode      string   `mapstructure:"mode"`
	Functions bool     `mapstructure:"functions"`
	Track     []string `mapstructure:"track"`
	Color     bool     `mapstructure:"color"`
	Verbosity int      `mapstructure:"verbosity"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "precise")
	v.SetDefault("functions", false)
	v.SetDefault("track", []string{})
	v.SetDefault("color", false)
	v.SetDefault("verbosity", 0)
}

// Load reads .jsxcheck.yaml (or any extension viper understands) from dir, or
// the file named by $JSXCHECK_CONFIG if set. A missing file is not an error;
// environment variables such as JSXCHECK_MODE override file values.
func Load(dir string) (config Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(PathEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(fileName)
	}

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return config, nil
}

// Used reports which config file was loaded from dir, if any.
func Used(dir string) string {
	if path := os.Getenv(PathEnv); path != "" {
		return path
	}

	for _, ext := range viper.SupportedExts {
		path := filepath.Join(dir, fileName+"."+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
