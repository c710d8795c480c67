package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScheduling = "fifo"
	DefaultOutput     = "table"
	DefaultLogLevel   = "info"
)

type Config struct {
	// Scheduling is the loop's scheduling mode, fifo or topological.
	Scheduling string        `yaml:"scheduling"`
	Output     string        `yaml:"output"`
	Logging    LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// File sends logs to logs.txt in the relvar directory instead of stderr.
	File bool `yaml:"file"`
}

func Default() *Config {
	return &Config{
		Scheduling: DefaultScheduling,
		Output:     DefaultOutput,
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Dir returns ~/.relvar.
func Dir() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "couldn't get user home directory")
	}
	return filepath.Join(dir, ".relvar"), nil
}

// Read reads ~/.relvar/config.yml. A missing file yields the default configuration.
func Read() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return ReadConfig(filepath.Join(dir, "config.yml"))
}

// ReadConfig reads the configuration at path. Fields which aren't set keep
// their default values.
func ReadConfig(path string) (*Config, error) {
	config := Default()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return config, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}

	return config, nil
}
