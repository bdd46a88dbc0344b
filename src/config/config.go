package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".idebuild.yml"

// Config is the top-level idebuild configuration.
type Config struct {
	Version    int              `yaml:"version" toml:"version"`
	Host       HostConfig       `yaml:"host" toml:"host"`
	Build      BuildConfig      `yaml:"build" toml:"build"`
	Validation ValidationConfig `yaml:"validation" toml:"validation"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
}

// Load reads configuration from a YAML or TOML file.
// If path is empty, it tries the default file.
// Returns sensible defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Defaults(), nil
		}
		return nil, err
	}

	cfg := Defaults()
	if err := Decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeFile reads path and decodes it into v, choosing the format from
// the file extension.
func DecodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Decode(path, data, v)
}

// Decode unmarshals data into v. Files ending in .toml are TOML; anything
// else is YAML.
func Decode(path string, data []byte, v any) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Version:    1,
		Host:       DefaultHostConfig(),
		Build:      DefaultBuildConfig(),
		Validation: DefaultValidationConfig(),
		Output:     OutputConfig{},
	}
}
