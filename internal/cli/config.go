package cli

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is not given
const DefaultConfigFile = ".relay.yaml"

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan for annotated Go files
	Directories []string `yaml:"directories"`

	// ModuleName overrides the module path read from go.mod
	ModuleName string `yaml:"module"`

	// Output is the name of the generated file inside each package
	Output string `yaml:"output"`

	// Fx also emits an fx provider per client
	Fx bool `yaml:"fx"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `yaml:"verbose"`

	// Quiet only shows errors and final results
	Quiet bool `yaml:"quiet"`
}

// LoadConfig reads a YAML config file. A missing file is not an error when
// optional is set.
func LoadConfig(path string, optional bool) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge returns c with every set field of override applied on top
func (c Config) Merge(override Config) Config {
	if len(override.Directories) > 0 {
		c.Directories = override.Directories
	}
	if override.ModuleName != "" {
		c.ModuleName = override.ModuleName
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	c.Fx = c.Fx || override.Fx
	c.Verbose = c.Verbose || override.Verbose
	c.Quiet = c.Quiet || override.Quiet
	return c
}
