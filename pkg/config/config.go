// Package config provides configuration loading and management for tensor2bvec.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"tensor2bvec/internal/models"
	"tensor2bvec/pkg/sidecar"
	"tensor2bvec/pkg/tensor"
)

// ErrUnresolvedFrequency is returned when neither a flag, the sidecar nor the
// configuration names a frequency-encoding direction
var ErrUnresolvedFrequency = errors.New("frequency encoding direction not resolved")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Conversion holds the defaults used when neither the command line nor
	// the JSON sidecar supplies a value
	Conversion struct {
		// NumDirs is the default number of diffusion directions
		NumDirs int `yaml:"numDirs"`

		// NumT2 is the default number of b0/T2 volumes
		NumT2 int `yaml:"numT2"`

		// BValue is the default nominal b-value
		BValue int `yaml:"bValue"`

		// Frequency is the default frequency-encoding direction (RL or AP).
		// Leave empty to require it from the sidecar or the command line.
		Frequency string `yaml:"frequency"`
	} `yaml:"conversion"`

	// Parsing controls how strictly tensor files are read
	Parsing struct {
		// AllowIncomplete accepts blocks with fewer directions than requested
		AllowIncomplete bool `yaml:"allowIncomplete"`

		// AllowDuplicateBlocks lets a repeated block replace an earlier one
		AllowDuplicateBlocks bool `yaml:"allowDuplicateBlocks"`
	} `yaml:"parsing"`

	// Processing parameters
	Processing struct {
		// NumCores is the number of conversions run in parallel in batch mode
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Dir is where bval/bvec files are written
		Dir string `yaml:"dir"`

		// Verbose prints the bval and bvec contents after conversion
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Conversion.NumDirs = 6
	cfg.Conversion.NumT2 = 1
	cfg.Conversion.BValue = 1000
	cfg.Conversion.Frequency = string(models.RL)

	cfg.Parsing.AllowIncomplete = true
	cfg.Parsing.AllowDuplicateBlocks = false

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Output.Dir = "."
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// ParserOptions returns the tensor parser options of the configuration
func (c *Config) ParserOptions() tensor.Options {
	return tensor.Options{
		AllowIncomplete:      c.Parsing.AllowIncomplete,
		AllowDuplicateBlocks: c.Parsing.AllowDuplicateBlocks,
	}
}

// Overrides are values given explicitly by the caller. A nil field was not set.
type Overrides struct {
	NumDirs   *int
	NumT2     *int
	BValue    *int
	Frequency *string
}

// Resolve builds the conversion parameters. Each value comes from the
// override if set, then the sidecar if present, then the configuration.
// The sidecar never supplies the b-value.
func Resolve(cfg *Config, sc *sidecar.Sidecar, ov Overrides) (models.ConversionParameters, error) {
	params := models.ConversionParameters{
		NumDirs: cfg.Conversion.NumDirs,
		NumT2:   cfg.Conversion.NumT2,
		BValue:  cfg.Conversion.BValue,
	}
	freq := cfg.Conversion.Frequency

	if sc != nil {
		if sc.NumDirs != nil {
			params.NumDirs = *sc.NumDirs
		}
		if sc.NumT2 != nil {
			params.NumT2 = *sc.NumT2
		}
		if f, ok := sc.Frequency(); ok {
			freq = string(f)
		}
	}

	if ov.NumDirs != nil {
		params.NumDirs = *ov.NumDirs
	}
	if ov.NumT2 != nil {
		params.NumT2 = *ov.NumT2
	}
	if ov.BValue != nil {
		params.BValue = *ov.BValue
	}
	if ov.Frequency != nil {
		freq = *ov.Frequency
	}

	if freq == "" {
		return params, ErrUnresolvedFrequency
	}
	f, err := models.ParseFrequency(freq)
	if err != nil {
		return params, err
	}
	params.Frequency = f

	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}
