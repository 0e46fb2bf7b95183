// Package config loads and validates the fuzzer's YAML configuration:
// start from defaults, then overlay a file if present, with environment
// variables expanded in the file's text before it is parsed.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the fuzzer's top-level configuration.
type Config struct {
	UseUI                bool          `yaml:"use_ui"`
	NbThreads            int           `yaml:"nb_threads"`
	Seed                 int64         `yaml:"seed"`
	Contract             string        `yaml:"contract"`
	ExecsBeforeCovUpdate uint64        `yaml:"execs_before_cov_update"`
	CorpusDir            string        `yaml:"corpus_dir"`
	CrashesDir           string        `yaml:"crashes_dir"`
	FuzzFunctionsPrefix  string        `yaml:"fuzz_functions_prefix"`
	Detectors            []string      `yaml:"detectors"`
	MaxCallSequenceSize  int           `yaml:"max_call_sequence_size"`
	Logging              LoggingConfig `yaml:"logging"`
	MetricsAddr          string        `yaml:"metrics_addr"`
	Sandbox              SandboxConfig `yaml:"sandbox"`
}

// LoggingConfig controls the structured logger's verbosity and output shape.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SandboxConfig controls whether the Runner executes inside a Docker
// sandbox (pkg/runner/sandbox) rather than in-process.
type SandboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Image   string `yaml:"image"`
}

// DefaultConfig returns the configuration used when no file is present and
// no option is overridden; a missing seed defaults to an
// implementation-chosen constant.
func DefaultConfig() *Config {
	return &Config{
		UseUI:                true,
		NbThreads:            4,
		Seed:                 1,
		ExecsBeforeCovUpdate: 1000,
		CorpusDir:            "./corpus",
		CrashesDir:           "./crashes",
		FuzzFunctionsPrefix:  "fuzz_",
		Detectors:            []string{"All"},
		MaxCallSequenceSize:  16,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file (config.yaml when path is
// empty), returning the defaults when that file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(expandedData, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration's required fields and invariants.
func (c *Config) Validate() error {
	if c.NbThreads < 1 {
		return fmt.Errorf("nb_threads must be at least 1")
	}
	if c.Contract == "" {
		return fmt.Errorf("contract is required")
	}
	if c.CorpusDir == "" {
		return fmt.Errorf("corpus_dir is required")
	}
	if c.CrashesDir == "" {
		return fmt.Errorf("crashes_dir is required")
	}
	if c.ExecsBeforeCovUpdate == 0 {
		return fmt.Errorf("execs_before_cov_update must be at least 1")
	}
	if c.Sandbox.Enabled && c.Sandbox.Image == "" {
		return fmt.Errorf("sandbox.image is required when sandbox.enabled is true")
	}
	return nil
}
