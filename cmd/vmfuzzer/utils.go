package main

import (
	"fmt"
	"os"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/config"
)

// loadConfig loads the configuration from cfgPath, auto-generating a
// default file if none exists yet.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("config file not found, creating default configuration at: %s\n", path)

		cfg := config.DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
