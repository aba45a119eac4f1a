package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "./lexiquiz.yaml"

// Load returns the validated configuration. Values come from the YAML file
// named by CONFIG_PATH or, failing that, DefaultPath; environment variables
// win over the file and env-default tags fill the rest. Without CONFIG_PATH
// a missing file just means env and defaults only.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		path, explicit = DefaultPath, false
	}

	var cfg Config
	var err error
	switch _, statErr := os.Stat(path); {
	case statErr == nil:
		err = cleanenv.ReadConfig(path, &cfg)
	case explicit:
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		path = "env"
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
