package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads the server configuration. Values come from, in rising priority:
// env-default tags, the YAML file, environment variables. The file is
// CONFIG_PATH when set (and must then exist), otherwise ./config.yaml if
// present.
func Load() (*Config, error) {
	cfg, err := read(cwdConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// LoadLocal reads the configuration of the terminal client. Besides
// ./config.yaml it looks for memorygym/config.yaml under the user config
// directory, and it requires neither PostgreSQL nor a JWT secret.
func LoadLocal() (*Config, error) {
	candidates := []string{cwdConfig}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "memorygym", "config.yaml"))
	}

	cfg, err := read(candidates...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateLocal(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

const cwdConfig = "./config.yaml"

func read(candidates ...string) (*Config, error) {
	var cfg Config

	path, err := configFile(candidates)
	if err != nil {
		return nil, err
	}

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return &cfg, nil
}

// configFile picks CONFIG_PATH or the first existing candidate. An empty
// result means environment only.
func configFile(candidates []string) (string, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config: file %s: %w", path, err)
		}
		return path, nil
	}

	for _, path := range candidates {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			return path, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("config: file %s: %w", path, err)
		}
	}
	return "", nil
}
