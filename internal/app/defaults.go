package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override the default locations.
const (
	EnvConfigPath = "PHOTOSORT_CONFIG_PATH"
	EnvHome       = "PHOTOSORT_HOME"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - PHOTOSORT_CONFIG_PATH: config file location (default: ~/.config/photosort.toml)
//   - PHOTOSORT_HOME: base directory for the catalog, snapshots and logs
//     (default: ~/.local/share/photosort)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome(EnvConfigPath, ".config", "photosort.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := envOrHome(EnvHome, ".local", "share", "photosort")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// envOrHome returns the value of env, or the path formed by joining elem
// onto the user's home directory when env is unset.
func envOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
