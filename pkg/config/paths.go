package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the path to the console config directory (~/.proxyconsole).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".proxyconsole"), nil
}

// DefaultPath returns the path to the named config file. Absolute names are
// returned unchanged. Otherwise ~/.proxyconsole/<name> is used when present,
// then /etc/proxyconsole/<name>; if neither exists the home path is returned
// so error messages show the expected location.
func DefaultPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	homePath := filepath.Join(dir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	systemPath := filepath.Join("/etc/proxyconsole", name)
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath, nil
	}

	return homePath, nil
}
