package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetSecrevHome returns the secrev home directory
// Priority order:
//  1. SECREV_HOME environment variable (if set)
//  2. <user config dir>/secrev (XDG_CONFIG_HOME, ~/Library/Application Support, %AppData%)
//
// The directory is created if it doesn't exist
func GetSecrevHome() (string, error) {
	home := os.Getenv("SECREV_HOME")
	if home == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("config directory: %w", err)
		}
		home = filepath.Join(base, "secrev")
	}

	if err := os.MkdirAll(home, 0o750); err != nil {
		return "", fmt.Errorf("create secrev home directory: %w", err)
	}

	return home, nil
}

// GetCacheDBPath returns the analysis cache database path.
// An explicit configured path wins; otherwise $SECREV_HOME/cache.db.
func (c *Config) GetCacheDBPath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}

	home, err := GetSecrevHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, "cache.db"), nil
}
