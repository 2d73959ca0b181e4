package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "mailshot"
	defaultConfigFile    = "campaign.yaml"
)

// DefaultConfigPath returns $MAILSHOT_CONFIG, or campaign.yaml in the user
// config directory.
func DefaultConfigPath() string {
	if env := os.Getenv("MAILSHOT_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mailshot", defaultConfigFile)
}

// ResolveRelative makes path relative to the directory of the campaign file,
// so a campaign directory can be moved around as a unit. Absolute and empty
// paths are returned unchanged.
func ResolveRelative(configPath, path string) string {
	if path == "" || filepath.IsAbs(path) || configPath == "" {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}
