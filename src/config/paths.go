package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// StoragePaths contains paths for application storage
type StoragePaths struct {
	DatabasePath string
	ConfigPath   string
}

// GetDefaultStoragePaths returns default storage paths using XDG base directories
func GetDefaultStoragePaths() StoragePaths {
	// XDG_STATE_HOME for runtime state, XDG_CONFIG_HOME for config
	return StoragePaths{
		DatabasePath: filepath.Join(xdg.StateHome, "kaiwa", "kaiwa.db"),
		ConfigPath:   filepath.Join(xdg.ConfigHome, "kaiwa", "config.json"),
	}
}
