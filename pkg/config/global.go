package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// globalConfigDirFunc is a function variable that can be overridden for testing
var globalConfigDirFunc = getGlobalConfigDirImpl

// getGlobalConfigDir returns the global configuration directory
func getGlobalConfigDir() (string, error) {
	return globalConfigDirFunc()
}

// getGlobalConfigDirImpl is the actual implementation
func getGlobalConfigDirImpl() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	var homeDir string
	var err error

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
		if homeDir == "" {
			homeDir = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
	} else {
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
	}

	if homeDir == "" {
		return "", fmt.Errorf("unable to determine user home directory")
	}

	return filepath.Join(homeDir, ".vksdk"), nil
}

// GetGlobalConfigDir returns the directory searched for config files
func GetGlobalConfigDir() (string, error) {
	return getGlobalConfigDir()
}

// SetGlobalConfigDirFunc sets the global config directory function (for testing)
func SetGlobalConfigDirFunc(fn func() (string, error)) {
	globalConfigDirFunc = fn
}

// GetGlobalConfigDirFunc returns the current global config directory function (for testing)
func GetGlobalConfigDirFunc() func() (string, error) {
	return globalConfigDirFunc
}
