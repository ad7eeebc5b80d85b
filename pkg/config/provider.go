package config

import (
	"os"
	"strconv"
)

// Environment Variable Names
const (
	EnvConfigDir       = "VKSDK_CONFIG_DIR"
	EnvInstallDir      = "VKSDK_INSTALL_DIR"
	EnvPlatform        = "VKSDK_PLATFORM"
	EnvMetadataURL     = "VKSDK_METADATA_URL"
	EnvDownloadBaseURL = "VKSDK_DOWNLOAD_BASE_URL"
	EnvMetadataTimeout = "VKSDK_METADATA_TIMEOUT"
	EnvDownloadTimeout = "VKSDK_DOWNLOAD_TIMEOUT"
	EnvAssumeYes       = "VKSDK_ASSUME_YES"
)

// ConfigProvider interface for providing configuration values
type ConfigProvider interface {
	GetString(key string, defaultValue string) string
	GetBool(key string, defaultValue bool) bool
}

// EnvironmentConfigProvider provides configuration from environment variables
type EnvironmentConfigProvider struct{}

// NewEnvironmentConfigProvider creates a new environment-based config provider
func NewEnvironmentConfigProvider() *EnvironmentConfigProvider {
	return &EnvironmentConfigProvider{}
}

// GetString returns a string value from environment or default
func (p *EnvironmentConfigProvider) GetString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBool returns a boolean value from environment or default
func (p *EnvironmentConfigProvider) GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// MapConfigProvider serves overrides from a fixed map
type MapConfigProvider map[string]string

// GetString returns a string value from the map or default
func (m MapConfigProvider) GetString(key string, defaultValue string) string {
	if value, ok := m[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

// GetBool returns a boolean value from the map or default
func (m MapConfigProvider) GetBool(key string, defaultValue bool) bool {
	if value, ok := m[key]; ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
