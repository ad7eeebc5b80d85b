package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

// Endpoints and timeouts used when nothing else is configured
const (
	DefaultMetadataURL     = "https://vulkan.lunarg.com/sdk/latest.json"
	DefaultDownloadBaseURL = "https://sdk.lunarg.com/sdk/download"
	DefaultInstallDir      = "."
	DefaultMetadataTimeout = 120 * time.Second // 2 minutes
	DefaultDownloadTimeout = 600 * time.Second // 10 minutes
)

// Config represents the vksdk configuration
type Config struct {
	InstallDir      string            `json:"install_dir,omitempty" yaml:"install_dir,omitempty" toml:"install_dir,omitempty"`
	Platform        string            `json:"platform,omitempty" yaml:"platform,omitempty" toml:"platform,omitempty"`
	MetadataURL     string            `json:"metadata_url,omitempty" yaml:"metadata_url,omitempty" toml:"metadata_url,omitempty"`
	DownloadBaseURL string            `json:"download_base_url,omitempty" yaml:"download_base_url,omitempty" toml:"download_base_url,omitempty"`
	MetadataTimeout string            `json:"metadata_timeout,omitempty" yaml:"metadata_timeout,omitempty" toml:"metadata_timeout,omitempty"`
	DownloadTimeout string            `json:"download_timeout,omitempty" yaml:"download_timeout,omitempty" toml:"download_timeout,omitempty"`
	AssumeYes       bool              `json:"assume_yes,omitempty" yaml:"assume_yes,omitempty" toml:"assume_yes,omitempty"`
	URLReplacements map[string]string `json:"url_replacements,omitempty" yaml:"url_replacements,omitempty" toml:"url_replacements,omitempty"`

	// Source is the file the configuration was read from, empty when only
	// defaults and environment were used.
	Source string `json:"-" yaml:"-" toml:"-"`
}

// configFiles lists the accepted file names in order of preference
var configFiles = []string{
	"config.json5",
	"config.yml",
	"config.yaml",
	"config.toml",
	"config.json",
}

// LoadConfig loads the global configuration file (if any), applies
// environment overrides and fills in defaults.
func LoadConfig() (*Config, error) {
	return LoadConfigWithProvider(NewEnvironmentConfigProvider())
}

// LoadConfigWithProvider is LoadConfig with an explicit override source
func LoadConfigWithProvider(provider ConfigProvider) (*Config, error) {
	cfg := &Config{}

	configDir, err := getGlobalConfigDir()
	if err != nil {
		return nil, err
	}

	for _, filename := range configFiles {
		configPath := filepath.Join(configDir, filename)
		if _, err := os.Stat(configPath); err == nil {
			cfg, err = loadConfigFile(configPath)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.ApplyOverrides(provider)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadConfigFile loads configuration from a specific file
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json5", ".json":
		// .json goes through the JSON5 decoder too so comments are allowed
		err = json5.Unmarshal(data, &config)
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &config)
	case ".toml":
		err = toml.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.Source = path
	return &config, nil
}

// ApplyOverrides replaces file values with environment overrides
func (c *Config) ApplyOverrides(provider ConfigProvider) {
	c.InstallDir = provider.GetString(EnvInstallDir, c.InstallDir)
	c.Platform = provider.GetString(EnvPlatform, c.Platform)
	c.MetadataURL = provider.GetString(EnvMetadataURL, c.MetadataURL)
	c.DownloadBaseURL = provider.GetString(EnvDownloadBaseURL, c.DownloadBaseURL)
	c.MetadataTimeout = provider.GetString(EnvMetadataTimeout, c.MetadataTimeout)
	c.DownloadTimeout = provider.GetString(EnvDownloadTimeout, c.DownloadTimeout)
	c.AssumeYes = provider.GetBool(EnvAssumeYes, c.AssumeYes)
}

// ApplyDefaults fills in every unset field
func (c *Config) ApplyDefaults() {
	if c.InstallDir == "" {
		c.InstallDir = DefaultInstallDir
	}
	if c.MetadataURL == "" {
		c.MetadataURL = DefaultMetadataURL
	}
	if c.DownloadBaseURL == "" {
		c.DownloadBaseURL = DefaultDownloadBaseURL
	}
	c.DownloadBaseURL = strings.TrimRight(c.DownloadBaseURL, "/")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MetadataTimeout != "" {
		if _, err := parseTimeout(c.MetadataTimeout); err != nil {
			return fmt.Errorf("metadata_timeout: %w", err)
		}
	}
	if c.DownloadTimeout != "" {
		if _, err := parseTimeout(c.DownloadTimeout); err != nil {
			return fmt.Errorf("download_timeout: %w", err)
		}
	}
	return nil
}

// GetMetadataTimeout returns the timeout for the latest-version lookup
func (c *Config) GetMetadataTimeout() time.Duration {
	if d, err := parseTimeout(c.MetadataTimeout); err == nil {
		return d
	}
	return DefaultMetadataTimeout
}

// GetDownloadTimeout returns the timeout for the whole artifact download
func (c *Config) GetDownloadTimeout() time.Duration {
	if d, err := parseTimeout(c.DownloadTimeout); err == nil {
		return d
	}
	return DefaultDownloadTimeout
}

func parseTimeout(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", value)
	}
	return d, nil
}

// FormatAsYAML renders the effective configuration for display
func FormatAsYAML(cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to format configuration: %w", err)
	}
	return string(data), nil
}
