package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// withConfigDir points the global config lookup at dir for the duration of the test
func withConfigDir(t *testing.T, dir string) {
	t.Helper()
	original := GetGlobalConfigDirFunc()
	SetGlobalConfigDirFunc(func() (string, error) { return dir, nil })
	t.Cleanup(func() { SetGlobalConfigDirFunc(original) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withConfigDir(t, t.TempDir())

	cfg, err := LoadConfigWithProvider(MapConfigProvider{})
	if err != nil {
		t.Fatalf("LoadConfig should not fail when no file exists: %v", err)
	}

	if cfg.Source != "" {
		t.Errorf("Expected no source file, got %s", cfg.Source)
	}
	if cfg.InstallDir != DefaultInstallDir {
		t.Errorf("InstallDir = %s, want %s", cfg.InstallDir, DefaultInstallDir)
	}
	if cfg.MetadataURL != DefaultMetadataURL {
		t.Errorf("MetadataURL = %s, want %s", cfg.MetadataURL, DefaultMetadataURL)
	}
	if cfg.DownloadBaseURL != DefaultDownloadBaseURL {
		t.Errorf("DownloadBaseURL = %s, want %s", cfg.DownloadBaseURL, DefaultDownloadBaseURL)
	}
	if cfg.GetMetadataTimeout() != DefaultMetadataTimeout {
		t.Errorf("GetMetadataTimeout() = %v, want %v", cfg.GetMetadataTimeout(), DefaultMetadataTimeout)
	}
	if cfg.GetDownloadTimeout() != DefaultDownloadTimeout {
		t.Errorf("GetDownloadTimeout() = %v, want %v", cfg.GetDownloadTimeout(), DefaultDownloadTimeout)
	}
}

func TestLoadConfig_FileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json5 with comments and unquoted keys",
			file: "config.json5",
			content: `{
  // where the SDK lives
  install_dir: "/opt/sdk",
  platform: "linux",
  metadata_timeout: "30s",
  assume_yes: true,
}`,
		},
		{
			name: "yaml",
			file: "config.yml",
			content: `install_dir: /opt/sdk
platform: linux
metadata_timeout: 30s
assume_yes: true
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `install_dir = "/opt/sdk"
platform = "linux"
metadata_timeout = "30s"
assume_yes = true
`,
		},
		{
			name:    "plain json",
			file:    "config.json",
			content: `{"install_dir": "/opt/sdk", "platform": "linux", "metadata_timeout": "30s", "assume_yes": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			withConfigDir(t, dir)

			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			cfg, err := LoadConfigWithProvider(MapConfigProvider{})
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}

			if cfg.Source != path {
				t.Errorf("Source = %s, want %s", cfg.Source, path)
			}
			if cfg.InstallDir != "/opt/sdk" {
				t.Errorf("InstallDir = %s, want /opt/sdk", cfg.InstallDir)
			}
			if cfg.Platform != "linux" {
				t.Errorf("Platform = %s, want linux", cfg.Platform)
			}
			if !cfg.AssumeYes {
				t.Error("AssumeYes should be true")
			}
			if cfg.GetMetadataTimeout() != 30*time.Second {
				t.Errorf("GetMetadataTimeout() = %v, want 30s", cfg.GetMetadataTimeout())
			}
		})
	}
}

func TestLoadConfig_PreferenceOrder(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("platform: mac\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{platform: "windows"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigWithProvider(MapConfigProvider{})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Platform != "windows" {
		t.Errorf("Expected config.json5 to win, got platform %s", cfg.Platform)
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("install_dir: /from/file\nplatform: mac\n"), 0644); err != nil {
		t.Fatal(err)
	}

	provider := MapConfigProvider{
		EnvInstallDir:      "/from/env",
		EnvDownloadBaseURL: "https://mirror.example.com/sdk/",
		EnvAssumeYes:       "true",
	}

	cfg, err := LoadConfigWithProvider(provider)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.InstallDir != "/from/env" {
		t.Errorf("InstallDir = %s, want /from/env", cfg.InstallDir)
	}
	if cfg.Platform != "mac" {
		t.Errorf("Platform = %s, want mac (not overridden)", cfg.Platform)
	}
	if cfg.DownloadBaseURL != "https://mirror.example.com/sdk" {
		t.Errorf("DownloadBaseURL = %s, trailing slash should be trimmed", cfg.DownloadBaseURL)
	}
	if !cfg.AssumeYes {
		t.Error("AssumeYes should be overridden to true")
	}
}

func TestLoadConfig_InvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("download_timeout: forever\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfigWithProvider(MapConfigProvider{})
	if err == nil {
		t.Fatal("Expected error for invalid download_timeout")
	}
	if !strings.Contains(err.Error(), "download_timeout") {
		t.Errorf("Error should name the offending key, got: %v", err)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{install_dir: `), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfigWithProvider(MapConfigProvider{}); err == nil {
		t.Fatal("Expected parse error for truncated config")
	}
}

func TestFormatAsYAML(t *testing.T) {
	cfg := &Config{InstallDir: "/opt/sdk", Platform: "linux"}
	cfg.ApplyDefaults()

	out, err := FormatAsYAML(cfg)
	if err != nil {
		t.Fatalf("FormatAsYAML() error = %v", err)
	}

	for _, expected := range []string{"install_dir: /opt/sdk", "platform: linux", "metadata_url: " + DefaultMetadataURL} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected output to contain %q, got:\n%s", expected, out)
		}
	}
}
