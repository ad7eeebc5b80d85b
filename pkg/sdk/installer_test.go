package sdk

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

type installFixture struct {
	root      string
	home      string
	installer *SdkInstaller
	out       *bytes.Buffer
	states    []InstallState
}

func newInstallFixture(t *testing.T, artifact []byte) *installFixture {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(artifact)
	}))
	t.Cleanup(server.Close)

	f := &installFixture{
		root: t.TempDir(),
		home: t.TempDir(),
		out:  &bytes.Buffer{},
	}
	f.installer = &SdkInstaller{
		Fetcher:      NewHTTPFetcher(server.URL, time.Minute, nil),
		Extractor:    &Extractor{LookPath: noSystemTar},
		Distro:       func() (*DistroInfo, error) { return &DistroInfo{Name: "Ubuntu", ID: "ubuntu"}, nil },
		Configurator: &ProfileConfigurator{Home: f.home, Shell: "/bin/bash"},
		Out:          f.out,
		Observer: func(state InstallState, err error) {
			f.states = append(f.states, state)
		},
	}
	return f
}

func (f *installFixture) plan(t *testing.T, platform, version string) InstallPlan {
	t.Helper()
	p, err := ParsePlatform(platform)
	if err != nil {
		t.Fatal(err)
	}
	return InstallPlan{InstallDir: f.root, Platform: p, Version: version}
}

func (f *installFixture) profile(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.home, ".bashrc"))
	if err != nil {
		t.Fatalf("Failed to read profile: %v", err)
	}
	return string(data)
}

func TestInstallLinux(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name:  "version at archive root",
			files: map[string]string{"1.3.296.0/x86_64/bin/vulkaninfo": "bin"},
		},
		{
			name:  "version inside a wrapper directory",
			files: map[string]string{"VulkanSDK/1.3.296.0/x86_64/bin/vulkaninfo": "bin"},
		},
		{
			name:  "wrapper directory is the SDK",
			files: map[string]string{"vulkansdk-linux-x86_64/x86_64/bin/vulkaninfo": "bin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInstallFixture(t, buildTarXz(t, tt.files))

			if err := f.installer.Install(context.Background(), f.plan(t, PlatformLinux, "1.3.296.0")); err != nil {
				t.Fatalf("Install() error = %v", err)
			}

			binary := filepath.Join(f.root, "vulkan", "1.3.296.0", "x86_64", "bin", "vulkaninfo")
			if _, err := os.Stat(binary); err != nil {
				t.Errorf("Expected SDK at %s: %v", binary, err)
			}
			if _, err := os.Stat(filepath.Join(f.root, "vulkan_sdk.tar.xz")); !os.IsNotExist(err) {
				t.Error("Artifact should be removed after extraction")
			}

			entries, _ := os.ReadDir(filepath.Join(f.root, "vulkan"))
			if len(entries) != 1 {
				t.Errorf("Expected only the version directory under vulkan/, found %d entries", len(entries))
			}

			expectedStates := []InstallState{StateDownloading, StateExtracting, StateNormalizing, StateConfiguringEnvironment, StateDone}
			if !reflect.DeepEqual(f.states, expectedStates) {
				t.Errorf("States = %v, want %v", f.states, expectedStates)
			}
			if f.installer.State() != StateDone {
				t.Errorf("State() = %v, want done", f.installer.State())
			}

			profile := f.profile(t)
			expectedHome := filepath.Join(f.root, "vulkan", "1.3.296.0", "x86_64")
			if !strings.Contains(profile, "export VULKAN_SDK="+expectedHome) {
				t.Errorf("Profile missing VULKAN_SDK export, got:\n%s", profile)
			}
			if !strings.Contains(f.out.String(), "sudo apt install") {
				t.Errorf("Expected prerequisites in output, got:\n%s", f.out.String())
			}
		})
	}
}

func TestInstallMacExtractsWithoutProfile(t *testing.T) {
	f := newInstallFixture(t, buildZip(t, map[string]string{"1.3.296.0/macOS/bin/vulkaninfo": "bin"}))

	if err := f.installer.Install(context.Background(), f.plan(t, PlatformMac, "1.3.296.0")); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, "vulkan", "1.3.296.0", "macOS", "bin", "vulkaninfo")); err != nil {
		t.Errorf("Expected extracted SDK: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.home, ".bashrc")); !os.IsNotExist(err) {
		t.Error("mac install should not touch the shell profile")
	}
}

func TestInstallWindowsKeepsInstaller(t *testing.T) {
	f := newInstallFixture(t, append([]byte("MZ"), make([]byte, 32)...))

	if err := f.installer.Install(context.Background(), f.plan(t, PlatformWindows, "1.3.296.0")); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, "vulkan_sdk.exe")); err != nil {
		t.Errorf("Installer executable should be kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, "vulkan")); !os.IsNotExist(err) {
		t.Error("windows install should not create the vulkan directory")
	}

	expectedStates := []InstallState{StateDownloading, StateConfiguringEnvironment, StateDone}
	if !reflect.DeepEqual(f.states, expectedStates) {
		t.Errorf("States = %v, want %v", f.states, expectedStates)
	}
}

func TestInstallDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	f := newInstallFixture(t, nil)
	f.installer.Fetcher = NewHTTPFetcher(server.URL, time.Minute, nil)

	var failure error
	f.installer.Observer = func(state InstallState, err error) {
		f.states = append(f.states, state)
		if state == StateFailed {
			failure = err
		}
	}

	err := f.installer.Install(context.Background(), f.plan(t, PlatformLinux, "1.3.296.0"))
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Expected ErrNetwork, got %v", err)
	}
	if !reflect.DeepEqual(f.states, []InstallState{StateDownloading, StateFailed}) {
		t.Errorf("States = %v", f.states)
	}
	if failure == nil {
		t.Error("Observer should receive the failure")
	}
	if !f.installer.State().IsTerminal() {
		t.Error("Failed state should be terminal")
	}
	if _, err := os.Stat(filepath.Join(f.root, "vulkan")); !os.IsNotExist(err) {
		t.Error("Extraction should not run after a failed download")
	}
}

func TestInstallRefusesWhileInProgress(t *testing.T) {
	f := newInstallFixture(t, buildTarXz(t, map[string]string{"1.3.296.0/x86_64/bin/vulkaninfo": "bin"}))
	f.installer.state = StateExtracting

	err := f.installer.Install(context.Background(), f.plan(t, PlatformLinux, "1.3.296.0"))
	if err == nil {
		t.Fatal("Expected an error while another install is running")
	}
	if f.installer.State() != StateExtracting {
		t.Errorf("State = %s, want extracting", f.installer.State())
	}
	if len(f.states) != 0 {
		t.Errorf("No transition expected, got %v", f.states)
	}
}

func TestInstallCanRunAgainAfterTerminalState(t *testing.T) {
	f := newInstallFixture(t, buildTarXz(t, map[string]string{"1.3.296.0/x86_64/bin/vulkaninfo": "bin"}))
	f.installer.state = StateFailed

	if err := f.installer.Install(context.Background(), f.plan(t, PlatformLinux, "1.3.296.0")); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if f.installer.State() != StateDone {
		t.Errorf("State = %s, want done", f.installer.State())
	}
}

func TestInstallUnrecognizedLayout(t *testing.T) {
	f := newInstallFixture(t, buildTarXz(t, map[string]string{
		"a/readme.txt": "a",
		"b/readme.txt": "b",
	}))

	err := f.installer.Install(context.Background(), f.plan(t, PlatformLinux, "1.3.296.0"))
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("Expected ErrFilesystem, got %v", err)
	}
	if f.installer.State() != StateFailed {
		t.Errorf("State() = %v, want failed", f.installer.State())
	}
}

func TestUpdateReplacesPreviousVersion(t *testing.T) {
	f := newInstallFixture(t, buildTarXz(t, map[string]string{"1.3.296.0/x86_64/bin/vulkaninfo": "new"}))

	oldDir := filepath.Join(f.root, "vulkan", "1.3.240.0")
	mkdirs(t, oldDir, "x86_64/bin")
	if _, err := f.installer.Configurator.AppendExports("1.3.240.0", filepath.Join(f.root, "vulkan")); err != nil {
		t.Fatal(err)
	}

	old, err := NewDirectoryScanner().GetCurrentVersion(f.root)
	if err != nil || old == nil {
		t.Fatalf("Expected old installation, got %v, %v", old, err)
	}

	if err := f.installer.Update(context.Background(), f.plan(t, PlatformLinux, "1.3.296.0"), old); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("Old version directory should be removed")
	}

	current, _ := NewDirectoryScanner().GetCurrentVersion(f.root)
	if current == nil || current.Version != "1.3.296.0" {
		t.Errorf("Scanner should now report 1.3.296.0, got %+v", current)
	}

	profile := f.profile(t)
	if strings.Count(profile, ExportBlockBegin) != 1 {
		t.Errorf("Expected one export block, got:\n%s", profile)
	}
	if strings.Contains(profile, "1.3.240.0") || !strings.Contains(profile, "1.3.296.0") {
		t.Errorf("Export block not replaced, got:\n%s", profile)
	}
}

func TestNormalizeLayoutRelocatesStrayVersion(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "1.3.296.0/x86_64")
	p, _ := ParsePlatform(PlatformLinux)
	plan := InstallPlan{InstallDir: root, Platform: p, Version: "1.3.296.0"}

	if err := normalizeLayout(plan, map[string]bool{}); err != nil {
		t.Fatalf("normalizeLayout() error = %v", err)
	}
	if !isDir(filepath.Join(root, "vulkan", "1.3.296.0", "x86_64")) {
		t.Error("Stray version directory was not relocated")
	}
	if isDir(filepath.Join(root, "1.3.296.0")) {
		t.Error("Stray version directory should be gone")
	}
}

func TestRemoveOldVersionStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	mkdirs(t, outside, "vulkan/1.3.240.0")

	p, _ := ParsePlatform(PlatformLinux)
	plan := InstallPlan{InstallDir: root, Platform: p, Version: "1.3.296.0"}
	old := &InstalledSdkInfo{Version: "1.3.240.0", Path: filepath.Join(outside, "vulkan", "1.3.240.0")}

	if err := removeOldVersion(plan, old); err != nil {
		t.Fatalf("removeOldVersion() error = %v", err)
	}
	if !isDir(old.Path) {
		t.Error("Directory outside the install root must not be removed")
	}

	if err := removeOldVersion(plan, &InstalledSdkInfo{Version: "x", Path: root}); err != nil {
		t.Fatal(err)
	}
	if !isDir(root) {
		t.Error("Install root itself must not be removed")
	}
}

func TestInstallStateString(t *testing.T) {
	tests := map[InstallState]string{
		StateNotStarted:             "not started",
		StateDownloading:            "downloading",
		StateExtracting:             "extracting",
		StateNormalizing:            "normalizing",
		StateConfiguringEnvironment: "configuring environment",
		StateDone:                   "done",
		StateFailed:                 "failed",
		InstallState(99):            "unknown",
	}
	for state, expected := range tests {
		if state.String() != expected {
			t.Errorf("String() = %s, want %s", state.String(), expected)
		}
	}
}
