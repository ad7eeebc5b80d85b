package sdk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnodet/vksdk/pkg/util"
)

// InstallState is the progress of a single install or update
type InstallState int

const (
	StateNotStarted InstallState = iota
	StateDownloading
	StateExtracting
	StateNormalizing
	StateConfiguringEnvironment
	// StateDone is terminal: the SDK is in place and configured
	StateDone
	// StateFailed is terminal: a step failed and the pipeline stopped
	StateFailed
)

func (s InstallState) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateDownloading:
		return "downloading"
	case StateExtracting:
		return "extracting"
	case StateNormalizing:
		return "normalizing"
	case StateConfiguringEnvironment:
		return "configuring environment"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for Done and Failed
func (s InstallState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// InstallObserver is notified on every state transition; err is set for StateFailed
type InstallObserver func(state InstallState, err error)

// Installer places an SDK version on disk and configures the environment
type Installer interface {
	Install(ctx context.Context, plan InstallPlan) error
	Update(ctx context.Context, plan InstallPlan, old *InstalledSdkInfo) error
}

// SdkInstaller runs download, extraction, layout normalization and
// post-install configuration. There is no rollback: a failed step leaves
// whatever the previous steps produced.
type SdkInstaller struct {
	Fetcher      Fetcher
	Extractor    *Extractor
	Distro       DistroDetector
	Configurator EnvironmentConfigurator
	Out          io.Writer
	Observer     InstallObserver

	state InstallState
}

// State returns the state reached by the last Install or Update
func (i *SdkInstaller) State() InstallState {
	return i.state
}

func (i *SdkInstaller) out() io.Writer {
	if i.Out == nil {
		return io.Discard
	}
	return i.Out
}

func (i *SdkInstaller) transition(state InstallState, err error) {
	util.LogVerbose("Install state: %s -> %s", i.state, state)
	i.state = state
	if i.Observer != nil {
		i.Observer(state, err)
	}
}

func (i *SdkInstaller) fail(err error) error {
	i.transition(StateFailed, err)
	return err
}

// Install downloads and installs plan.Version into plan.InstallDir
func (i *SdkInstaller) Install(ctx context.Context, plan InstallPlan) error {
	return i.run(ctx, plan, false)
}

// Update installs plan.Version, replaces the managed export block, then
// removes the old version directory if it lies inside the install root
func (i *SdkInstaller) Update(ctx context.Context, plan InstallPlan, old *InstalledSdkInfo) error {
	if old == nil {
		return i.Install(ctx, plan)
	}

	if err := i.run(ctx, plan, true); err != nil {
		return err
	}

	if !plan.Platform.ExtractsArchive() || old.Version == plan.Version {
		return nil
	}
	if err := removeOldVersion(plan, old); err != nil {
		return err
	}
	fmt.Fprintf(i.out(), "🗑️  Removed previous SDK %s from %s\n", old.Version, old.Path)
	return nil
}

func (i *SdkInstaller) run(ctx context.Context, plan InstallPlan, replace bool) error {
	if i.state != StateNotStarted && !i.state.IsTerminal() {
		return fmt.Errorf("an install is already in progress (%s)", i.state)
	}
	i.state = StateNotStarted
	if plan.Platform == nil {
		return i.fail(UnsupportedPlatformError(""))
	}
	if plan.Version == "" {
		return i.fail(fmt.Errorf("no SDK version to install"))
	}
	out := i.out()

	i.transition(StateDownloading, nil)
	fmt.Fprintf(out, "⬇️  Downloading Vulkan SDK %s for %s...\n", plan.Version, plan.Platform.Name())
	artifact, err := i.Fetcher.Download(ctx, plan)
	if err != nil {
		return i.fail(err)
	}

	sdkDir := plan.SdkDir()
	if plan.Platform.ExtractsArchive() {
		before, err := listEntries(sdkDir)
		if err != nil {
			return i.fail(FilesystemError("list SDK directory", plan.Version, err))
		}

		i.transition(StateExtracting, nil)
		fmt.Fprintf(out, "📂 Extracting %s to %s...\n", filepath.Base(artifact), sdkDir)
		if err := i.extractor().Extract(artifact, sdkDir); err != nil {
			return i.fail(FilesystemError("extract", plan.Version, err))
		}
		if err := os.Remove(artifact); err != nil {
			util.LogWarn("Failed to remove artifact %s: %v", artifact, err)
		}

		i.transition(StateNormalizing, nil)
		if err := normalizeLayout(plan, before); err != nil {
			return i.fail(err)
		}
	}

	i.transition(StateConfiguringEnvironment, nil)
	pc := &PostInstallContext{
		SdkDir:       sdkDir,
		Version:      plan.Version,
		Artifact:     artifact,
		Replace:      replace,
		Distro:       i.Distro,
		Configurator: i.Configurator,
		Out:          out,
	}
	if err := plan.Platform.PostInstall(ctx, pc); err != nil {
		return i.fail(WrapError(KindFilesystem, "configure environment", plan.Version, err))
	}

	i.transition(StateDone, nil)
	fmt.Fprintf(out, "✅ Vulkan SDK %s installed\n", plan.Version)
	return nil
}

func (i *SdkInstaller) extractor() *Extractor {
	if i.Extractor == nil {
		return NewExtractor()
	}
	return i.Extractor
}

// listEntries returns the names in dir, empty if dir does not exist
func listEntries(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	return names, nil
}

// normalizeLayout makes sure the SDK ends up at <install_dir>/vulkan/<version>.
// Archives that unpack to a stray <install_dir>/<version> or into a single
// wrapper directory are relocated; before lists what existed pre-extraction.
func normalizeLayout(plan InstallPlan, before map[string]bool) error {
	sdkDir := plan.SdkDir()
	target := filepath.Join(sdkDir, plan.Version)

	if isDir(target) {
		return nil
	}

	stray := filepath.Join(plan.InstallDir, plan.Version)
	if isDir(stray) {
		util.LogVerbose("Relocating %s to %s", stray, target)
		return relocate(stray, target, plan.Version)
	}

	after, err := listEntries(sdkDir)
	if err != nil {
		return FilesystemError("normalize layout", plan.Version, err)
	}
	var added []string
	for name := range after {
		if !before[name] {
			added = append(added, name)
		}
	}

	if len(added) == 1 {
		wrapper := filepath.Join(sdkDir, added[0])
		if !isDir(wrapper) {
			return FilesystemError("normalize layout", plan.Version,
				fmt.Errorf("archive produced a single file %s instead of an SDK directory", added[0]))
		}

		// <wrapper>/<version> or the wrapper itself is the SDK
		nested := filepath.Join(wrapper, plan.Version)
		if isDir(nested) {
			util.LogVerbose("Relocating %s to %s", nested, target)
			if err := relocate(nested, target, plan.Version); err != nil {
				return err
			}
			os.Remove(wrapper)
			return nil
		}
		util.LogVerbose("Relocating %s to %s", wrapper, target)
		return relocate(wrapper, target, plan.Version)
	}

	return FilesystemError("normalize layout", plan.Version,
		fmt.Errorf("extracted archive did not produce %s (%d new entries in %s)", target, len(added), sdkDir))
}

func relocate(src, dst, version string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return FilesystemError("normalize layout", version, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return FilesystemError("normalize layout", version, err)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// removeOldVersion deletes old.Path, refusing anything outside the install
// root or the freshly installed version directory
func removeOldVersion(plan InstallPlan, old *InstalledSdkInfo) error {
	root, err := filepath.Abs(plan.InstallDir)
	if err != nil {
		return FilesystemError("remove previous version", old.Version, err)
	}
	oldPath, err := filepath.Abs(old.Path)
	if err != nil {
		return FilesystemError("remove previous version", old.Version, err)
	}
	newPath, err := filepath.Abs(filepath.Join(plan.SdkDir(), plan.Version))
	if err != nil {
		return FilesystemError("remove previous version", old.Version, err)
	}

	rel, err := filepath.Rel(root, oldPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		util.LogWarn("Not removing %s: outside install root %s", oldPath, root)
		return nil
	}
	if oldPath == newPath {
		return nil
	}

	if err := os.RemoveAll(oldPath); err != nil {
		return FilesystemError("remove previous version", old.Version, err)
	}
	return nil
}
