package sdk

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/gnodet/vksdk/pkg/util"
)

// ValidateOutcome is what Validate ended up doing
type ValidateOutcome int

const (
	OutcomeUpToDate ValidateOutcome = iota
	OutcomeInstalled
	OutcomeUpdated
	OutcomeDeclined
)

func (o ValidateOutcome) String() string {
	switch o {
	case OutcomeUpToDate:
		return "up to date"
	case OutcomeInstalled:
		return "installed"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// ValidateResult summarizes a Validate run
type ValidateResult struct {
	Outcome   ValidateOutcome
	Latest    string
	Installed *InstalledSdkInfo // nil when nothing was installed beforehand
}

// Manager ties the oracle, scanner, installer and prompter together
type Manager struct {
	Oracle    VersionOracle
	Scanner   InstallationScanner
	Installer Installer
	Prompter  Prompter
	Out       io.Writer
}

func (m *Manager) out() io.Writer {
	if m.Out == nil {
		return io.Discard
	}
	return m.Out
}

// CheckLatest returns the latest published version for platformName
func (m *Manager) CheckLatest(ctx context.Context, platformName string) (string, error) {
	if _, err := ParsePlatform(platformName); err != nil {
		return "", err
	}
	return m.Oracle.GetLatestVersion(ctx, platformName)
}

// CheckInstalled returns the installation under installDir, or a
// NotInstalled error when there is none
func (m *Manager) CheckInstalled(installDir string) (*InstalledSdkInfo, error) {
	info, err := m.Scanner.GetCurrentVersion(installDir)
	if err != nil {
		return nil, err
	}
	if info == nil {
		abs, _ := filepath.Abs(installDir)
		return nil, NotInstalledError(abs)
	}
	return info, nil
}

// Validate installs the latest SDK when none is present, updates it when
// the installed version differs from the latest, and does nothing when it
// matches. Install and update are confirmed through the Prompter.
func (m *Manager) Validate(ctx context.Context, installDir, platformName string) (*ValidateResult, error) {
	platform, err := ParsePlatform(platformName)
	if err != nil {
		return nil, err
	}
	out := m.out()

	abs, err := filepath.Abs(installDir)
	if err != nil {
		return nil, FilesystemError("resolve install root", "", err)
	}
	fmt.Fprintf(out, "🔍 Searching for Vulkan SDK in %s\n", abs)

	var installed *InstalledSdkInfo
	var latest string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := m.Scanner.GetCurrentVersion(installDir)
		installed = info
		return err
	})
	g.Go(func() error {
		v, err := m.Oracle.GetLatestVersion(gctx, platformName)
		latest = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ValidateResult{Latest: latest, Installed: installed}
	plan := InstallPlan{InstallDir: installDir, Platform: platform, Version: latest}

	if installed == nil {
		fmt.Fprintln(out, "Vulkan SDK is not installed.")
		ok, err := m.Prompter.Confirm(fmt.Sprintf("Do you want to install it? (latest version: %s)", latest))
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Outcome = OutcomeDeclined
			return result, nil
		}
		if err := m.Installer.Install(ctx, plan); err != nil {
			return nil, err
		}
		result.Outcome = OutcomeInstalled
		return result, nil
	}

	fmt.Fprintf(out, "Vulkan SDK %s is installed at %s\n", installed.Version, installed.Path)
	util.LogVerbose("Comparing installed %s with latest %s", installed.Version, latest)

	// Plain string comparison: any difference, even a downgrade, is an update
	if installed.Version == latest {
		fmt.Fprintln(out, "Vulkan SDK is up to date.")
		result.Outcome = OutcomeUpToDate
		return result, nil
	}

	fmt.Fprintf(out, "Vulkan SDK update available: %s -> %s\n", installed.Version, latest)
	ok, err := m.Prompter.Confirm("Do you want to update it?")
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Outcome = OutcomeDeclined
		return result, nil
	}
	fmt.Fprintf(out, "Updating Vulkan SDK to %s...\n", latest)
	if err := m.Installer.Update(ctx, plan, installed); err != nil {
		return nil, err
	}
	result.Outcome = OutcomeUpdated
	return result, nil
}
