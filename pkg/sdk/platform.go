package sdk

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/gnodet/vksdk/pkg/util"
)

// Platform captures everything that differs between the three SDK targets
type Platform interface {
	// Name returns the platform key used by the metadata and download endpoints
	Name() string

	// Extension returns the artifact file extension (including the dot)
	Extension() string

	// DownloadURL returns <base>/<version>/<platform>/vulkan_sdk<ext>
	DownloadURL(base, version string) string

	// ExtractsArchive reports whether the artifact is an archive unpacked
	// into the install root (false for self-running installers)
	ExtractsArchive() bool

	// PostInstall performs platform-specific configuration after extraction
	PostInstall(ctx context.Context, pc *PostInstallContext) error
}

// PostInstallContext carries the inputs of a post-install handler
type PostInstallContext struct {
	SdkDir       string // <install_dir>/vulkan
	Version      string
	Artifact     string // artifact path for platforms that do not extract
	Replace      bool   // replace an existing export block instead of appending
	Distro       DistroDetector
	Configurator EnvironmentConfigurator
	Out          io.Writer
}

type basePlatform struct {
	name      string
	extension string
}

func (p basePlatform) Name() string      { return p.name }
func (p basePlatform) Extension() string { return p.extension }

func (p basePlatform) DownloadURL(base, version string) string {
	return fmt.Sprintf("%s/%s/%s/%s%s", base, version, p.name, ArtifactBaseName, p.extension)
}

// linuxPlatform extracts the tarball and wires the SDK into the shell profile
type linuxPlatform struct{ basePlatform }

func (linuxPlatform) ExtractsArchive() bool { return true }

func (linuxPlatform) PostInstall(ctx context.Context, pc *PostInstallContext) error {
	out := pc.Out
	if out == nil {
		out = io.Discard
	}

	distro := unknownDistro()
	if pc.Distro != nil {
		detected, err := pc.Distro()
		if err != nil {
			util.LogWarn("Could not detect Linux distribution: %v", err)
		} else {
			distro = detected
		}
	}
	fmt.Fprintf(out, "Detected distro: %s\n", distro.DisplayName())
	PrintSystemPrerequisites(out, distro)

	if err := ctx.Err(); err != nil {
		return err
	}

	if pc.Configurator == nil {
		return nil
	}

	var update *ProfileUpdate
	var err error
	if pc.Replace {
		update, err = pc.Configurator.ReplaceExports(pc.Version, pc.SdkDir)
	} else {
		update, err = pc.Configurator.AppendExports(pc.Version, pc.SdkDir)
	}
	if err != nil {
		return err
	}

	if update.Written {
		fmt.Fprintf(out, "✅ Added Vulkan SDK exports to %s\n", update.Path)
	} else {
		fmt.Fprintf(out, "✔️  Vulkan SDK export block already exists in %s\n", update.Path)
	}
	fmt.Fprintf(out, "ℹ️  Restart your terminal or run `source %s` to apply.\n", update.Path)
	return nil
}

// macPlatform extracts the zip; automatic configuration is not provided
type macPlatform struct{ basePlatform }

func (macPlatform) ExtractsArchive() bool { return true }

func (p macPlatform) PostInstall(ctx context.Context, pc *PostInstallContext) error {
	util.LogWarn("Automatic environment configuration is not available on %s; SDK extracted to %s", p.name, pc.SdkDir)
	return nil
}

// windowsPlatform downloads the installer executable and leaves it to the user
type windowsPlatform struct{ basePlatform }

func (windowsPlatform) ExtractsArchive() bool { return false }

func (p windowsPlatform) PostInstall(ctx context.Context, pc *PostInstallContext) error {
	util.LogWarn("Automatic installation is not available on %s; run the installer at %s", p.name, pc.Artifact)
	return nil
}

var platforms = []Platform{
	windowsPlatform{basePlatform{name: PlatformWindows, extension: ExtExe}},
	linuxPlatform{basePlatform{name: PlatformLinux, extension: ExtTarXz}},
	macPlatform{basePlatform{name: PlatformMac, extension: ExtZip}},
}

// PlatformNames returns the accepted platform names
func PlatformNames() []string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.Name())
	}
	return names
}

// ParsePlatform returns the platform for name, or UnsupportedPlatformError
func ParsePlatform(name string) (Platform, error) {
	for _, p := range platforms {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, UnsupportedPlatformError(name)
}

// DetectPlatform maps a GOOS value onto a platform name
func DetectPlatform(goos string) (string, error) {
	switch goos {
	case "windows":
		return PlatformWindows, nil
	case "linux":
		return PlatformLinux, nil
	case "darwin":
		return PlatformMac, nil
	default:
		return "", UnsupportedPlatformError(goos)
	}
}

// HostPlatform returns the platform name of the running host
func HostPlatform() (string, error) {
	return DetectPlatform(runtime.GOOS)
}
