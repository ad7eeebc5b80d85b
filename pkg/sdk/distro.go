package sdk

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Default locations of the os-release file
const (
	OSReleasePath         = "/etc/os-release"
	FallbackOSReleasePath = "/usr/lib/os-release"
)

// DistroDetector returns the Linux distribution of the host
type DistroDetector func() (*DistroInfo, error)

// DistroInfo holds the os-release fields used to pick prerequisites
type DistroInfo struct {
	Name   string
	ID     string
	IDLike []string
}

// DistroFamily groups distributions that share a package manager
type DistroFamily int

const (
	FamilyUnknown DistroFamily = iota
	FamilyDebian
	FamilyFedora
	FamilyArch
)

func unknownDistro() *DistroInfo {
	return &DistroInfo{Name: "unknown"}
}

// DisplayName returns the upper-cased distribution name
func (d *DistroInfo) DisplayName() string {
	if d.Name == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(d.Name)
}

// Family classifies the distribution by ID first, then ID_LIKE, then NAME
func (d *DistroInfo) Family() DistroFamily {
	ids := append([]string{d.ID}, d.IDLike...)
	for _, id := range ids {
		switch strings.ToLower(id) {
		case "ubuntu", "debian", "linuxmint", "pop":
			return FamilyDebian
		case "fedora", "rhel", "centos", "rocky", "almalinux":
			return FamilyFedora
		case "arch", "manjaro", "endeavouros":
			return FamilyArch
		}
	}

	name := strings.ToUpper(d.Name)
	switch {
	case strings.Contains(name, "UBUNTU"), strings.Contains(name, "DEBIAN"):
		return FamilyDebian
	case strings.Contains(name, "FEDORA"):
		return FamilyFedora
	case strings.Contains(name, "ARCH"):
		return FamilyArch
	}
	return FamilyUnknown
}

// DetectDistro reads the first existing os-release file among paths.
// With no paths it uses the standard locations.
func DetectDistro(paths ...string) (*DistroInfo, error) {
	if len(paths) == 0 {
		paths = []string{OSReleasePath, FallbackOSReleasePath}
	}

	var lastErr error
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		defer f.Close()
		return ParseOSRelease(f)
	}
	return nil, fmt.Errorf("failed to read os-release: %w", lastErr)
}

// ParseOSRelease parses the KEY=value lines of an os-release file
func ParseOSRelease(r io.Reader) (*DistroInfo, error) {
	info := &DistroInfo{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "NAME":
			info.Name = value
		case "ID":
			info.ID = value
		case "ID_LIKE":
			info.IDLike = strings.Fields(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse os-release: %w", err)
	}
	if info.Name == "" && info.ID == "" {
		return nil, fmt.Errorf("os-release has neither NAME nor ID")
	}
	return info, nil
}

// prerequisites lists the install commands for each family, in order
var prerequisites = map[DistroFamily][]string{
	FamilyDebian: {
		"sudo apt install xz-utils",
		"sudo apt install libglm-dev cmake libxcb-dri3-0 libxcb-present0 libpciaccess0 libpng-dev libxcb-keysyms1-dev libxcb-dri3-dev libx11-dev g++ gcc libwayland-dev libxrandr-dev libxcb-randr0-dev libxcb-ewmh-dev git python-is-python3 bison libx11-xcb-dev liblz4-dev libzstd-dev ocaml-core ninja-build pkg-config libxml2-dev wayland-protocols python3-jsonschema clang-format qtbase5-dev qt6-base-dev",
		"sudo apt install libxcb-xinput0 libxcb-xinerama0 libxcb-cursor-dev",
	},
	FamilyFedora: {
		"sudo dnf install xz",
		"sudo dnf install @development-tools glm-devel cmake libpng-devel wayland-devel libpciaccess-devel libX11-devel libXpresent libxcb xcb-util libxcb-devel libXrandr-devel xcb-util-keysyms-devel xcb-util-wm-devel python3 git lz4-devel libzstd-devel python3-distutils-extra qt gcc-g++ wayland-protocols-devel ninja-build python3-jsonschema qt5-qtbase-devel qt6-qtbase-devel",
		"sudo dnf install xinput libXinerama xcb-util-cursor",
	},
	FamilyArch: {
		"sudo pacman -S xz",
		"sudo pacman -S base-devel glm cmake libpng wayland libpciaccess libx11 libxpresent libxcb xcb-util libxrandr xcb-util-keysyms xcb-util-wm python git lz4 zstd python-distlib qt5-base wayland-protocols ninja",
		"sudo pacman -S libxcb libxinerama xcb-util-cursor",
	},
}

// Prerequisites returns the package install commands for a distribution
func Prerequisites(d *DistroInfo) []string {
	return prerequisites[d.Family()]
}

// PrintSystemPrerequisites writes the prerequisite commands for d to out
func PrintSystemPrerequisites(out io.Writer, d *DistroInfo) {
	commands := Prerequisites(d)
	if len(commands) == 0 {
		fmt.Fprintf(out, "ℹ️  No prerequisite list for %s; install the Vulkan SDK build dependencies with your package manager.\n", d.DisplayName())
		return
	}
	fmt.Fprintln(out, "📦 Install the SDK system prerequisites with:")
	for _, cmd := range commands {
		fmt.Fprintf(out, "  %s\n", cmd)
	}
}
