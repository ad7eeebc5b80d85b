package sdk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Markers delimiting the managed export block in a shell profile
const (
	ExportBlockBegin = "# >>> Vulkan SDK exports >>>"
	ExportBlockEnd   = "# <<< Vulkan SDK exports <<<"
)

// EnvironmentConfigurator persists the SDK exports for future shells
type EnvironmentConfigurator interface {
	AppendExports(version, installDir string) (*ProfileUpdate, error)
	ReplaceExports(version, installDir string) (*ProfileUpdate, error)
}

// ProfileUpdate reports what happened to the shell profile
type ProfileUpdate struct {
	Path    string
	Written bool
}

// ProfileConfigurator edits the profile file of a user's login shell.
// Home and Shell are injected so the configurator never reads the
// process environment on its own.
type ProfileConfigurator struct {
	Home  string
	Shell string
}

// NewProfileConfiguratorFromEnv builds a configurator for the current user
func NewProfileConfiguratorFromEnv() (*ProfileConfigurator, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, FilesystemError("locate home directory", "", err)
	}
	return &ProfileConfigurator{Home: home, Shell: os.Getenv(EnvShell)}, nil
}

// EnvProfileConfigurator resolves the current user's profile on first use,
// so runs that never write the profile do not need a home directory
type EnvProfileConfigurator struct {
	once sync.Once
	c    *ProfileConfigurator
	err  error
}

func (e *EnvProfileConfigurator) resolve() (*ProfileConfigurator, error) {
	e.once.Do(func() {
		e.c, e.err = NewProfileConfiguratorFromEnv()
	})
	return e.c, e.err
}

// AppendExports delegates to the resolved ProfileConfigurator
func (e *EnvProfileConfigurator) AppendExports(version, installDir string) (*ProfileUpdate, error) {
	c, err := e.resolve()
	if err != nil {
		return nil, err
	}
	return c.AppendExports(version, installDir)
}

// ReplaceExports delegates to the resolved ProfileConfigurator
func (e *EnvProfileConfigurator) ReplaceExports(version, installDir string) (*ProfileUpdate, error) {
	c, err := e.resolve()
	if err != nil {
		return nil, err
	}
	return c.ReplaceExports(version, installDir)
}

// ProfilePath picks .zshrc, .bashrc or .profile from the shell name
func (c *ProfileConfigurator) ProfilePath() string {
	switch {
	case strings.Contains(c.Shell, "zsh"):
		return filepath.Join(c.Home, ".zshrc")
	case strings.Contains(c.Shell, "bash"):
		return filepath.Join(c.Home, ".bashrc")
	default:
		return filepath.Join(c.Home, ".profile")
	}
}

// SdkHome returns the VULKAN_SDK value for version under installDir
func SdkHome(version, installDir string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(installDir, version, HostArchDir))
	if err != nil {
		return "", FilesystemError("resolve SDK path", version, err)
	}
	return abs, nil
}

// ExportBlock renders the managed block for version under installDir
func ExportBlock(version, installDir string) (string, error) {
	home, err := SdkHome(version, installDir)
	if err != nil {
		return "", err
	}
	lines := []string{
		ExportBlockBegin,
		fmt.Sprintf("export %s=%s", EnvVulkanSDK, home),
		fmt.Sprintf("export %s=$%s/bin:$%s", EnvPath, EnvVulkanSDK, EnvPath),
		fmt.Sprintf("export %s=$%s/lib${%s:+:$%s}", EnvLDLibraryPath, EnvVulkanSDK, EnvLDLibraryPath, EnvLDLibraryPath),
		fmt.Sprintf("export %s=$%s/share/vulkan/explicit_layer.d", EnvVKAddLayerPath, EnvVulkanSDK),
		ExportBlockEnd,
	}
	return strings.Join(lines, "\n"), nil
}

// AppendExports appends the export block unless its VULKAN_SDK line is
// already present in the profile
func (c *ProfileConfigurator) AppendExports(version, installDir string) (*ProfileUpdate, error) {
	block, err := ExportBlock(version, installDir)
	if err != nil {
		return nil, err
	}
	path := c.ProfilePath()

	content, err := readProfile(path, version)
	if err != nil {
		return nil, err
	}

	marker := strings.Split(block, "\n")[1]
	if strings.Contains(content, marker) {
		return &ProfileUpdate{Path: path}, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, FilesystemError("open shell profile", version, err)
	}
	defer f.Close()

	if _, err := f.WriteString("\n\n" + block + "\n"); err != nil {
		return nil, FilesystemError("write shell profile", version, err)
	}
	return &ProfileUpdate{Path: path, Written: true}, nil
}

// ReplaceExports removes every managed block and appends one for version
func (c *ProfileConfigurator) ReplaceExports(version, installDir string) (*ProfileUpdate, error) {
	block, err := ExportBlock(version, installDir)
	if err != nil {
		return nil, err
	}
	path := c.ProfilePath()

	content, err := readProfile(path, version)
	if err != nil {
		return nil, err
	}

	stripped := strings.TrimRight(RemoveExportBlocks(content), "\n")
	updated := stripped + "\n\n" + block + "\n"
	if stripped == "" {
		updated = block + "\n"
	}

	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return nil, FilesystemError("write shell profile", version, err)
	}
	return &ProfileUpdate{Path: path, Written: true}, nil
}

// RemoveExportBlocks drops every begin/end delimited block from content.
// An unterminated block is kept as-is.
func RemoveExportBlocks(content string) string {
	var out []string
	var pending []string
	inBlock := false

	for _, line := range strings.Split(content, "\n") {
		switch {
		case !inBlock && strings.TrimSpace(line) == ExportBlockBegin:
			inBlock = true
			pending = []string{line}
		case inBlock && strings.TrimSpace(line) == ExportBlockEnd:
			inBlock = false
			pending = nil
			out = dropBlankTail(out, blockSeparatorLines)
		case inBlock:
			pending = append(pending, line)
		default:
			out = append(out, line)
		}
	}
	out = append(out, pending...)
	return strings.Join(out, "\n")
}

// blockSeparatorLines is the number of blank lines AppendExports writes
// before a block
const blockSeparatorLines = 2

// dropBlankTail removes up to n trailing blank lines
func dropBlankTail(lines []string, n int) []string {
	for ; n > 0 && len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == ""; n-- {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func readProfile(path, version string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", FilesystemError("read shell profile", version, err)
	}
	return string(data), nil
}
