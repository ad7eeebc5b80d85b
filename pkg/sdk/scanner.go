package sdk

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnodet/vksdk/pkg/util"
	"github.com/gnodet/vksdk/pkg/version"
)

// InstalledSdkInfo describes the installation found under an install root
type InstalledSdkInfo struct {
	Version    string
	Path       string   // absolute path of the version directory
	Candidates []string // every version directory found, newest first
}

// InstallationScanner finds the installed SDK version under a root
type InstallationScanner interface {
	GetCurrentVersion(installRoot string) (*InstalledSdkInfo, error)
}

// DirectoryScanner walks the install root looking for version directories
// inside any directory whose name contains "vulkan"
type DirectoryScanner struct{}

// NewDirectoryScanner creates a scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{}
}

// GetCurrentVersion returns nil when nothing is installed; a missing root
// is not an error. The root itself is matched on the keyword like any
// directory below it. The highest version wins; equal versions resolve to
// the last one in lexical traversal order.
func (s *DirectoryScanner) GetCurrentVersion(installRoot string) (*InstalledSdkInfo, error) {
	root, err := filepath.Abs(installRoot)
	if err != nil {
		return nil, FilesystemError("resolve install root", "", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			util.LogVerbose("Install root %s does not exist", root)
			return nil, nil
		}
		return nil, FilesystemError("scan install root", "", err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	result := &InstalledSdkInfo{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			util.LogVerbose("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if !strings.Contains(strings.ToLower(d.Name()), ScanKeyword) {
			return nil
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			util.LogVerbose("Cannot list %s: %v", path, err)
			return nil
		}
		for _, entry := range entries {
			if !entry.IsDir() || !version.IsVersionString(entry.Name()) {
				continue
			}
			candidatePath := filepath.Join(path, entry.Name())
			result.Candidates = append(result.Candidates, candidatePath)
			util.LogVerbose("Found SDK candidate %s", candidatePath)

			if result.Version == "" || version.CompareStrings(entry.Name(), result.Version) >= 0 {
				result.Version = entry.Name()
				result.Path = candidatePath
			}
		}
		return nil
	})
	if err != nil {
		return nil, FilesystemError("scan install root", "", err)
	}

	if result.Version == "" {
		return nil, nil
	}
	sort.SliceStable(result.Candidates, func(i, j int) bool {
		return version.CompareStrings(filepath.Base(result.Candidates[i]), filepath.Base(result.Candidates[j])) > 0
	})
	return result, nil
}
