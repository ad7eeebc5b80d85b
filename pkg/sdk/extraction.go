package sdk

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/gnodet/vksdk/pkg/util"
)

// Extractor unpacks downloaded archives into a directory
type Extractor struct {
	// LookPath locates the system tar; nil forces native extraction
	LookPath func(file string) (string, error)
}

// NewExtractor returns an extractor preferring the system tar for .tar.xz
func NewExtractor() *Extractor {
	return &Extractor{LookPath: exec.LookPath}
}

// Extract unpacks src into dest, creating dest if needed
func (e *Extractor) Extract(src, dest string) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	switch archiveType := detectArchiveType(src); archiveType {
	case ArchiveTypeZip:
		return extractZipFile(src, dest)
	case ArchiveTypeTarXz:
		if e.LookPath != nil {
			if tarPath, err := e.LookPath("tar"); err == nil {
				return extractTarXzWithSystemTar(tarPath, src, dest)
			}
			util.LogVerbose("System tar not found, extracting %s natively", src)
		}
		return extractTarXzFile(src, dest)
	default:
		return fmt.Errorf("unsupported archive type: %s", archiveType)
	}
}

// detectArchiveType detects the archive type from file extension
func detectArchiveType(filename string) string {
	filename = strings.ToLower(filename)
	switch {
	case strings.HasSuffix(filename, ExtTarXz):
		return ArchiveTypeTarXz
	case strings.HasSuffix(filename, ExtZip):
		return ArchiveTypeZip
	case strings.HasSuffix(filename, ExtExe):
		return ArchiveTypeExe
	}
	return filepath.Ext(filename)
}

// extractTarXzWithSystemTar runs `tar -xJf src -C dest`
func extractTarXzWithSystemTar(tarPath, src, dest string) error {
	var stderr bytes.Buffer
	cmd := exec.Command(tarPath, "-xJf", src, "-C", dest)
	cmd.Stderr = &stderr

	util.LogVerbose("Running %s -xJf %s -C %s", tarPath, src, dest)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to extract tar.xz file: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// extractTarXzFile extracts a tar.xz archive without external tools
func extractTarXzFile(src, dest string) error {
	file, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	xzReader, err := xz.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}
	tarReader := tar.NewReader(xzReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		targetPath, err := sanitizeArchivePath(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := ensureResolvedWithin(dest, targetPath); err != nil {
				return err
			}
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", targetPath, err)
			}
		case tar.TypeReg:
			if err := ensureResolvedWithin(dest, filepath.Dir(targetPath)); err != nil {
				return err
			}
			if err := extractSingleFile(tarReader, targetPath, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to extract file %s: %w", targetPath, err)
			}
		case tar.TypeSymlink:
			if err := validateSymlinkTarget(dest, targetPath, header.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return err
			}
			if err := ensureResolvedWithin(dest, filepath.Dir(targetPath)); err != nil {
				return err
			}
			if err := createSymlinkSafely(header.Linkname, targetPath); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", targetPath, err)
			}
		default:
			util.LogVerbose("Skipping unsupported file type %d for %s", header.Typeflag, header.Name)
		}
	}
}

// extractZipFile extracts a zip archive to the destination directory
func extractZipFile(src, dest string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open ZIP archive: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		targetPath, err := sanitizeArchivePath(dest, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", targetPath, err)
			}
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s in archive: %w", file.Name, err)
		}
		err = extractSingleFile(rc, targetPath, file.FileInfo().Mode())
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to extract file %s: %w", targetPath, err)
		}
	}
	return nil
}

// sanitizeArchivePath rejects entries that would land outside dest
func sanitizeArchivePath(dest, name string) (string, error) {
	cleanDest := filepath.Clean(dest)
	targetPath := filepath.Join(cleanDest, name)
	if targetPath != cleanDest && !strings.HasPrefix(targetPath, cleanDest+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}
	return targetPath, nil
}

// validateSymlinkTarget rejects links that are absolute or point outside dest
func validateSymlinkTarget(dest, targetPath, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("invalid symlink in archive: %s -> %s", targetPath, linkname)
	}
	cleanDest := filepath.Clean(dest)
	resolved := filepath.Join(filepath.Dir(targetPath), linkname)
	if resolved != cleanDest && !strings.HasPrefix(resolved, cleanDest+string(os.PathSeparator)) {
		return fmt.Errorf("invalid symlink in archive: %s -> %s", targetPath, linkname)
	}
	return nil
}

// ensureResolvedWithin checks that dir, once symlinks already on disk are
// followed, is still inside dest. Chained links can pass the textual check.
func ensureResolvedWithin(dest, dir string) error {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	realDest, err := filepath.EvalSymlinks(absDest)
	if err != nil {
		return err
	}
	existing, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return nil
		}
		existing = parent
	}
	realDir, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", existing, err)
	}
	if realDir != realDest && !strings.HasPrefix(realDir, realDest+string(os.PathSeparator)) {
		return fmt.Errorf("invalid file path in archive: %s resolves outside %s", dir, dest)
	}
	return nil
}

func extractSingleFile(r io.Reader, targetPath string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return err
	}

	mode = mode.Perm()
	if mode&0200 == 0 {
		mode |= 0200
	}

	f, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, r)
	return err
}

// createSymlinkSafely creates a symlink, replacing whatever is at targetPath
func createSymlinkSafely(linkname, targetPath string) error {
	if _, err := os.Lstat(targetPath); err == nil {
		if existing, err := os.Readlink(targetPath); err == nil && existing == linkname {
			return nil
		}
		if err := os.RemoveAll(targetPath); err != nil {
			return fmt.Errorf("failed to remove existing file %s: %w", targetPath, err)
		}
	}
	return os.Symlink(linkname, targetPath)
}
