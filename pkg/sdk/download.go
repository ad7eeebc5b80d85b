package sdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gnodet/vksdk/pkg/util"
)

// InstallPlan identifies what to install and where
type InstallPlan struct {
	InstallDir string
	Platform   Platform
	Version    string
}

// ArtifactPath is where the artifact is staged: <install_dir>/vulkan_sdk<ext>
func (p InstallPlan) ArtifactPath() string {
	return filepath.Join(p.InstallDir, ArtifactBaseName+p.Platform.Extension())
}

// SdkDir is the directory archives are extracted into: <install_dir>/vulkan
func (p InstallPlan) SdkDir() string {
	return filepath.Join(p.InstallDir, SdkDirName)
}

// Fetcher downloads the artifact for a plan and returns its local path
type Fetcher interface {
	Download(ctx context.Context, plan InstallPlan) (string, error)
}

// HTTPFetcher streams artifacts from the LunarG download service
type HTTPFetcher struct {
	BaseURL  string
	Timeout  time.Duration
	Client   *http.Client
	Replacer *URLReplacer
	// Progress creates a reporter per download; nil disables reporting
	Progress func(label string) ProgressReporter
}

// NewHTTPFetcher creates a fetcher with the default HTTP client
func NewHTTPFetcher(baseURL string, timeout time.Duration, replacer *URLReplacer) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL:  baseURL,
		Timeout:  timeout,
		Client:   newHTTPClient(),
		Replacer: replacer,
	}
}

// newHTTPClient returns a client with granular transport timeouts; the
// overall deadline comes from the request context
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSHandshakeTimeout:   30 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// Download fetches the artifact into the install directory, overwriting
// any previous artifact of the same name
func (f *HTTPFetcher) Download(ctx context.Context, plan InstallPlan) (string, error) {
	if plan.Platform == nil {
		return "", UnsupportedPlatformError("")
	}

	if err := os.MkdirAll(plan.InstallDir, 0755); err != nil {
		return "", FilesystemError("create install directory", plan.Version, err)
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	url := f.Replacer.Apply(plan.Platform.DownloadURL(f.BaseURL, plan.Version))
	dest := plan.ArtifactPath()
	util.LogVerbose("Downloading %s to %s", url, dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", NetworkError("download", plan.Version, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)

	client := f.Client
	if client == nil {
		client = newHTTPClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", NetworkError("download", plan.Version, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NetworkError("download", plan.Version, fmt.Errorf("HTTP %d: %s (%s)", resp.StatusCode, resp.Status, url))
	}

	// Stage next to the destination so the final rename stays on one filesystem
	tempFile, err := os.CreateTemp(plan.InstallDir, ".vulkan_sdk-*.tmp")
	if err != nil {
		return "", FilesystemError("create temporary file", plan.Version, err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	var reporter ProgressReporter = NoopProgress{}
	if f.Progress != nil {
		reporter = f.Progress(filepath.Base(dest))
	}
	reporter.Start(resp.ContentLength)

	buf := make([]byte, DownloadChunkSize)
	written, err := io.CopyBuffer(&progressWriter{w: tempFile, reporter: reporter}, resp.Body, buf)
	reporter.Finish()
	if err != nil {
		return "", NetworkError("download", plan.Version, fmt.Errorf("download interrupted after %d bytes: %w", written, err))
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return "", NetworkError("download", plan.Version,
			fmt.Errorf("incomplete download: got %d of %d bytes", written, resp.ContentLength))
	}

	if err := tempFile.Close(); err != nil {
		return "", FilesystemError("write artifact", plan.Version, err)
	}

	if err := validateFileFormat(tempFile.Name(), plan.Platform.Extension()); err != nil {
		return "", NetworkError("download", plan.Version, fmt.Errorf("file validation failed: %w", err))
	}

	if err := moveFileWithRetry(tempFile.Name(), dest); err != nil {
		return "", FilesystemError("move artifact", plan.Version, err)
	}

	util.LogVerbose("Downloaded %d bytes to %s", written, dest)
	return dest, nil
}

// validateFileFormat checks the artifact's magic bytes against its extension
func validateFileFormat(filePath, ext string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file for validation: %w", err)
	}
	defer file.Close()

	header := make([]byte, 512)
	n, err := file.Read(header)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	if err := detectErrorPage(header); err != nil {
		return err
	}

	switch ext {
	case ExtTarXz:
		return validateTarXz(header)
	case ExtZip:
		return validateZip(header)
	case ExtExe:
		return validateExe(header)
	}
	return nil
}

// detectErrorPage recognizes HTML or JSON bodies served with a 200 status
func detectErrorPage(header []byte) error {
	head := bytes.ToLower(header[:min(len(header), 100)])
	if bytes.Contains(head, []byte("<html")) || bytes.Contains(head, []byte("<!doctype")) {
		return fmt.Errorf("received HTML content instead of the SDK artifact (likely an error page)")
	}
	if bytes.HasPrefix(bytes.TrimSpace(header), []byte("{")) {
		return fmt.Errorf("received JSON content instead of the SDK artifact (likely an API error)")
	}
	return nil
}

// validateTarXz checks for the XZ magic bytes (fd 37 7a 58 5a 00)
func validateTarXz(header []byte) error {
	expected := []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	if len(header) < len(expected) {
		return fmt.Errorf("file too short for XZ format")
	}
	if !bytes.Equal(header[:len(expected)], expected) {
		return fmt.Errorf("invalid XZ header: got % x", header[:len(expected)])
	}
	return nil
}

// validateZip checks for the ZIP magic bytes (50 4b)
func validateZip(header []byte) error {
	if len(header) < 4 {
		return fmt.Errorf("file too short for ZIP format")
	}
	if header[0] != 0x50 || header[1] != 0x4b {
		return fmt.Errorf("invalid ZIP header: expected 50 4b, got %02x %02x", header[0], header[1])
	}
	return nil
}

// validateExe checks for the DOS header of a Windows executable
func validateExe(header []byte) error {
	if len(header) < 2 || header[0] != 'M' || header[1] != 'Z' {
		return fmt.Errorf("invalid executable header: expected MZ")
	}
	return nil
}

// moveFileWithRetry renames src to dst, falling back to copy and delete
func moveFileWithRetry(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyAndDelete(src, dst)
}

func copyAndDelete(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := dstFile.Sync(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to sync destination file: %w", err)
	}

	dstFile.Close()
	// The copy succeeded; a leftover source is only clutter
	os.Remove(src)
	return nil
}
