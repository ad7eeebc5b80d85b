package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gnodet/vksdk/pkg/util"
)

// VersionOracle reports the latest published SDK version for a platform
type VersionOracle interface {
	GetLatestVersion(ctx context.Context, platform string) (string, error)
}

// HTTPVersionOracle queries the LunarG metadata endpoint, a JSON object
// keyed by platform name, e.g. {"linux": "1.3.296.0", ...}
type HTTPVersionOracle struct {
	URL      string
	Timeout  time.Duration
	Client   *http.Client
	Replacer *URLReplacer
}

// NewHTTPVersionOracle creates an oracle with the default HTTP client
func NewHTTPVersionOracle(url string, timeout time.Duration, replacer *URLReplacer) *HTTPVersionOracle {
	return &HTTPVersionOracle{
		URL:      url,
		Timeout:  timeout,
		Client:   newHTTPClient(),
		Replacer: replacer,
	}
}

// GetLatestVersion validates the platform, then performs a single GET.
// Every failure after validation is reported as a network error.
func (o *HTTPVersionOracle) GetLatestVersion(ctx context.Context, platform string) (string, error) {
	if _, err := ParsePlatform(platform); err != nil {
		return "", err
	}

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	url := o.Replacer.Apply(o.URL)
	util.LogVerbose("Fetching latest SDK metadata from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", NetworkError("fetch latest version", "", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	client := o.Client
	if client == nil {
		client = newHTTPClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", NetworkError("fetch latest version", "", fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NetworkError("fetch latest version", "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NetworkError("fetch latest version", "", fmt.Errorf("failed to read response: %w", err))
	}

	var metadata map[string]json.RawMessage
	if err := json.Unmarshal(body, &metadata); err != nil {
		return "", NetworkError("fetch latest version", "", fmt.Errorf("malformed metadata: %w", err))
	}

	raw, ok := metadata[platform]
	if !ok {
		return "", NetworkError("fetch latest version", "", fmt.Errorf("metadata has no entry for platform %q", platform))
	}

	var version string
	if err := json.Unmarshal(raw, &version); err != nil || version == "" {
		return "", NetworkError("fetch latest version", "", fmt.Errorf("metadata entry for %q is not a version string: %s", platform, raw))
	}

	util.LogVerbose("Latest %s SDK version: %s", platform, version)
	return version, nil
}
