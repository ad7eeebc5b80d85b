package sdk

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gnodet/vksdk/pkg/util"
)

const regexPrefix = "regex:"

// URLReplacer rewrites metadata and download URLs towards mirrors.
// Patterns are plain substrings, or regular expressions when prefixed with "regex:".
type URLReplacer struct {
	replacements map[string]string
	patterns     []string
}

// NewURLReplacer creates a replacer; a nil map disables rewriting
func NewURLReplacer(replacements map[string]string) *URLReplacer {
	patterns := make([]string, 0, len(replacements))
	for pattern := range replacements {
		patterns = append(patterns, pattern)
	}

	// Plain patterns first, then alphabetical
	sort.Slice(patterns, func(i, j int) bool {
		iIsRegex := strings.HasPrefix(patterns[i], regexPrefix)
		jIsRegex := strings.HasPrefix(patterns[j], regexPrefix)
		if iIsRegex != jIsRegex {
			return !iIsRegex
		}
		return patterns[i] < patterns[j]
	})

	return &URLReplacer{replacements: replacements, patterns: patterns}
}

// Apply returns the URL rewritten by the first matching pattern
func (r *URLReplacer) Apply(originalURL string) string {
	if r == nil {
		return originalURL
	}
	for _, pattern := range r.patterns {
		newURL := applyReplacement(originalURL, pattern, r.replacements[pattern])
		if newURL != originalURL {
			util.LogVerbose("URL replacement applied: %s -> %s (pattern: %s)", originalURL, newURL, pattern)
			return newURL
		}
	}
	return originalURL
}

// Validate reports every regex pattern that does not compile
func (r *URLReplacer) Validate() []error {
	var errs []error
	for _, pattern := range r.patterns {
		if expr, ok := strings.CutPrefix(pattern, regexPrefix); ok {
			if _, err := regexp.Compile(expr); err != nil {
				errs = append(errs, fmt.Errorf("invalid regex pattern '%s': %w", expr, err))
			}
		}
	}
	return errs
}

func applyReplacement(url, pattern, replacement string) string {
	expr, ok := strings.CutPrefix(pattern, regexPrefix)
	if !ok {
		return strings.ReplaceAll(url, pattern, replacement)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		util.LogVerbose("Warning: invalid regex pattern '%s': %v", expr, err)
		return url
	}
	return re.ReplaceAllString(url, replacement)
}
