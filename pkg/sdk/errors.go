package sdk

import (
	"errors"
	"fmt"
)

// ErrorKind classifies SDK lifecycle failures
type ErrorKind int

const (
	// KindNetwork covers metadata and artifact fetch failures
	KindNetwork ErrorKind = iota + 1
	// KindUnsupportedPlatform is returned for platforms outside windows/linux/mac
	KindUnsupportedPlatform
	// KindFilesystem covers directory creation, extraction and move failures
	KindFilesystem
	// KindNotInstalled signals that no installation was found
	KindNotInstalled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindUnsupportedPlatform:
		return "unsupported platform"
	case KindFilesystem:
		return "filesystem error"
	case KindNotInstalled:
		return "not installed"
	default:
		return "unknown error"
	}
}

// Sentinel errors for errors.Is checks
var (
	ErrNetwork             = errors.New("network error")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrFilesystem          = errors.New("filesystem error")
	ErrNotInstalled        = errors.New("Vulkan SDK is not installed")
)

// SdkError represents a standardized error for SDK operations
type SdkError struct {
	Kind    ErrorKind
	Op      string // Operation (e.g., "fetch latest version", "download", "extract")
	Version string // SDK version, if known
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *SdkError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("Vulkan SDK %s %s failed: %v", e.Version, e.Op, e.Err)
	}
	return fmt.Sprintf("Vulkan SDK %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping
func (e *SdkError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind
func (e *SdkError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrUnsupportedPlatform:
		return e.Kind == KindUnsupportedPlatform
	case ErrFilesystem:
		return e.Kind == KindFilesystem
	case ErrNotInstalled:
		return e.Kind == KindNotInstalled
	}
	return false
}

// NewSdkError creates a new SdkError
func NewSdkError(kind ErrorKind, op, version string, err error) *SdkError {
	return &SdkError{
		Kind:    kind,
		Op:      op,
		Version: version,
		Err:     err,
	}
}

// NetworkError creates a standardized network error
func NetworkError(op, version string, err error) *SdkError {
	return NewSdkError(KindNetwork, op, version, err)
}

// FilesystemError creates a standardized filesystem error
func FilesystemError(op, version string, err error) *SdkError {
	return NewSdkError(KindFilesystem, op, version, err)
}

// UnsupportedPlatformError creates a standardized unsupported platform error
func UnsupportedPlatformError(platform string) *SdkError {
	return NewSdkError(KindUnsupportedPlatform, "platform validation", "",
		fmt.Errorf("unsupported platform: %q (expected one of %v)", platform, PlatformNames()))
}

// NotInstalledError creates the error reported when no installation is found
func NotInstalledError(installRoot string) *SdkError {
	return NewSdkError(KindNotInstalled, "installation lookup", "",
		fmt.Errorf("no installation found under %s", installRoot))
}

// WrapError wraps an error with SDK context if it's not already an SdkError
func WrapError(kind ErrorKind, op, version string, err error) error {
	if err == nil {
		return nil
	}

	var sdkErr *SdkError
	if errors.As(err, &sdkErr) {
		return err
	}

	return NewSdkError(kind, op, version, err)
}

// KindOf extracts the ErrorKind from an error chain, zero if none
func KindOf(err error) ErrorKind {
	var sdkErr *SdkError
	if errors.As(err, &sdkErr) {
		return sdkErr.Kind
	}
	return 0
}
