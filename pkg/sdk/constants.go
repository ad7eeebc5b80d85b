package sdk

// Platform names accepted on the command line and used as metadata keys
const (
	PlatformWindows = "windows"
	PlatformLinux   = "linux"
	PlatformMac     = "mac"
)

// File Extensions
const (
	ExtExe   = ".exe"
	ExtZip   = ".zip"
	ExtTarXz = ".tar.xz"
)

// Archive Types
const (
	ArchiveTypeZip   = "zip"
	ArchiveTypeTarXz = "tar.xz"
	ArchiveTypeExe   = "exe"
)

// Layout of an installation
const (
	// ArtifactBaseName is the file name of every downloaded artifact, minus extension
	ArtifactBaseName = "vulkan_sdk"
	// SdkDirName is the directory created under the install root for archives
	SdkDirName = "vulkan"
	// ScanKeyword marks directories the scanner looks inside (case-insensitive)
	ScanKeyword = "vulkan"
	// HostArchDir is the architecture subdirectory of a linux SDK release
	HostArchDir = "x86_64"
)

// Download tuning
const (
	DownloadChunkSize = 8192
	UserAgent         = "vksdk/1.0 (https://github.com/gnodet/vksdk)"
	MaxRedirects      = 10
)

// Environment variables written to the shell profile
const (
	EnvVulkanSDK      = "VULKAN_SDK"
	EnvPath           = "PATH"
	EnvLDLibraryPath  = "LD_LIBRARY_PATH"
	EnvVKAddLayerPath = "VK_ADD_LAYER_PATH"
	EnvShell          = "SHELL"
)
