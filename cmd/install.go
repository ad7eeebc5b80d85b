package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gnodet/vksdk/pkg/sdk"
)

var installVersion string

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install [install_dir] [platform]",
	Short: "Download and install the SDK without prompting",
	Long: `Download the Vulkan SDK and install it under install_dir.

The latest version is installed unless --sdk-version is given. On linux the
SDK exports are appended to your shell profile.

Examples:
  vksdk install ./deps linux
  vksdk install ./deps linux --sdk-version 1.3.296.0`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstall(cmd.Context(), args, installVersion)
	},
}

func init() {
	addVersionFlag(installCmd.Flags(), &installVersion)
}

func runInstall(ctx context.Context, args []string, sdkVersion string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	installDir := argOr(args, 0, cfg.InstallDir)
	platformName, err := resolvePlatform(args, 1, cfg)
	if err != nil {
		return err
	}
	platform, err := sdk.ParsePlatform(platformName)
	if err != nil {
		return err
	}

	replacer := newURLReplacer(cfg)
	if sdkVersion == "" {
		printInfo("Checking latest version of Vulkan SDK...")
		sdkVersion, err = newOracle(cfg, replacer).GetLatestVersion(ctx, platformName)
		if err != nil {
			return err
		}
	}

	installer := newInstaller(cfg, replacer)
	if err := installer.Install(ctx, sdk.InstallPlan{InstallDir: installDir, Platform: platform, Version: sdkVersion}); err != nil {
		return err
	}
	printSuccess("Vulkan SDK %s installed in %s", sdkVersion, installDir)
	return nil
}
