package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnodet/vksdk/pkg/sdk"
)

// checkLatestCmd represents the checklatest command
var checkLatestCmd = &cobra.Command{
	Use:   "checklatest [platform]",
	Short: "Print the latest published SDK version",
	Long: `Query the LunarG metadata service for the latest Vulkan SDK version.

The platform is one of windows, linux or mac and defaults to the configured
platform, then to the host platform.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckLatest(cmd.Context(), args)
	},
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [install_dir]",
	Short: "Print the SDK version installed under a directory",
	Long: `Search install_dir for a Vulkan SDK installation and print its version.

Exits with status 2 when no installation is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args)
	},
}

func runCheckLatest(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	platform, err := resolvePlatform(args, 0, cfg)
	if err != nil {
		return err
	}
	// Fail before any output or network access
	if _, err := sdk.ParsePlatform(platform); err != nil {
		return err
	}

	m := &sdk.Manager{Oracle: newOracle(cfg, newURLReplacer(cfg))}

	printInfo("Checking latest version of Vulkan SDK...")
	latest, err := m.CheckLatest(ctx, platform)
	if err != nil {
		return err
	}

	if quiet {
		fmt.Fprintln(stdout, latest)
		return nil
	}
	printInfo("Latest version of Vulkan SDK is: %s", latest)
	return nil
}

func runCheck(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	installDir := argOr(args, 0, cfg.InstallDir)

	m := &sdk.Manager{Scanner: sdk.NewDirectoryScanner()}

	printInfo("Checking current version of Vulkan SDK...")
	info, err := m.CheckInstalled(installDir)
	if err != nil {
		if sdk.KindOf(err) == sdk.KindNotInstalled {
			printWarn("Vulkan SDK is not installed.")
		}
		return err
	}

	if quiet {
		fmt.Fprintln(stdout, info.Version)
		return nil
	}
	printInfo("Current version of Vulkan SDK is: %s at %s", info.Version, info.Path)
	if len(info.Candidates) > 1 {
		printVerbose("Other installations found: %v", info.Candidates)
	}
	return nil
}
