package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gnodet/vksdk/pkg/sdk"
)

var validateAssumeYes bool

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [install_dir] [platform]",
	Short: "Install the SDK if missing, or update it if outdated",
	Long: `Compare the SDK installed under install_dir with the latest published
version and act on the difference:

  - nothing installed: offer to install the latest version
  - an older or different version: offer to update it
  - the latest version: report that the SDK is up to date

Examples:
  vksdk validate                  # Current directory, host platform
  vksdk validate ./deps linux     # Explicit directory and platform
  vksdk validate ./deps --yes     # Do not prompt`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.Context(), args, validateAssumeYes)
	},
}

func init() {
	addAssumeYesFlag(validateCmd.Flags(), &validateAssumeYes)
}

func runValidate(ctx context.Context, args []string, assumeYes bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	installDir := argOr(args, 0, cfg.InstallDir)
	platform, err := resolvePlatform(args, 1, cfg)
	if err != nil {
		return err
	}
	if _, err := sdk.ParsePlatform(platform); err != nil {
		return err
	}

	m := newManager(cfg, assumeYes)

	printInfo("Validating Vulkan SDK...")
	result, err := m.Validate(ctx, installDir, platform)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case sdk.OutcomeInstalled:
		printSuccess("Vulkan SDK %s installed in %s", result.Latest, installDir)
	case sdk.OutcomeUpdated:
		printSuccess("Vulkan SDK updated from %s to %s", result.Installed.Version, result.Latest)
	case sdk.OutcomeDeclined:
		printWarn("No changes made.")
	}
	return nil
}
