package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnodet/vksdk/pkg/sdk"
)

var envApply bool

// envCmd represents the env command
var envCmd = &cobra.Command{
	Use:   "env [install_dir]",
	Short: "Print the shell exports for the installed SDK",
	Long: `Print the VULKAN_SDK, PATH, LD_LIBRARY_PATH and VK_ADD_LAYER_PATH exports
for the SDK installed under install_dir.

The output can be evaluated directly:
  eval "$(vksdk env ./deps)"

With --apply the block is appended to your shell profile instead, unless it
is already there.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnv(args, envApply)
	},
}

func init() {
	addApplyFlag(envCmd.Flags(), &envApply)
}

func runEnv(args []string, apply bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	installDir := argOr(args, 0, cfg.InstallDir)

	m := &sdk.Manager{Scanner: sdk.NewDirectoryScanner()}
	info, err := m.CheckInstalled(installDir)
	if err != nil {
		return err
	}
	sdkDir := filepath.Dir(info.Path)

	if !apply {
		block, err := sdk.ExportBlock(info.Version, sdkDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, block)
		return nil
	}

	configurator, err := sdk.NewProfileConfiguratorFromEnv()
	if err != nil {
		return err
	}
	update, err := configurator.AppendExports(info.Version, sdkDir)
	if err != nil {
		return err
	}
	if update.Written {
		printSuccess("✅ Added Vulkan SDK exports to %s", update.Path)
	} else {
		printInfo("✔️  Vulkan SDK export block already exists in %s", update.Path)
	}
	return nil
}
