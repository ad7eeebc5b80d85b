package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnodet/vksdk/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration vksdk runs with, after applying the global
configuration file and VKSDK_* environment overrides.

The global configuration lives in ~/.vksdk (or $VKSDK_CONFIG_DIR) and is read
from the first of config.json5, config.yml, config.yaml, config.toml and
config.json that exists.

Example config.json5:
  {
    install_dir: "/opt/vulkan",
    platform: "linux",
    download_timeout: "20m",
    url_replacements: {
      "sdk.lunarg.com": "mirror.mycompany.net",
    },
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig()
	},
}

func showConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir, err := config.GetGlobalConfigDir()
	if err != nil {
		return err
	}

	if cfg.Source != "" {
		printInfo("# Loaded from %s", cfg.Source)
	} else {
		printInfo("# No configuration file found in %s, using defaults", dir)
	}

	out, err := config.FormatAsYAML(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, out)
	return nil
}
