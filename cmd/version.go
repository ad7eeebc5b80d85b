package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for vksdk including version number,
commit hash, build date, and runtime information.`,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion()
	},
}

func showVersion() {
	fmt.Fprintf(stdout, "vksdk version %s\n", version)

	if verbose {
		fmt.Fprintf(stdout, "Commit:      %s\n", commit)
		fmt.Fprintf(stdout, "Built:       %s\n", date)
		fmt.Fprintf(stdout, "Go version:  %s\n", runtime.Version())
		fmt.Fprintf(stdout, "OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}
}
