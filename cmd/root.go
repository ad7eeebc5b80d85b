package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gnodet/vksdk/pkg/sdk"
	"github.com/gnodet/vksdk/pkg/util"
)

// Exit codes returned by the binary
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitNotInstalled = 2
)

var (
	// Version information set from main
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	// Global flags
	verbose bool
	quiet   bool

	// Standard streams, swapped by tests
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vksdk",
	Short: "Vulkan SDK lifecycle manager",
	Long: `vksdk finds, installs and updates the LunarG Vulkan SDK.

It looks up the latest published SDK version, detects the version installed
under a directory, downloads and unpacks the SDK for windows, linux or mac,
and on linux adds the SDK exports to your shell profile.

Examples:
  vksdk checklatest linux      # Print the latest SDK version for linux
  vksdk check ./deps           # Print the SDK version installed under ./deps
  vksdk validate ./deps linux  # Install or update the SDK under ./deps
  vksdk env ./deps             # Print the shell exports for the installed SDK`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			util.SetVerbose(true)
		}
	},

	// Show help if no command is provided
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command and prints any error. This is called by main.main().
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("%v", err)
	}
	return err
}

// ExitCode maps an error returned by Execute onto the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, sdk.ErrNotInstalled):
		return ExitNotInstalled
	default:
		return ExitFailure
	}
}

// SetVersionInfo sets the version information from main
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (errors only)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkLatestCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(configCmd)
}

// Helper functions for output
func printVerbose(format string, args ...interface{}) {
	util.LogVerbose(format, args...)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintln(stdout, successStyle.Render(fmt.Sprintf(format, args...)))
	}
}

func printWarn(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintln(stdout, warnStyle.Render(fmt.Sprintf(format, args...)))
	}
}

func printError(format string, args ...interface{}) {
	fmt.Fprintln(stderr, errorStyle.Render("Error: "+fmt.Sprintf(format, args...)))
}

// infoWriter is where library code writes user-facing progress
func infoWriter() io.Writer {
	if quiet {
		return io.Discard
	}
	return stdout
}
