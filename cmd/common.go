package cmd

import (
	"github.com/spf13/pflag"

	"github.com/gnodet/vksdk/pkg/config"
	"github.com/gnodet/vksdk/pkg/sdk"
)

// addAssumeYesFlag registers --yes/-y on fs
func addAssumeYesFlag(fs *pflag.FlagSet, target *bool) {
	fs.BoolVarP(target, "yes", "y", false, "answer yes to every prompt")
}

// addVersionFlag registers --sdk-version on fs
func addVersionFlag(fs *pflag.FlagSet, target *string) {
	fs.StringVar(target, "sdk-version", "", "SDK version to install (default: latest)")
}

// addApplyFlag registers --apply on fs
func addApplyFlag(fs *pflag.FlagSet, target *bool) {
	fs.BoolVar(target, "apply", false, "append the exports to your shell profile")
}

// loadConfig loads the global configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		printVerbose("Using configuration from %s", cfg.Source)
	}
	return cfg, nil
}

// argOr returns args[i] when present, fallback otherwise
func argOr(args []string, i int, fallback string) string {
	if len(args) > i && args[i] != "" {
		return args[i]
	}
	return fallback
}

// resolvePlatform picks the platform from the argument, then the
// configuration, then the host
func resolvePlatform(args []string, i int, cfg *config.Config) (string, error) {
	if p := argOr(args, i, cfg.Platform); p != "" {
		return p, nil
	}
	return sdk.HostPlatform()
}

// newURLReplacer builds the mirror rewriter from the configuration
func newURLReplacer(cfg *config.Config) *sdk.URLReplacer {
	replacer := sdk.NewURLReplacer(cfg.URLReplacements)
	for _, err := range replacer.Validate() {
		printWarn("⚠️  Ignoring URL replacement: %v", err)
	}
	return replacer
}

func newOracle(cfg *config.Config, replacer *sdk.URLReplacer) *sdk.HTTPVersionOracle {
	return sdk.NewHTTPVersionOracle(cfg.MetadataURL, cfg.GetMetadataTimeout(), replacer)
}

// newInstaller resolves the shell profile only once an install reaches the
// environment step
func newInstaller(cfg *config.Config, replacer *sdk.URLReplacer) *sdk.SdkInstaller {
	fetcher := sdk.NewHTTPFetcher(cfg.DownloadBaseURL, cfg.GetDownloadTimeout(), replacer)
	if !quiet {
		fetcher.Progress = func(label string) sdk.ProgressReporter {
			return sdk.NewTerminalProgress(stdout, label)
		}
	}

	return &sdk.SdkInstaller{
		Fetcher:      fetcher,
		Extractor:    sdk.NewExtractor(),
		Distro:       func() (*sdk.DistroInfo, error) { return sdk.DetectDistro() },
		Configurator: &sdk.EnvProfileConfigurator{},
		Out:          infoWriter(),
		Observer: func(state sdk.InstallState, err error) {
			if err != nil {
				printVerbose("Install %s: %v", state, err)
				return
			}
			printVerbose("Install %s", state)
		},
	}
}

// newManager wires the production components together
func newManager(cfg *config.Config, assumeYes bool) *sdk.Manager {
	replacer := newURLReplacer(cfg)
	installer := newInstaller(cfg, replacer)

	var prompter sdk.Prompter = sdk.NewReaderPrompter(stdin, stdout)
	if assumeYes || cfg.AssumeYes {
		prompter = sdk.AssumeYesPrompter{Out: infoWriter()}
	}

	return &sdk.Manager{
		Oracle:    newOracle(cfg, replacer),
		Scanner:   sdk.NewDirectoryScanner(),
		Installer: installer,
		Prompter:  prompter,
		Out:       infoWriter(),
	}
}
