// Package cli implements the tokenmigrate command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/output"
	"github.com/mrz1836/tokenmigrate/internal/telemetry"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg              *config.Config
	logger           *config.Logger
	formatter        *output.Formatter
	cmdCtx           *CommandContext
	shutdownTracing  telemetry.ShutdownFunc
	currentBuildInfo BuildInfo
)

// BuildInfo describes the running binary. It is set by main from linker flags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// SetBuildInfo records the build metadata shown by the version command.
func SetBuildInfo(info BuildInfo) {
	currentBuildInfo = info
	rootCmd.Version = formatVersion(info)
}

func formatVersion(info BuildInfo) string {
	v, c, d := info.Version, info.Commit, info.Date
	if v == "" {
		v = "dev"
	}
	if c == "" {
		c = "unknown"
	}
	if d == "" {
		d = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tokenmigrate",
	Short: "Token migration burn dashboard",
	Long: `tokenmigrate shows the burn ("migration") history of the app token across
Ethereum, Avalanche and Fantom, together with market data and per-chain
supplies, and submits burns of the new token from a local key.

The network mode (mainnet or testnet) follows the wallet chain: selecting
Sepolia, Avalanche Fuji or Fantom Testnet switches every view to testnets.`,
	Example: `  tokenmigrate dashboard --chain sepolia
  tokenmigrate txs --chain ethereum -o json
  tokenmigrate burn --amount 1.5 --chain avalanche`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	walkCommands(rootCmd, enrichLong)

	err := rootCmd.Execute()
	if err != nil {
		// Format and print error
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return migrateerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, formatter and tracing.
func initGlobals(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}
	home = config.ExpandHome(home)

	if err := config.LoadDotEnv(home); err != nil {
		return migrateerr.Wrap(err, "loading .env")
	}

	// Load config, falling back to defaults when none exists yet
	var err error
	cfg, err = config.Load(config.Path(home))
	switch {
	case migrateerr.Is(err, migrateerr.ErrConfigNotFound):
		cfg = config.Defaults()
	case err != nil:
		return err
	}
	cfg.Home = home

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize logger
	logLevel := config.ParseLogLevel(cfg.GetLoggingLevel())
	logger, err = config.NewLogger(logLevel, cfg.GetLoggingFile())
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.GetOutputFormat())
	w := cmd.OutOrStdout()
	detectedFormat := output.DetectFormat(w, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, w)

	shutdownTracing, err = telemetry.InitTracer(ctx, telemetry.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Error("telemetry disabled: %v", err)
	}

	cmdCtx = NewCommandContext(cfg, logger, formatter)
	logger.Debug("tokenmigrate started (home=%s format=%s verbose=%t)", cfg.GetHome(), formatter.Format(), cfg.IsVerbose())
	return nil
}

// cleanup releases resources.
func cleanup() {
	if cmdCtx != nil {
		cmdCtx.Close()
	}
	if shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		_ = shutdownTracing(ctx)
		cancel()
	}
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "dashboard", Title: "Dashboard:"},
		&cobra.Group{ID: "migrate", Title: "Migration:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID("config")

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "tokenmigrate data directory (default: ~/.tokenmigrate)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
