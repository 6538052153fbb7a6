package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tokenmigrate/internal/config"
)

// testPrivateKey is the first well-known Hardhat development account.
const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80" // #nosec G101 -- public test key

// withMockPrompts replaces prompt functions for testing and restores on cleanup.
func withMockPrompts(t *testing.T, password []byte, confirm bool) {
	t.Helper()
	origPW := promptPasswordFn
	origConfirm := promptConfirmFn
	t.Cleanup(func() {
		promptPasswordFn = origPW
		promptConfirmFn = origConfirm
	})
	promptPasswordFn = func(_ string) ([]byte, error) {
		cp := make([]byte, len(password))
		copy(cp, password)
		return cp, nil
	}
	promptConfirmFn = func(_ string) bool { return confirm }
}

// saveGlobals saves all package-level globals and returns a restore function.
func saveGlobals(t *testing.T) func() {
	t.Helper()
	origCfg := cfg
	origLogger := logger
	origFormatter := formatter
	origCmdCtx := cmdCtx
	origShutdown := shutdownTracing
	origHomeDir := homeDir
	origOutputFormat := outputFormat
	origVerbose := verbose
	return func() {
		cfg = origCfg
		logger = origLogger
		formatter = origFormatter
		cmdCtx = origCmdCtx
		shutdownTracing = origShutdown
		homeDir = origHomeDir
		outputFormat = origOutputFormat
		verbose = origVerbose
	}
}

// setupTestHome isolates a test from the user's environment and returns an
// empty tokenmigrate home directory.
func setupTestHome(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv(config.EnvHome, "")
	t.Setenv(config.EnvChain, "")
	t.Setenv(config.EnvKeystore, "")
	t.Setenv(config.EnvPrivateKey, "")
	t.Setenv(config.EnvMnemonic, "")
	t.Setenv(config.EnvAgeKey, "")
	t.Setenv(config.EnvCoinID, "")
	t.Setenv(config.EnvOutputFormat, "")
	t.Setenv(config.EnvLogLevel, "off")
	t.Setenv(config.EnvOTelEndpoint, "")
	return tmp
}

// writeTestConfig saves cfg as the config file of home.
func writeTestConfig(t *testing.T, home string, c *config.Config) {
	t.Helper()
	c.Home = home
	require.NoError(t, config.Save(c, config.Path(home)))
}

// resetFlags restores every flag in the command tree to its default.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(reset)
		cmd.PersistentFlags().VisitAll(reset)
	})
}

// executeCommand runs the root command with args and returns its stdout.
// NOT parallel-safe: the command tree and globals are package state.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	restore := saveGlobals(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
		restore()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
