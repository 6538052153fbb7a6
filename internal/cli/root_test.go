package cli

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/output"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// errTestRandom is used for testing non-tokenmigrate error handling.
var errTestRandom = migrateerr.New("TEST_ERROR", "some random error")

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "all fields populated",
			info: BuildInfo{Version: "v1.2.3", Commit: "abc1234", Date: "2024-01-15"},
			want: "v1.2.3 (commit: abc1234, built: 2024-01-15)",
		},
		{
			name: "all fields empty",
			info: BuildInfo{},
			want: "dev (commit: unknown, built: unknown)",
		},
		{
			name: "only version empty",
			info: BuildInfo{Commit: "def5678", Date: "2024-02-20"},
			want: "dev (commit: def5678, built: 2024-02-20)",
		},
		{
			name: "only commit empty",
			info: BuildInfo{Version: "v2.0.0", Date: "2024-03-25"},
			want: "v2.0.0 (commit: unknown, built: 2024-03-25)",
		},
		{
			name: "only date empty",
			info: BuildInfo{Version: "v3.0.0", Commit: "ghi9012"},
			want: "v3.0.0 (commit: ghi9012, built: unknown)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatVersion(tc.info))
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error returns success", err: nil, want: migrateerr.ExitSuccess},
		{name: "general error", err: migrateerr.ErrGeneral, want: migrateerr.ExitGeneral},
		{name: "invalid amount", err: migrateerr.ErrInvalidAmount, want: migrateerr.ExitInput},
		{name: "unknown chain", err: migrateerr.ErrUnknownChain, want: migrateerr.ExitInput},
		{name: "wallet not connected", err: migrateerr.ErrWalletNotConnected, want: migrateerr.ExitAuth},
		{name: "keystore locked", err: migrateerr.ErrKeystoreLocked, want: migrateerr.ExitAuth},
		{name: "config not found", err: migrateerr.ErrConfigNotFound, want: migrateerr.ExitNotFound},
		{name: "token not configured", err: migrateerr.ErrTokenNotConfigured, want: migrateerr.ExitNotFound},
		{name: "reverted burn", err: migrateerr.ErrTxReverted, want: migrateerr.ExitPermission},
		{name: "custom error keeps general code", err: errTestRandom, want: migrateerr.ExitGeneral},
		{
			name: "wrapped error preserves exit code",
			err:  migrateerr.Wrap(migrateerr.ErrWalletNotConnected, "burning"),
			want: migrateerr.ExitAuth,
		},
		{
			name: "burn failure with cause",
			err:  migrateerr.WithCause(migrateerr.ErrBurnFailed, migrateerr.ErrTxReverted),
			want: migrateerr.ExitGeneral,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

// TestGlobalGetters tests Config(), Logger() and Formatter().
// NOT parallel: mutates package-level globals.
func TestGlobalGetters(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()

	testCfg := config.Defaults()
	testLogger := config.NullLogger()
	testFmt := output.NewFormatter(output.FormatText, nil)

	cfg = testCfg
	logger = testLogger
	formatter = testFmt

	assert.Equal(t, testCfg, Config())
	assert.Equal(t, testLogger, Logger())
	assert.Equal(t, testFmt, Formatter())
}

// TestCleanup_NilGlobals verifies cleanup doesn't panic before initialization.
func TestCleanup_NilGlobals(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()

	logger = nil
	cmdCtx = nil
	shutdownTracing = nil
	assert.NotPanics(t, func() { cleanup() })
}

// TestCleanup_WithLogger verifies cleanup doesn't panic with a valid logger.
func TestCleanup_WithLogger(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()

	logger = config.NullLogger()
	cmdCtx = NewCommandContext(config.Defaults(), logger, output.NewFormatter(output.FormatText, nil))
	shutdownTracing = func(context.Context) error { return nil }
	assert.NotPanics(t, func() { cleanup() })
}

// --- Tests for initGlobals ---

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(io.Discard)
	return cmd
}

func TestInitGlobals_DefaultConfig(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()
	tmpDir := setupTestHome(t)

	homeDir = tmpDir
	outputFormat = ""
	verbose = false

	require.NoError(t, initGlobals(newInitCmd()))

	require.NotNil(t, cfg, "cfg should be set")
	require.NotNil(t, logger, "logger should be set")
	require.NotNil(t, formatter, "formatter should be set")
	require.NotNil(t, cmdCtx, "cmdCtx should be set")
	require.NotNil(t, shutdownTracing, "tracing shutdown should be set")

	assert.Equal(t, tmpDir, cfg.Home)
	assert.Equal(t, "ethereum", cfg.Wallet.Chain)
}

func TestInitGlobals_VerboseFlag(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()
	tmpDir := setupTestHome(t)

	homeDir = tmpDir
	verbose = true

	require.NoError(t, initGlobals(newInitCmd()))
	defer func() { _ = logger.Close() }()

	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestInitGlobals_OutputFormatFlag(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()
	tmpDir := setupTestHome(t)

	homeDir = tmpDir
	outputFormat = "json"
	verbose = false

	require.NoError(t, initGlobals(newInitCmd()))

	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.True(t, formatter.IsJSON())
}

func TestInitGlobals_WithExistingConfig(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()
	tmpDir := setupTestHome(t)

	testCfg := config.Defaults()
	testCfg.Wallet.Chain = "sepolia"
	testCfg.Price.CoinID = "my-token"
	writeTestConfig(t, tmpDir, testCfg)

	homeDir = tmpDir
	outputFormat = ""
	verbose = false

	require.NoError(t, initGlobals(newInitCmd()))

	assert.Equal(t, "sepolia", cfg.Wallet.Chain)
	assert.Equal(t, "my-token", cfg.Price.CoinID)
	assert.Equal(t, tmpDir, cfg.Home)
}

func TestInitGlobals_EnvironmentOverridesFile(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()
	tmpDir := setupTestHome(t)

	testCfg := config.Defaults()
	testCfg.Wallet.Chain = "sepolia"
	writeTestConfig(t, tmpDir, testCfg)
	t.Setenv(config.EnvChain, "avalanche-fuji")

	homeDir = tmpDir
	require.NoError(t, initGlobals(newInitCmd()))

	assert.Equal(t, "avalanche-fuji", cfg.Wallet.Chain)
}

func TestInitGlobals_InvalidConfig(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()
	tmpDir := setupTestHome(t)

	require.NoError(t, os.WriteFile(config.Path(tmpDir), []byte("wallet: [not, a, map"), 0o600))

	homeDir = tmpDir
	err := initGlobals(newInitCmd())
	require.ErrorIs(t, err, migrateerr.ErrConfigInvalid)
}

func TestInitGlobals_UnknownWalletChain(t *testing.T) {
	restore := saveGlobals(t)
	defer restore()
	tmpDir := setupTestHome(t)

	testCfg := config.Defaults()
	testCfg.Wallet.Chain = "solana"
	writeTestConfig(t, tmpDir, testCfg)

	homeDir = tmpDir
	err := initGlobals(newInitCmd())
	require.ErrorIs(t, err, migrateerr.ErrUnknownChain)
}
