package cli

import (
	"github.com/mrz1836/tokenmigrate/internal/cache"
	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	"github.com/mrz1836/tokenmigrate/internal/chain/explorer"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/dashboard"
	"github.com/mrz1836/tokenmigrate/internal/output"
	"github.com/mrz1836/tokenmigrate/internal/price"
	"github.com/mrz1836/tokenmigrate/internal/supply"
	"github.com/mrz1836/tokenmigrate/internal/wallet"
)

// Compile-time interface checks.
var (
	_ dashboard.WalletContext   = (*wallet.Wallet)(nil)
	_ dashboard.TxScanner       = (*explorer.Scanner)(nil)
	_ dashboard.PriceSource     = (*price.Client)(nil)
	_ dashboard.PriceSource     = (*cache.CachedPrices)(nil)
	_ dashboard.SupplySource    = (*supply.Fetcher)(nil)
	_ dashboard.AddressResolver = (*config.Config)(nil)
	_ dashboard.BackendProvider = (*evm.Dialer)(nil)
	_ ConfigProvider            = (*config.Config)(nil)
	_ LogWriter                 = (*config.Logger)(nil)
	_ FormatProvider            = (*output.Formatter)(nil)
)

// ConfigProvider provides read access to configuration values.
// This interface enables mocking configuration in tests.
type ConfigProvider interface {
	// GetHome returns the tokenmigrate home directory path.
	GetHome() string

	// GetLoggingLevel returns the configured logging level.
	GetLoggingLevel() string

	// GetLoggingFile returns the configured log file path.
	GetLoggingFile() string

	// GetOutputFormat returns the default output format.
	GetOutputFormat() string

	// IsVerbose returns true if verbose output is enabled.
	IsVerbose() bool
}

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	// Close closes the logger and releases resources.
	Close() error
}

// FormatProvider provides output format information.
// This interface enables mocking output formatting in tests.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format
}
