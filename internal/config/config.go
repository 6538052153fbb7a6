// Package config provides configuration management for tokenmigrate.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/fileutil"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version   int                      `yaml:"version"`
	Home      string                   `yaml:"home"`
	Wallet    WalletConfig             `yaml:"wallet"`
	Networks  map[string]NetworkConfig `yaml:"networks"`
	Explorer  ExplorerConfig           `yaml:"explorer"`
	Price     PriceConfig              `yaml:"price"`
	Burn      BurnConfig               `yaml:"burn"`
	Output    OutputConfig             `yaml:"output"`
	Logging   LoggingConfig            `yaml:"logging"`
	Telemetry TelemetryConfig          `yaml:"telemetry"`
}

// WalletConfig defines how the signing wallet is loaded.
type WalletConfig struct {
	// Chain is the chain key or ID the wallet starts on.
	Chain string `yaml:"chain"`
	// Keystore is a go-ethereum keystore file. Ignored when a raw key or
	// mnemonic is supplied through the environment.
	Keystore string `yaml:"keystore,omitempty"`
	// AgeKey is an age-encrypted file holding a hex private key. It takes
	// precedence over Keystore.
	AgeKey string `yaml:"age_key,omitempty"`
	// AccountIndex selects the derived address when signing with a mnemonic.
	AccountIndex uint32 `yaml:"account_index"`
}

// NetworkConfig overrides endpoints and holds token addresses for one chain.
// Networks are keyed by chain key (ethereum, sepolia, ...).
type NetworkConfig struct {
	RPC         string `json:"rpc,omitempty" yaml:"rpc,omitempty"`
	ExplorerAPI string `json:"explorer_api,omitempty" yaml:"explorer_api,omitempty"`
	OldToken    string `json:"old_token" yaml:"old_token"`
	NewToken    string `json:"new_token" yaml:"new_token"`
}

// ExplorerConfig defines block explorer settings.
type ExplorerConfig struct {
	APIKey    string  `yaml:"api_key"`
	RateLimit float64 `yaml:"rate_limit"`
	PageSize  int     `yaml:"page_size"`
}

// PriceConfig defines market data settings.
type PriceConfig struct {
	CoinID  string `yaml:"coin_id"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	// CacheSeconds is how long a market snapshot is reused; 0 disables caching.
	CacheSeconds int `yaml:"cache_seconds"`
}

// BurnConfig defines burn submission settings.
type BurnConfig struct {
	Decimals            int `yaml:"decimals"`
	TimeoutSeconds      int `yaml:"timeout_seconds"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// TelemetryConfig defines OpenTelemetry export settings. Tracing is off
// when Endpoint is empty.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Load reads configuration from the specified file over the defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, migrateerr.WithDetails(migrateerr.ErrConfigNotFound, map[string]string{"path": path})
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, migrateerr.WithCause(migrateerr.WithDetails(migrateerr.ErrConfigInvalid, map[string]string{
			"path": path,
		}), err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the config file path inside a home directory.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default tokenmigrate home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tokenmigrate"
	}
	return filepath.Join(home, ".tokenmigrate")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// GetHome returns the tokenmigrate home directory with "~" expanded.
func (c *Config) GetHome() string {
	return ExpandHome(c.Home)
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// BurnTimeout returns how long a burn may wait for its receipt.
func (c *Config) BurnTimeout() time.Duration {
	return time.Duration(c.Burn.TimeoutSeconds) * time.Second
}

// BurnPollInterval returns the receipt polling interval.
func (c *Config) BurnPollInterval() time.Duration {
	return time.Duration(c.Burn.PollIntervalSeconds) * time.Second
}

// PriceCacheAge returns how long a cached market snapshot stays fresh.
func (c *Config) PriceCacheAge() time.Duration {
	return time.Duration(c.Price.CacheSeconds) * time.Second
}

// CachePath returns the market data cache file under home.
func (c *Config) CachePath() string {
	return filepath.Join(c.GetHome(), "cache", "market.json")
}

// TokenDecimals returns the decimals used to parse burn amounts.
func (c *Config) TokenDecimals() int32 {
	return int32(c.Burn.Decimals) //nolint:gosec // G115: bounded by Validate
}

// Table returns the chain table with configured endpoint overrides applied.
func (c *Config) Table() *chain.Table {
	t := chain.DefaultTable()
	for key, n := range c.Networks {
		t.Override(key, n.RPC, n.ExplorerAPI)
	}
	return t
}
