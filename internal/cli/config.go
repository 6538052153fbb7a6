package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/output"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

const notConfigured = "(not configured)"

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify tokenmigrate configuration settings.`,
	Example: `  tokenmigrate config show
  tokenmigrate config set networks.sepolia.new_token 0x...`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.tokenmigrate/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified. Token addresses are left empty and must be set
per deployment.`,
	Example: `  tokenmigrate config init
  tokenmigrate config init --force`,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: the config file over the defaults,
with environment variables and flags applied. API keys are masked.`,
	Example: `  tokenmigrate config show
  tokenmigrate config show -o json`,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree. Networks are
addressed by chain key.`,
	Example: `  tokenmigrate config get wallet.chain
  tokenmigrate config get networks.avalanche.new_token
  tokenmigrate config get burn.timeout_seconds`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree. The updated
configuration is validated before the file is written.`,
	Example: `  tokenmigrate config set wallet.chain sepolia
  tokenmigrate config set networks.ethereum.rpc https://mainnet.infura.io/v3/YOUR_KEY
  tokenmigrate config set price.coin_id my-token`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.GroupID = "config"
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return migrateerr.WithSuggestion(
			migrateerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - networks.<chain>.old_token / new_token: Token contract addresses")
	outln(w, "  - explorer.api_key: Your Etherscan API key")
	outln(w, "  - price.coin_id: CoinGecko coin ID of the token")
	outln(w, "  - wallet.keystore: Keystore file used to sign burns")
	outln(w, "  - wallet.age_key: age-encrypted private key file (alternative to keystore)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		return writeJSON(w, newConfigView(cfg))
	}
	return displayConfigText(w, cfg)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	path := args[0]

	value, err := getConfigValue(cfg, path)
	if err != nil {
		return migrateerr.WithSuggestion(err, fmt.Sprintf("configuration path '%s' not found", path))
	}

	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, value := args[0], args[1]

	if _, err := getConfigValue(cfg, path); err != nil {
		return migrateerr.WithSuggestion(err, fmt.Sprintf("configuration path '%s' not found", path))
	}

	// Edit the file contents, not the effective config, so environment
	// overrides are not persisted.
	configPath := config.Path(cfg.Home)
	currentCfg, err := config.Load(configPath)
	if err != nil {
		if !migrateerr.Is(err, migrateerr.ErrConfigNotFound) {
			return err
		}
		currentCfg = config.Defaults()
		currentCfg.Home = cfg.Home
	}

	if err := setConfigValue(currentCfg, path, value); err != nil {
		return err
	}
	if err := currentCfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", path, value)
	return nil
}

func unknownKey(details map[string]string) error {
	return migrateerr.WithDetails(migrateerr.ErrNotFound, details)
}

func invalidValue(path, value, valid string) error {
	return migrateerr.WithDetails(migrateerr.ErrConfigInvalid, map[string]string{
		"field": path,
		"value": value,
		"valid": valid,
	})
}

// getConfigValue retrieves a value from the config using dot notation.
func getConfigValue(c *config.Config, path string) (string, error) {
	parts := strings.Split(path, ".")

	switch len(parts) {
	case 1:
		if parts[0] == "home" {
			return c.Home, nil
		}
		return "", unknownKey(map[string]string{"key": parts[0]})
	case 2:
		return getSectionValue(c, parts[0], parts[1])
	case 3:
		if parts[0] == "networks" {
			return getNetworkValue(c, parts[1], parts[2])
		}
		return "", unknownKey(map[string]string{"section": parts[0]})
	default:
		return "", unknownKey(map[string]string{"path": path})
	}
}

//nolint:gocyclo // Flat lookup over every settable field
func getSectionValue(c *config.Config, section, key string) (string, error) {
	switch section + "." + key {
	case "wallet.chain":
		return c.Wallet.Chain, nil
	case "wallet.keystore":
		return c.Wallet.Keystore, nil
	case "wallet.age_key":
		return c.Wallet.AgeKey, nil
	case "wallet.account_index":
		return strconv.FormatUint(uint64(c.Wallet.AccountIndex), 10), nil
	case "explorer.api_key":
		return c.Explorer.APIKey, nil
	case "explorer.rate_limit":
		return strconv.FormatFloat(c.Explorer.RateLimit, 'f', -1, 64), nil
	case "explorer.page_size":
		return strconv.Itoa(c.Explorer.PageSize), nil
	case "price.coin_id":
		return c.Price.CoinID, nil
	case "price.base_url":
		return c.Price.BaseURL, nil
	case "price.api_key":
		return c.Price.APIKey, nil
	case "price.cache_seconds":
		return strconv.Itoa(c.Price.CacheSeconds), nil
	case "burn.decimals":
		return strconv.Itoa(c.Burn.Decimals), nil
	case "burn.timeout_seconds":
		return strconv.Itoa(c.Burn.TimeoutSeconds), nil
	case "burn.poll_interval_seconds":
		return strconv.Itoa(c.Burn.PollIntervalSeconds), nil
	case "output.default_format":
		return c.Output.DefaultFormat, nil
	case "output.color":
		return c.Output.Color, nil
	case "output.verbose":
		return strconv.FormatBool(c.Output.Verbose), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.file":
		return c.Logging.File, nil
	case "telemetry.endpoint":
		return c.Telemetry.Endpoint, nil
	case "telemetry.service_name":
		return c.Telemetry.ServiceName, nil
	case "telemetry.insecure":
		return strconv.FormatBool(c.Telemetry.Insecure), nil
	default:
		return "", unknownKey(map[string]string{"section": section, "key": key})
	}
}

func getNetworkValue(c *config.Config, network, key string) (string, error) {
	ch, ok := chain.DefaultTable().Parse(network)
	if !ok {
		return "", unknownKey(map[string]string{"network": network})
	}
	n := c.Networks[ch.Key]

	switch key {
	case "rpc":
		return n.RPC, nil
	case "explorer_api":
		return n.ExplorerAPI, nil
	case "old_token":
		return n.OldToken, nil
	case "new_token":
		return n.NewToken, nil
	default:
		return "", unknownKey(map[string]string{"section": "networks." + network, "key": key})
	}
}

// setConfigValue sets a value in the config using dot notation.
func setConfigValue(c *config.Config, path, value string) error {
	parts := strings.Split(path, ".")

	switch len(parts) {
	case 1:
		if parts[0] == "home" {
			c.Home = value
			return nil
		}
		return unknownKey(map[string]string{"key": parts[0]})
	case 2:
		return setSectionValue(c, parts[0]+"."+parts[1], value)
	case 3:
		if parts[0] == "networks" {
			return setNetworkValue(c, parts[1], parts[2], value)
		}
		return unknownKey(map[string]string{"section": parts[0]})
	default:
		return unknownKey(map[string]string{"path": path})
	}
}

//nolint:gocyclo,funlen // Flat assignment over every settable field
func setSectionValue(c *config.Config, path, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, invalidValue(path, value, "an integer")
		}
		return n, nil
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, invalidValue(path, value, "true or false")
		}
		return b, nil
	}

	var err error
	switch path {
	case "wallet.chain":
		c.Wallet.Chain = value
	case "wallet.keystore":
		c.Wallet.Keystore = value
	case "wallet.age_key":
		c.Wallet.AgeKey = value
	case "wallet.account_index":
		idx, perr := strconv.ParseUint(value, 10, 31)
		if perr != nil {
			return invalidValue(path, value, "a non-negative integer below 2^31")
		}
		c.Wallet.AccountIndex = uint32(idx)
	case "explorer.api_key":
		c.Explorer.APIKey = value
	case "explorer.rate_limit":
		rate, perr := strconv.ParseFloat(value, 64)
		if perr != nil || rate <= 0 {
			return invalidValue(path, value, "a positive number")
		}
		c.Explorer.RateLimit = rate
	case "explorer.page_size":
		c.Explorer.PageSize, err = atoi()
	case "price.coin_id":
		c.Price.CoinID = value
	case "price.base_url":
		c.Price.BaseURL = value
	case "price.api_key":
		c.Price.APIKey = value
	case "price.cache_seconds":
		c.Price.CacheSeconds, err = atoi()
	case "burn.decimals":
		c.Burn.Decimals, err = atoi()
	case "burn.timeout_seconds":
		c.Burn.TimeoutSeconds, err = atoi()
	case "burn.poll_interval_seconds":
		c.Burn.PollIntervalSeconds, err = atoi()
	case "output.default_format":
		if value != "text" && value != "json" && value != "auto" {
			return invalidValue(path, value, "text, json, or auto")
		}
		c.Output.DefaultFormat = value
	case "output.color":
		if value != "auto" && value != "always" && value != "never" {
			return invalidValue(path, value, "auto, always, or never")
		}
		c.Output.Color = value
	case "output.verbose":
		c.Output.Verbose, err = parseBool()
	case "logging.level":
		switch value {
		case "off", "error", "info", "debug":
			c.Logging.Level = value
		default:
			return invalidValue(path, value, "off, error, info, or debug")
		}
	case "logging.file":
		c.Logging.File = value
	case "telemetry.endpoint":
		c.Telemetry.Endpoint = value
	case "telemetry.service_name":
		c.Telemetry.ServiceName = value
	case "telemetry.insecure":
		c.Telemetry.Insecure, err = parseBool()
	default:
		section, key, _ := strings.Cut(path, ".")
		return unknownKey(map[string]string{"section": section, "key": key})
	}
	return err
}

func setNetworkValue(c *config.Config, network, key, value string) error {
	ch, ok := chain.DefaultTable().Parse(network)
	if !ok {
		return unknownKey(map[string]string{"network": network})
	}

	if c.Networks == nil {
		c.Networks = make(map[string]config.NetworkConfig)
	}
	n := c.Networks[ch.Key]
	switch key {
	case "rpc":
		n.RPC = value
	case "explorer_api":
		n.ExplorerAPI = value
	case "old_token":
		n.OldToken = value
	case "new_token":
		n.NewToken = value
	default:
		return unknownKey(map[string]string{"section": "networks." + network, "key": key})
	}
	c.Networks[ch.Key] = n
	return nil
}

// mask hides all but the first four characters of a secret.
func mask(secret string) string {
	switch {
	case secret == "":
		return notConfigured
	case len(secret) >= 4:
		return secret[:4] + "..."
	default:
		return "***..."
	}
}

func orNotConfigured(s string) string {
	if s == "" {
		return notConfigured
	}
	return s
}

// configView is the JSON shape of the effective configuration.
type configView struct {
	Version int    `json:"version"`
	Home    string `json:"home"`
	Wallet  struct {
		Chain    string `json:"chain"`
		Keystore     string `json:"keystore,omitempty"`
		AgeKey       string `json:"age_key,omitempty"`
		AccountIndex uint32 `json:"account_index"`
	} `json:"wallet"`
	Networks map[string]config.NetworkConfig `json:"networks"`
	Explorer struct {
		APIKey    string  `json:"api_key"`
		RateLimit float64 `json:"rate_limit"`
		PageSize  int     `json:"page_size"`
	} `json:"explorer"`
	Price struct {
		CoinID       string `json:"coin_id"`
		BaseURL      string `json:"base_url"`
		APIKey       string `json:"api_key"`
		CacheSeconds int    `json:"cache_seconds"`
	} `json:"price"`
	Burn struct {
		Decimals            int `json:"decimals"`
		TimeoutSeconds      int `json:"timeout_seconds"`
		PollIntervalSeconds int `json:"poll_interval_seconds"`
	} `json:"burn"`
	Output struct {
		DefaultFormat string `json:"default_format"`
		Color         string `json:"color"`
		Verbose       bool   `json:"verbose"`
	} `json:"output"`
	Logging struct {
		Level string `json:"level"`
		File  string `json:"file"`
	} `json:"logging"`
	Telemetry struct {
		Endpoint    string `json:"endpoint,omitempty"`
		ServiceName string `json:"service_name"`
		Insecure    bool   `json:"insecure"`
	} `json:"telemetry"`
}

func newConfigView(c *config.Config) configView {
	v := configView{
		Version:  c.Version,
		Home:     c.Home,
		Networks: c.Networks,
	}
	v.Wallet.Chain = c.Wallet.Chain
	v.Wallet.Keystore = c.Wallet.Keystore
	v.Wallet.AgeKey = c.Wallet.AgeKey
	v.Wallet.AccountIndex = c.Wallet.AccountIndex
	v.Explorer.APIKey = mask(c.Explorer.APIKey)
	v.Explorer.RateLimit = c.Explorer.RateLimit
	v.Explorer.PageSize = c.Explorer.PageSize
	v.Price.CoinID = c.Price.CoinID
	v.Price.BaseURL = c.Price.BaseURL
	v.Price.APIKey = mask(c.Price.APIKey)
	v.Price.CacheSeconds = c.Price.CacheSeconds
	v.Burn.Decimals = c.Burn.Decimals
	v.Burn.TimeoutSeconds = c.Burn.TimeoutSeconds
	v.Burn.PollIntervalSeconds = c.Burn.PollIntervalSeconds
	v.Output.DefaultFormat = c.Output.DefaultFormat
	v.Output.Color = c.Output.Color
	v.Output.Verbose = c.Output.Verbose
	v.Logging.Level = c.Logging.Level
	v.Logging.File = c.Logging.File
	v.Telemetry.Endpoint = c.Telemetry.Endpoint
	v.Telemetry.ServiceName = c.Telemetry.ServiceName
	v.Telemetry.Insecure = c.Telemetry.Insecure
	return v
}

// displayConfigText shows the config in text format.
func displayConfigText(w io.Writer, c *config.Config) error {
	outln(w, "Configuration:")
	outln(w)
	out(w, "  Home: %s\n", c.Home)
	outln(w)
	outln(w, "  Wallet:")
	out(w, "    chain: %s\n", c.Wallet.Chain)
	out(w, "    keystore: %s\n", orNotConfigured(c.Wallet.Keystore))
	out(w, "    age_key: %s\n", orNotConfigured(c.Wallet.AgeKey))
	out(w, "    account_index: %d\n", c.Wallet.AccountIndex)
	outln(w)
	outln(w, "  Explorer:")
	out(w, "    api_key: %s\n", mask(c.Explorer.APIKey))
	out(w, "    rate_limit: %g\n", c.Explorer.RateLimit)
	out(w, "    page_size: %d\n", c.Explorer.PageSize)
	outln(w)
	outln(w, "  Price:")
	out(w, "    coin_id: %s\n", orNotConfigured(c.Price.CoinID))
	out(w, "    base_url: %s\n", c.Price.BaseURL)
	out(w, "    api_key: %s\n", mask(c.Price.APIKey))
	out(w, "    cache_seconds: %d\n", c.Price.CacheSeconds)
	outln(w)
	outln(w, "  Burn:")
	out(w, "    decimals: %d\n", c.Burn.Decimals)
	out(w, "    timeout_seconds: %d\n", c.Burn.TimeoutSeconds)
	out(w, "    poll_interval_seconds: %d\n", c.Burn.PollIntervalSeconds)
	outln(w)
	outln(w, "  Output:")
	out(w, "    default_format: %s\n", c.Output.DefaultFormat)
	out(w, "    verbose: %t\n", c.Output.Verbose)
	out(w, "    color: %s\n", c.Output.Color)
	outln(w)
	outln(w, "  Logging:")
	out(w, "    level: %s\n", c.Logging.Level)
	out(w, "    file: %s\n", c.Logging.File)
	outln(w)
	outln(w, "  Telemetry:")
	out(w, "    endpoint: %s\n", orNotConfigured(c.Telemetry.Endpoint))
	out(w, "    service_name: %s\n", c.Telemetry.ServiceName)
	outln(w)
	outln(w, "  Networks:")

	keys := make([]string, 0, len(c.Networks))
	for k := range c.Networks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n := c.Networks[k]
		out(w, "    %s:\n", k)
		if n.RPC != "" {
			out(w, "      rpc: %s\n", n.RPC)
		}
		if n.ExplorerAPI != "" {
			out(w, "      explorer_api: %s\n", n.ExplorerAPI)
		}
		out(w, "      old_token: %s\n", orNotConfigured(n.OldToken))
		out(w, "      new_token: %s\n", orNotConfigured(n.NewToken))
	}

	return nil
}
