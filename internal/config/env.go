package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHome           = "TOKENMIGRATE_HOME"
	EnvChain          = "TOKENMIGRATE_CHAIN"
	EnvKeystore       = "TOKENMIGRATE_KEYSTORE"
	EnvAgeKey         = "TOKENMIGRATE_AGE_KEY"
	EnvPrivateKey     = "TOKENMIGRATE_PRIVATE_KEY"         // #nosec G101 -- env var name, not a credential
	EnvMnemonic       = "TOKENMIGRATE_MNEMONIC"            // #nosec G101 -- env var name, not a credential
	EnvPassphrase     = "TOKENMIGRATE_MNEMONIC_PASSPHRASE" // #nosec G101 -- env var name, not a credential
	EnvExplorerAPIKey = "TOKENMIGRATE_EXPLORER_API_KEY"    // #nosec G101 -- env var name, not a credential
	EnvPriceAPIKey    = "TOKENMIGRATE_COINGECKO_API_KEY"   // #nosec G101 -- env var name, not a credential
	EnvCoinID         = "TOKENMIGRATE_COIN_ID"
	EnvBurnTimeout    = "TOKENMIGRATE_BURN_TIMEOUT"
	EnvOutputFormat   = "TOKENMIGRATE_OUTPUT_FORMAT"
	EnvVerbose        = "TOKENMIGRATE_VERBOSE"
	EnvLogLevel       = "TOKENMIGRATE_LOG_LEVEL"
	EnvOTelEndpoint   = "TOKENMIGRATE_OTEL_ENDPOINT"
	EnvNoColor        = "NO_COLOR"
)

// LoadDotEnv loads a .env file from the working directory and then from
// home. Variables already set in the process environment win.
func LoadDotEnv(home string) error {
	for _, path := range []string{".env", filepath.Join(home, ".env")} {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvChain); v != "" {
		cfg.Wallet.Chain = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvKeystore); v != "" {
		cfg.Wallet.Keystore = v
	}

	if v := os.Getenv(EnvAgeKey); v != "" {
		cfg.Wallet.AgeKey = v
	}

	if v := os.Getenv(EnvExplorerAPIKey); v != "" {
		cfg.Explorer.APIKey = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvPriceAPIKey); v != "" {
		cfg.Price.APIKey = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvCoinID); v != "" {
		cfg.Price.CoinID = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvBurnTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Burn.TimeoutSeconds = secs
		}
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvOTelEndpoint); v != "" {
		cfg.Telemetry.Endpoint = strings.TrimSpace(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}

	applyNetworkEnvironment(cfg)
}

// applyNetworkEnvironment reads TOKENMIGRATE_<CHAIN>_{RPC,OLD_TOKEN,NEW_TOKEN},
// where <CHAIN> is the chain key upper-cased with dashes as underscores.
func applyNetworkEnvironment(cfg *Config) {
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]NetworkConfig)
	}
	for key, n := range cfg.Networks {
		prefix := "TOKENMIGRATE_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_")) + "_"
		if v, ok := SanitizeURL(os.Getenv(prefix + "RPC")); ok {
			n.RPC = v
		}
		if v := os.Getenv(prefix + "OLD_TOKEN"); v != "" {
			n.OldToken = strings.TrimSpace(v)
		}
		if v := os.Getenv(prefix + "NEW_TOKEN"); v != "" {
			n.NewToken = strings.TrimSpace(v)
		}
		cfg.Networks[key] = n
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL trims copy-paste whitespace from an endpoint URL and accepts
// it only if it is an absolute http(s) or ws(s) URL.
func SanitizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return u.String(), true
	}
	return "", false
}
