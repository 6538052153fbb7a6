package config

import "github.com/mrz1836/tokenmigrate/internal/chain"

// Defaults returns the default configuration. Token addresses are left
// empty and must be filled in per deployment.
func Defaults() *Config {
	networks := make(map[string]NetworkConfig)
	for _, c := range chain.DefaultTable().All() {
		networks[c.Key] = NetworkConfig{}
	}

	return &Config{
		Version: 1,
		Home:    "~/.tokenmigrate",
		Wallet: WalletConfig{
			Chain: "ethereum",
		},
		Networks: networks,
		Explorer: ExplorerConfig{
			RateLimit: 5,
			PageSize:  100,
		},
		Price: PriceConfig{
			CoinID:       "",
			BaseURL:      "https://api.coingecko.com/api/v3",
			CacheSeconds: 60,
		},
		Burn: BurnConfig{
			Decimals:            int(chain.TokenDecimals),
			TimeoutSeconds:      300,
			PollIntervalSeconds: 2,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.tokenmigrate/tokenmigrate.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "tokenmigrate",
		},
	}
}
