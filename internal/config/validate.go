package config

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// Validate checks the configuration for values the commands cannot use.
func (c *Config) Validate() error {
	invalid := func(field, value string) error {
		return migrateerr.WithDetails(migrateerr.ErrConfigInvalid, map[string]string{
			"field": field,
			"value": value,
		})
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "", "auto", "text", "json":
	default:
		return invalid("output.default_format", c.Output.DefaultFormat)
	}

	if c.Burn.Decimals < 0 || c.Burn.Decimals > 36 {
		return invalid("burn.decimals", strconv.Itoa(c.Burn.Decimals))
	}
	if c.Burn.TimeoutSeconds <= 0 {
		return invalid("burn.timeout_seconds", strconv.Itoa(c.Burn.TimeoutSeconds))
	}

	if c.Price.CacheSeconds < 0 {
		return invalid("price.cache_seconds", strconv.Itoa(c.Price.CacheSeconds))
	}

	table := chain.DefaultTable()
	for key, n := range c.Networks {
		if _, ok := table.Parse(key); !ok {
			return migrateerr.WithDetails(migrateerr.ErrUnknownChain, map[string]string{"network": key})
		}
		if n.RPC != "" {
			if _, ok := SanitizeURL(n.RPC); !ok {
				return invalid("networks."+key+".rpc", n.RPC)
			}
		}
		if n.ExplorerAPI != "" {
			if _, ok := SanitizeURL(n.ExplorerAPI); !ok {
				return invalid("networks."+key+".explorer_api", n.ExplorerAPI)
			}
		}
		for field, addr := range map[string]string{"old_token": n.OldToken, "new_token": n.NewToken} {
			if addr != "" && !common.IsHexAddress(addr) {
				return invalid("networks."+key+"."+field, addr)
			}
		}
	}

	if c.Wallet.Chain != "" {
		if _, ok := table.Parse(c.Wallet.Chain); !ok {
			return migrateerr.WithDetails(migrateerr.ErrUnknownChain, map[string]string{"chain": c.Wallet.Chain})
		}
	}

	if c.Telemetry.Endpoint != "" {
		if _, ok := SanitizeURL(c.Telemetry.Endpoint); !ok {
			return invalid("telemetry.endpoint", c.Telemetry.Endpoint)
		}
	}

	return nil
}
