package config

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// TokenKind selects the pre- or post-migration token contract.
type TokenKind string

// Token kinds.
const (
	OldToken TokenKind = "oldToken"
	NewToken TokenKind = "newToken"
)

// Toggle returns the other token kind.
func (k TokenKind) Toggle() TokenKind {
	if k == OldToken {
		return NewToken
	}
	return OldToken
}

// FetchAddressForChain returns the configured contract address of a token
// kind on a chain. Unknown chains and empty addresses are reported as
// ErrTokenNotConfigured.
func (c *Config) FetchAddressForChain(chainID uint64, kind TokenKind) (string, error) {
	ch, ok := chain.DefaultTable().Lookup(chainID)
	if !ok {
		return "", migrateerr.WithDetails(migrateerr.ErrTokenNotConfigured, map[string]string{
			"chain_id": strconv.FormatUint(chainID, 10),
			"token":    string(kind),
		})
	}

	n := c.Networks[ch.Key]
	addr := n.NewToken
	if kind == OldToken {
		addr = n.OldToken
	}

	if addr == "" {
		field := "new_token"
		if kind == OldToken {
			field = "old_token"
		}
		return "", migrateerr.WithSuggestion(
			migrateerr.WithDetails(migrateerr.ErrTokenNotConfigured, map[string]string{
				"chain": ch.Key,
				"token": string(kind),
			}),
			"set networks."+ch.Key+"."+field+" in config.yaml",
		)
	}

	if !common.IsHexAddress(addr) {
		return "", migrateerr.WithDetails(migrateerr.ErrInvalidAddress, map[string]string{
			"chain":   ch.Key,
			"address": addr,
		})
	}
	return common.HexToAddress(addr).Hex(), nil
}

// ContractResolver returns a resolver for one token kind, suitable for the
// explorer scanner and the supplies fetcher.
func (c *Config) ContractResolver(kind TokenKind) func(chainID uint64) (string, error) {
	return func(chainID uint64) (string, error) {
		return c.FetchAddressForChain(chainID, kind)
	}
}
