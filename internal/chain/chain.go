// Package chain provides the network table and common utilities shared by
// the explorer, evm and supply packages.
package chain

import (
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// NetworkMode selects the set of chains the dashboard works against.
type NetworkMode int

// Network modes.
const (
	Mainnet NetworkMode = iota
	Testnet
)

// String returns the network mode name.
func (m NetworkMode) String() string {
	if m == Testnet {
		return "testnet"
	}
	return "mainnet"
}

// Chain describes a network the token is deployed on.
type Chain struct {
	ID           uint64 `json:"id" yaml:"id"`
	Key          string `json:"key" yaml:"key"`
	Name         string `json:"name" yaml:"name"`
	NativeSymbol string `json:"native_symbol" yaml:"native_symbol"`
	Testnet      bool   `json:"testnet" yaml:"testnet"`
	RPCURL       string `json:"rpc_url" yaml:"rpc_url"`
	ExplorerURL  string `json:"explorer_url" yaml:"explorer_url"`
	ExplorerAPI  string `json:"explorer_api" yaml:"explorer_api"`
}

// TxURL returns the block explorer link for a transaction hash.
func (c Chain) TxURL(hash string) string {
	if c.ExplorerURL == "" {
		return hash
	}
	return strings.TrimSuffix(c.ExplorerURL, "/") + "/tx/" + hash
}

// String returns the chain display name.
func (c Chain) String() string {
	return c.Name
}

// Chain IDs of the supported networks.
const (
	EthereumID      uint64 = 1
	AvalancheID     uint64 = 43114
	FantomID        uint64 = 250
	SepoliaID       uint64 = 11155111
	AvalancheFujiID uint64 = 43113
	FantomTestnetID uint64 = 4002
)

// DefaultExplorerAPI is the Etherscan v2 multichain API base URL.
const DefaultExplorerAPI = "https://api.etherscan.io/v2"

// networks is the single source of chain definitions, ordered per mode.
// The order is the order results are merged and displayed in.
//
//nolint:gochecknoglobals // Static network table
var networks = map[NetworkMode][]Chain{
	Mainnet: {
		{
			ID:           EthereumID,
			Key:          "ethereum",
			Name:         "Ethereum",
			NativeSymbol: "ETH",
			RPCURL:       "https://ethereum-rpc.publicnode.com",
			ExplorerURL:  "https://etherscan.io",
			ExplorerAPI:  DefaultExplorerAPI,
		},
		{
			ID:           AvalancheID,
			Key:          "avalanche",
			Name:         "Avalanche",
			NativeSymbol: "AVAX",
			RPCURL:       "https://avalanche-c-chain-rpc.publicnode.com",
			ExplorerURL:  "https://snowtrace.io",
			ExplorerAPI:  DefaultExplorerAPI,
		},
		{
			ID:           FantomID,
			Key:          "fantom",
			Name:         "Fantom",
			NativeSymbol: "FTM",
			RPCURL:       "https://fantom-rpc.publicnode.com",
			ExplorerURL:  "https://ftmscan.com",
			ExplorerAPI:  DefaultExplorerAPI,
		},
	},
	Testnet: {
		{
			ID:           SepoliaID,
			Key:          "sepolia",
			Name:         "Sepolia",
			NativeSymbol: "ETH",
			Testnet:      true,
			RPCURL:       "https://ethereum-sepolia-rpc.publicnode.com",
			ExplorerURL:  "https://sepolia.etherscan.io",
			ExplorerAPI:  DefaultExplorerAPI,
		},
		{
			ID:           AvalancheFujiID,
			Key:          "avalanche-fuji",
			Name:         "Avalanche Fuji",
			NativeSymbol: "AVAX",
			Testnet:      true,
			RPCURL:       "https://avalanche-fuji-c-chain-rpc.publicnode.com",
			ExplorerURL:  "https://testnet.snowtrace.io",
			ExplorerAPI:  DefaultExplorerAPI,
		},
		{
			ID:           FantomTestnetID,
			Key:          "fantom-testnet",
			Name:         "Fantom Testnet",
			NativeSymbol: "FTM",
			Testnet:      true,
			RPCURL:       "https://fantom-testnet-rpc.publicnode.com",
			ExplorerURL:  "https://testnet.ftmscan.com",
			ExplorerAPI:  DefaultExplorerAPI,
		},
	},
}

// Table holds the chains for both network modes. The zero value is empty;
// use DefaultTable for the built-in networks.
type Table struct {
	modes map[NetworkMode][]Chain
}

// DefaultTable returns a table populated with the built-in networks.
func DefaultTable() *Table {
	t := &Table{modes: make(map[NetworkMode][]Chain, len(networks))}
	for mode, chains := range networks {
		t.modes[mode] = append([]Chain(nil), chains...)
	}
	return t
}

// ChainsFor returns a copy of the chains for a network mode, in table order.
func (t *Table) ChainsFor(mode NetworkMode) []Chain {
	return append([]Chain(nil), t.modes[mode]...)
}

// All returns every chain, mainnet first.
func (t *Table) All() []Chain {
	all := t.ChainsFor(Mainnet)
	return append(all, t.ChainsFor(Testnet)...)
}

// Lookup finds a chain by numeric ID.
func (t *Table) Lookup(id uint64) (Chain, bool) {
	for _, c := range t.All() {
		if c.ID == id {
			return c, true
		}
	}
	return Chain{}, false
}

// Parse resolves a chain from its key, display name or numeric ID.
func (t *Table) Parse(s string) (Chain, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Chain{}, false
	}
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		return t.Lookup(id)
	}
	for _, c := range t.All() {
		if c.Key == s || strings.ToLower(c.Name) == s {
			return c, true
		}
	}
	return Chain{}, false
}

// maxSuggestDistance is the largest edit distance Suggest will accept.
const maxSuggestDistance = 3

// Suggest returns the chain key closest to s, or "" if nothing is close.
func (t *Table) Suggest(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range t.All() {
		if d := levenshtein.ComputeDistance(s, c.Key); d < bestDist {
			best, bestDist = c.Key, d
		}
	}
	return best
}

// Override replaces the RPC and explorer endpoints of a chain, matched by key.
// Empty values keep the current setting. Returns false if the key is unknown.
func (t *Table) Override(key, rpcURL, explorerAPI string) bool {
	for mode, chains := range t.modes {
		for i := range chains {
			if chains[i].Key != key {
				continue
			}
			if rpcURL != "" {
				t.modes[mode][i].RPCURL = rpcURL
			}
			if explorerAPI != "" {
				t.modes[mode][i].ExplorerAPI = explorerAPI
			}
			return true
		}
	}
	return false
}

// IsTestnet reports whether a chain ID belongs to the testnet set.
func IsTestnet(id uint64) bool {
	for _, c := range networks[Testnet] {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ModeFor returns the network mode a chain ID belongs to.
func ModeFor(id uint64) NetworkMode {
	if IsTestnet(id) {
		return Testnet
	}
	return Mainnet
}
