package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// tokenABI covers the subset of the migration token interface the dashboard
// calls: the OFT burn entry point plus the ERC-20 views.
const tokenABI = `[
	{"type":"function","name":"burn","stateMutability":"nonpayable",
	 "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"totalSupply","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

//nolint:gochecknoglobals // Parsed once, read-only
var parsedTokenABI = mustParseABI(tokenABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("evm: invalid token ABI: " + err.Error())
	}
	return parsed
}
