package explorer

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// DefaultPageSize is the number of transfers requested per chain.
const DefaultPageSize = 100

// RawTx is a token transfer as reported by the explorer. Numeric fields are
// kept as the decimal strings the API returns.
type RawTx struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TimeStamp       string `json:"timeStamp"`
	BlockNumber     string `json:"blockNumber"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	ContractAddress string `json:"contractAddress"`
}

// Unix returns the transfer timestamp in seconds, or 0 if it is malformed.
func (tx RawTx) Unix() int64 {
	ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// TokenTransfers lists the most recent transfers of an ERC-20 contract on a
// chain, newest first. An empty history is an empty slice, not an error.
func (c *Client) TokenTransfers(ctx context.Context, ch chain.Chain, contract string, limit int) ([]RawTx, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("contractaddress", contract)
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")

	result, err := c.get(ctx, ch.ExplorerAPI, ch.ID, params)
	if err != nil {
		return nil, migrateerr.Wrap(err, "listing transfers on %s", ch.Name)
	}

	var txs []RawTx
	if err := json.Unmarshal(result, &txs); err != nil {
		return nil, migrateerr.WithCause(migrateerr.WithDetails(ErrBadResponse, map[string]string{
			"chain": ch.Key,
		}), err)
	}
	if txs == nil {
		txs = []RawTx{}
	}
	return txs, nil
}
