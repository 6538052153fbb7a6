package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/chain/explorer"
)

var errResultMismatch = errors.New("scanner result count does not match chain count")

// BurnTransaction is a burn transfer tagged with the chain it happened on.
type BurnTransaction struct {
	explorer.RawTx

	Chain      chain.Chain `json:"chain"`
	IsBurnType bool        `json:"isBurnType"`
}

// TxScanner fetches raw transfers for every chain of a network mode.
// The i-th result of FetchAll belongs to the i-th chain of Chains.
type TxScanner interface {
	Chains(mode chain.NetworkMode) []chain.Chain
	FetchAll(ctx context.Context, mode chain.NetworkMode) ([][]explorer.RawTx, error)
}

// Aggregate fetches the transfers of every chain in mode, tags each with its
// chain, keeps only burns and sorts them newest first. Any chain failure
// fails the whole aggregate.
func Aggregate(ctx context.Context, scanner TxScanner, mode chain.NetworkMode) ([]BurnTransaction, error) {
	chains := scanner.Chains(mode)
	results, err := scanner.FetchAll(ctx, mode)
	if err != nil {
		return nil, err
	}
	if len(results) != len(chains) {
		return nil, fmt.Errorf("%w: %d results, %d chains", errResultMismatch, len(results), len(chains))
	}

	var tagged []BurnTransaction
	for i, txs := range results {
		for _, tx := range txs {
			tagged = append(tagged, BurnTransaction{
				RawTx:      tx,
				Chain:      chains[i],
				IsBurnType: explorer.IsBurnTransfer(tx),
			})
		}
	}

	burns := OnlyBurns(tagged)
	SortNewestFirst(burns)
	return burns, nil
}

// OnlyBurns returns the burn-type transactions of txs in their original
// order.
func OnlyBurns(txs []BurnTransaction) []BurnTransaction {
	out := make([]BurnTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsBurnType {
			out = append(out, tx)
		}
	}
	return out
}

// SortNewestFirst orders txs by timestamp, most recent first. Equal
// timestamps keep their relative order.
func SortNewestFirst(txs []BurnTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Unix() > txs[j].Unix()
	})
}
