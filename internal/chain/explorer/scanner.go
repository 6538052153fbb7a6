package explorer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// TransferSource lists token transfers for one chain.
type TransferSource interface {
	TokenTransfers(ctx context.Context, ch chain.Chain, contract string, limit int) ([]RawTx, error)
}

// ContractResolver returns the token contract to scan on a chain.
type ContractResolver func(chainID uint64) (string, error)

// Scanner fans out transfer queries to every chain of a network mode.
type Scanner struct {
	source   TransferSource
	table    *chain.Table
	contract ContractResolver
	limit    int
}

// NewScanner creates a scanner over the chains of table.
func NewScanner(source TransferSource, table *chain.Table, contract ContractResolver, limit int) *Scanner {
	return &Scanner{
		source:   source,
		table:    table,
		contract: contract,
		limit:    limit,
	}
}

// Chains returns the chains FetchAll queries for a mode, in result order.
func (s *Scanner) Chains(mode chain.NetworkMode) []chain.Chain {
	return s.table.ChainsFor(mode)
}

// FetchAll queries every chain of the mode concurrently. The i-th result
// belongs to the i-th chain of Chains(mode). The call is all-or-nothing: the
// first failure cancels the remaining requests and is returned alone.
// A chain without a configured contract contributes an empty list.
func (s *Scanner) FetchAll(ctx context.Context, mode chain.NetworkMode) ([][]RawTx, error) {
	chains := s.Chains(mode)
	results := make([][]RawTx, len(chains))

	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range chains {
		contract, err := s.contract(ch.ID)
		if migrateerr.Is(err, migrateerr.ErrTokenNotConfigured) {
			results[i] = []RawTx{}
			continue
		}
		if err != nil {
			return nil, err
		}

		g.Go(func() error {
			txs, err := s.source.TokenTransfers(gctx, ch, contract, s.limit)
			if err != nil {
				return err
			}
			results[i] = txs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
