// Package supply reads the total supply of the old and new migration tokens
// on every chain of a network mode.
package supply

import (
	"context"
	"math/big"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	"github.com/mrz1836/tokenmigrate/internal/config"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// Supply holds both token supplies on one chain. A nil figure means the
// token is not deployed there or could not be read.
type Supply struct {
	Chain    chain.Chain
	Old      *big.Int
	New      *big.Int
	Decimals int32
}

// Of returns the supply of a token kind.
func (s Supply) Of(kind config.TokenKind) *big.Int {
	if kind == config.OldToken {
		return s.Old
	}
	return s.New
}

// State is the supplies snapshot for a network mode.
type State struct {
	Mode   chain.NetworkMode
	Chains map[uint64]Supply
}

// For returns the supply on a chain.
func (s State) For(chainID uint64) (Supply, bool) {
	sup, ok := s.Chains[chainID]
	return sup, ok
}

// All returns the summed supply of a token kind across chains. Chains
// without a figure are skipped.
func (s State) All(kind config.TokenKind) *big.Int {
	total := new(big.Int)
	for _, sup := range s.Chains {
		if v := sup.Of(kind); v != nil {
			total.Add(total, v)
		}
	}
	return total
}

// AddressResolver maps a chain and token kind to a contract address.
type AddressResolver interface {
	FetchAddressForChain(chainID uint64, kind config.TokenKind) (string, error)
}

// BackendProvider returns an RPC backend for a chain.
type BackendProvider interface {
	Backend(ctx context.Context, chainID uint64) (evm.Backend, error)
}

// Fetcher reads supplies through the chain RPC endpoints.
type Fetcher struct {
	table     *chain.Table
	addresses AddressResolver
	backends  BackendProvider
	decimals  int32
}

// NewFetcher creates a supplies fetcher.
func NewFetcher(table *chain.Table, addresses AddressResolver, backends BackendProvider, decimals int32) *Fetcher {
	return &Fetcher{
		table:     table,
		addresses: addresses,
		backends:  backends,
		decimals:  decimals,
	}
}

// Fetch reads both supplies on every chain of mode concurrently. Missing
// token addresses leave the figure nil. Any RPC failure fails the fetch.
// Addresses are resolved before any read starts, so a resolver error
// returns without reads in flight.
func (f *Fetcher) Fetch(ctx context.Context, mode chain.NetworkMode) (State, error) {
	type read struct {
		ch   chain.Chain
		kind config.TokenKind
		addr string
	}

	chains := f.table.ChainsFor(mode)
	state := State{Mode: mode, Chains: make(map[uint64]Supply, len(chains))}

	var reads []read
	for _, ch := range chains {
		state.Chains[ch.ID] = Supply{Chain: ch, Decimals: f.decimals}
		for _, kind := range []config.TokenKind{config.OldToken, config.NewToken} {
			addr, err := f.addresses.FetchAddressForChain(ch.ID, kind)
			if migrateerr.Is(err, migrateerr.ErrTokenNotConfigured) {
				continue
			}
			if err != nil {
				return State{}, err
			}
			reads = append(reads, read{ch: ch, kind: kind, addr: addr})
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range reads {
		g.Go(func() error {
			total, err := f.totalSupply(gctx, r.ch.ID, r.addr)
			if err != nil {
				return migrateerr.Wrap(err, "%s supply on %s", r.kind, r.ch.Name)
			}
			mu.Lock()
			defer mu.Unlock()
			sup := state.Chains[r.ch.ID]
			if r.kind == config.OldToken {
				sup.Old = total
			} else {
				sup.New = total
			}
			state.Chains[r.ch.ID] = sup
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return State{}, err
	}
	return state, nil
}

func (f *Fetcher) totalSupply(ctx context.Context, chainID uint64, address string) (*big.Int, error) {
	backend, err := f.backends.Backend(ctx, chainID)
	if err != nil {
		return nil, err
	}
	token, err := evm.NewToken(address, chainID, backend)
	if err != nil {
		return nil, err
	}
	return token.TotalSupply(ctx)
}
