package dashboard

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
)

// PendingBurn is a broadcast burn awaiting confirmation.
type PendingBurn interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*types.Receipt, error)
}

// BurnContract is a token contract bound to one chain.
type BurnContract interface {
	Burn(ctx context.Context, signer evm.Signer, amount *big.Int) (PendingBurn, error)
}

// ContractBinder binds a token contract address on a chain.
type ContractBinder interface {
	Bind(ctx context.Context, chainID uint64, address string) (BurnContract, error)
}

// BackendProvider returns an RPC backend for a chain.
type BackendProvider interface {
	Backend(ctx context.Context, chainID uint64) (evm.Backend, error)
}

// EVMBinder binds contracts through go-ethereum backends.
type EVMBinder struct {
	Backends     BackendProvider
	PollInterval time.Duration
}

// Bind returns a token handle for address on chainID.
func (b EVMBinder) Bind(ctx context.Context, chainID uint64, address string) (BurnContract, error) {
	backend, err := b.Backends.Backend(ctx, chainID)
	if err != nil {
		return nil, err
	}
	token, err := evm.NewToken(address, chainID, backend)
	if err != nil {
		return nil, err
	}
	return evmContract{token: token, pollInterval: b.PollInterval}, nil
}

type evmContract struct {
	token        *evm.Token
	pollInterval time.Duration
}

func (c evmContract) Burn(ctx context.Context, signer evm.Signer, amount *big.Int) (PendingBurn, error) {
	pending, err := c.token.Burn(ctx, signer, amount)
	if err != nil {
		return nil, err
	}
	return pending.WithPollInterval(c.pollInterval), nil
}
