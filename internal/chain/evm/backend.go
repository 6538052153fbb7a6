// Package evm talks to EVM chains through go-ethereum: token contract views,
// burn submission and receipt polling.
package evm

import (
	"context"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/metrics"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// Backend is the JSON-RPC surface the package needs. *ethclient.Client
// satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Backend = (*ethclient.Client)(nil)

// Dialer opens one RPC connection per chain and reuses it for the life of
// the process.
type Dialer struct {
	table   *chain.Table
	mu      sync.Mutex
	clients map[uint64]*ethclient.Client
}

// NewDialer creates a dialer resolving RPC endpoints from table.
func NewDialer(table *chain.Table) *Dialer {
	return &Dialer{
		table:   table,
		clients: make(map[uint64]*ethclient.Client),
	}
}

// Backend returns the connection for a chain, dialing it on first use.
func (d *Dialer) Backend(ctx context.Context, chainID uint64) (Backend, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.clients[chainID]; ok {
		return c, nil
	}

	ch, ok := d.table.Lookup(chainID)
	if !ok {
		return nil, migrateerr.WithDetails(migrateerr.ErrUnknownChain, map[string]string{
			"chain_id": strconv.FormatUint(chainID, 10),
		})
	}

	start := time.Now()
	c, err := ethclient.DialContext(ctx, ch.RPCURL)
	metrics.Global.RecordCall(metrics.SourceRPC, time.Since(start), err)
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.WithDetails(migrateerr.ErrNetworkError, map[string]string{
			"chain": ch.Key,
		}), err)
	}

	d.clients[chainID] = c
	return c, nil
}

// Close closes every open connection.
func (d *Dialer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, c := range d.clients {
		c.Close()
		delete(d.clients, id)
	}
}

// NativeBalance returns the native coin balance of account on a chain.
func NativeBalance(ctx context.Context, b Backend, account common.Address) (*big.Int, error) {
	start := time.Now()
	bal, err := b.BalanceAt(ctx, account, nil)
	metrics.Global.RecordCall(metrics.SourceRPC, time.Since(start), err)
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.ErrNetworkError, err)
	}
	return bal, nil
}
