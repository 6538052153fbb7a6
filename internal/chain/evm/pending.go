package evm

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// DefaultPollInterval is how often Wait asks for the receipt.
const DefaultPollInterval = 2 * time.Second

// PendingTx is a broadcast transaction awaiting inclusion.
type PendingTx struct {
	hash     common.Hash
	backend  Backend
	interval time.Duration
}

func newPendingTx(hash common.Hash, backend Backend) *PendingTx {
	return &PendingTx{hash: hash, backend: backend, interval: DefaultPollInterval}
}

// Hash returns the transaction hash.
func (p *PendingTx) Hash() common.Hash {
	return p.hash
}

// WithPollInterval sets the receipt polling interval.
func (p *PendingTx) WithPollInterval(d time.Duration) *PendingTx {
	if d > 0 {
		p.interval = d
	}
	return p
}

// Wait polls for the receipt until the transaction is mined or ctx ends.
// A reverted transaction returns the receipt together with ErrTxReverted.
// Transient RPC failures are retried on the next tick; if ctx expires the
// last such failure is attached to ErrTxTimeout.
func (p *PendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastErr error
	for {
		receipt, err := p.backend.TransactionReceipt(ctx, p.hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, migrateerr.WithDetails(migrateerr.ErrTxReverted, map[string]string{
					"hash": p.hash.Hex(),
				})
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				cause := lastErr
				if cause == nil {
					cause = ctx.Err()
				}
				return nil, migrateerr.WithCause(migrateerr.WithDetails(migrateerr.ErrTxTimeout, map[string]string{
					"hash": p.hash.Hex(),
				}), cause)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
