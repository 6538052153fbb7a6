// Package wallet provides the key-backed wallet context: the connected
// account, the chain it is on and its native balance.
package wallet

import (
	"context"
	"math/big"
	"strconv"
	"sync"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// BackendProvider returns an RPC backend for a chain.
type BackendProvider interface {
	Backend(ctx context.Context, chainID uint64) (evm.Backend, error)
}

// Wallet is the wallet context shared by the commands. A wallet without a
// signer is disconnected: it still has a chain but no address.
type Wallet struct {
	mu         sync.RWMutex
	table      *chain.Table
	backends   BackendProvider
	signer     *evm.KeySigner
	chain      chain.Chain
	balance    *big.Int
	balanceErr error

	onChainModal   func()
	onConnectModal func()
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithSigner connects the wallet with a signing key.
func WithSigner(s *evm.KeySigner) Option {
	return func(w *Wallet) { w.signer = s }
}

// WithChainModal sets the callback run when a chain switch is requested.
func WithChainModal(fn func()) Option {
	return func(w *Wallet) { w.onChainModal = fn }
}

// WithConnectModal sets the callback run when a connection is requested.
func WithConnectModal(fn func()) Option {
	return func(w *Wallet) { w.onConnectModal = fn }
}

// New creates a wallet starting on start.
func New(table *chain.Table, backends BackendProvider, start chain.Chain, opts ...Option) *Wallet {
	w := &Wallet{
		table:    table,
		backends: backends,
		chain:    start,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Connect attaches a signing key.
func (w *Wallet) Connect(s *evm.KeySigner) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signer = s
	w.balance, w.balanceErr = nil, nil
}

// IsConnected reports whether a signing key is attached.
func (w *Wallet) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.signer != nil
}

// Address returns the checksummed account address, or "" when disconnected.
func (w *Wallet) Address() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.signer == nil {
		return ""
	}
	return w.signer.Address().Hex()
}

// Chain returns the chain the wallet is on.
func (w *Wallet) Chain() chain.Chain {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chain
}

// Chains returns the chains the wallet can switch between: every chain of
// the current chain's network mode.
func (w *Wallet) Chains() []chain.Chain {
	return w.table.ChainsFor(chain.ModeFor(w.Chain().ID))
}

// SwitchChain moves the wallet to another known chain. The cached balance
// is dropped.
func (w *Wallet) SwitchChain(chainID uint64) (chain.Chain, error) {
	ch, ok := w.table.Lookup(chainID)
	if !ok {
		return chain.Chain{}, migrateerr.WithDetails(migrateerr.ErrUnknownChain, map[string]string{
			"chain_id": strconv.FormatUint(chainID, 10),
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.chain = ch
	w.balance, w.balanceErr = nil, nil
	return ch, nil
}

// RefreshBalance reads the native balance on the current chain and caches
// the result, error included.
func (w *Wallet) RefreshBalance(ctx context.Context) (*big.Int, error) {
	w.mu.RLock()
	signer, ch := w.signer, w.chain
	w.mu.RUnlock()

	if signer == nil {
		return nil, migrateerr.ErrWalletNotConnected
	}

	bal, err := w.fetchBalance(ctx, ch.ID, signer)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chain.ID == ch.ID {
		w.balance, w.balanceErr = bal, err
	}
	return bal, err
}

func (w *Wallet) fetchBalance(ctx context.Context, chainID uint64, signer *evm.KeySigner) (*big.Int, error) {
	backend, err := w.backends.Backend(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return evm.NativeBalance(ctx, backend, signer.Address())
}

// Balance returns the last fetched native balance, or nil.
func (w *Wallet) Balance() *big.Int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.balance
}

// BalanceError returns the error of the last balance fetch, if any.
func (w *Wallet) BalanceError() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.balanceErr
}

// OpenChainModal asks the front end to let the user pick a chain.
func (w *Wallet) OpenChainModal() {
	if w.onChainModal != nil {
		w.onChainModal()
	}
}

// OpenConnectModal asks the front end to let the user connect a wallet.
func (w *Wallet) OpenConnectModal() {
	if w.onConnectModal != nil {
		w.onConnectModal()
	}
}

// Signer returns the signing key, or ErrWalletNotConnected.
func (w *Wallet) Signer() (evm.Signer, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.signer == nil {
		return nil, migrateerr.ErrWalletNotConnected
	}
	return w.signer, nil
}
