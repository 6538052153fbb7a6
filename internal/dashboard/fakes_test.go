package dashboard_test

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	"github.com/mrz1836/tokenmigrate/internal/chain/explorer"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/dashboard"
	"github.com/mrz1836/tokenmigrate/internal/metrics"
	"github.com/mrz1836/tokenmigrate/internal/price"
	"github.com/mrz1836/tokenmigrate/internal/supply"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// Well-known development key (hardhat account #0).
const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const tokenAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

var (
	errUpstream = errors.New("upstream unavailable")
	errRejected = errors.New("user rejected")
)

type fakeWallet struct {
	mu              sync.Mutex
	table           *chain.Table
	ch              chain.Chain
	signer          evm.Signer
	connectRequests int
}

func (w *fakeWallet) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.signer != nil
}

func (w *fakeWallet) Address() string {
	if !w.IsConnected() {
		return ""
	}
	return w.signer.Address().Hex()
}

func (w *fakeWallet) Chain() chain.Chain {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ch
}

func (w *fakeWallet) Chains() []chain.Chain {
	return w.table.ChainsFor(chain.ModeFor(w.Chain().ID))
}

func (w *fakeWallet) SwitchChain(id uint64) (chain.Chain, error) {
	ch, ok := w.table.Lookup(id)
	if !ok {
		return chain.Chain{}, migrateerr.ErrUnknownChain
	}
	w.mu.Lock()
	w.ch = ch
	w.mu.Unlock()
	return ch, nil
}

func (w *fakeWallet) Balance() *big.Int   { return big.NewInt(1) }
func (w *fakeWallet) BalanceError() error { return nil }
func (w *fakeWallet) OpenChainModal()     {}

func (w *fakeWallet) OpenConnectModal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connectRequests++
}

func (w *fakeWallet) Signer() (evm.Signer, error) {
	if !w.IsConnected() {
		return nil, migrateerr.ErrWalletNotConnected
	}
	return w.signer, nil
}

// fakeScanner serves canned results per chain. When fetch is set it
// replaces the canned behavior.
type fakeScanner struct {
	table   *chain.Table
	byChain map[uint64][]explorer.RawTx
	err     error
	fetch   func(ctx context.Context, mode chain.NetworkMode) ([][]explorer.RawTx, error)
	calls   atomic.Int32
}

func (s *fakeScanner) Chains(mode chain.NetworkMode) []chain.Chain {
	return s.table.ChainsFor(mode)
}

func (s *fakeScanner) FetchAll(ctx context.Context, mode chain.NetworkMode) ([][]explorer.RawTx, error) {
	s.calls.Add(1)
	if s.fetch != nil {
		return s.fetch(ctx, mode)
	}
	if s.err != nil {
		return nil, s.err
	}
	chains := s.table.ChainsFor(mode)
	out := make([][]explorer.RawTx, len(chains))
	for i, ch := range chains {
		out[i] = s.byChain[ch.ID]
	}
	return out, nil
}

type fakePrices struct {
	data *price.CoinData
	err  error
}

func (p *fakePrices) FetchCoinData(context.Context) (*price.CoinData, error) {
	return p.data, p.err
}

type fakeSupplies struct {
	err   error
	calls atomic.Int32
}

func (s *fakeSupplies) Fetch(_ context.Context, mode chain.NetworkMode) (supply.State, error) {
	s.calls.Add(1)
	if s.err != nil {
		return supply.State{}, s.err
	}
	return supply.State{Mode: mode, Chains: map[uint64]supply.Supply{
		chain.SepoliaID: {New: big.NewInt(1000)},
	}}, nil
}

type fakeAddresses struct{}

func (fakeAddresses) FetchAddressForChain(chainID uint64, kind config.TokenKind) (string, error) {
	if chainID == chain.FantomTestnetID {
		return "", migrateerr.ErrTokenNotConfigured
	}
	return string(kind) + "@" + strconv.FormatUint(chainID, 10), nil
}

type fakePending struct {
	hash common.Hash
	wait func(ctx context.Context) error
}

func (p *fakePending) Hash() common.Hash { return p.hash }

func (p *fakePending) Wait(ctx context.Context) (*types.Receipt, error) {
	if p.wait != nil {
		if err := p.wait(ctx); err != nil {
			return nil, err
		}
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: p.hash}, nil
}

type fakeContract struct {
	binder *fakeBinder
}

func (c fakeContract) Burn(_ context.Context, _ evm.Signer, amount *big.Int) (dashboard.PendingBurn, error) {
	c.binder.mu.Lock()
	c.binder.burned = append(c.binder.burned, amount)
	c.binder.mu.Unlock()
	if c.binder.burnErr != nil {
		return nil, c.binder.burnErr
	}
	return &fakePending{hash: common.HexToHash("0xabc"), wait: c.binder.wait}, nil
}

type fakeBinder struct {
	mu      sync.Mutex
	bound   []string
	burned  []*big.Int
	burnErr error
	wait    func(ctx context.Context) error
}

func (b *fakeBinder) Bind(_ context.Context, chainID uint64, address string) (dashboard.BurnContract, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bound = append(b.bound, strconv.FormatUint(chainID, 10)+":"+address)
	return fakeContract{binder: b}, nil
}

func (b *fakeBinder) burnCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.burned)
}

type harness struct {
	wallet    *fakeWallet
	scanner   *fakeScanner
	prices    *fakePrices
	supplies  *fakeSupplies
	binder    *fakeBinder
	metrics   *metrics.Metrics
	addresses dashboard.AddressResolver
}

func newHarness(t *testing.T, start uint64) *harness {
	t.Helper()
	table := chain.DefaultTable()
	ch, ok := table.Lookup(start)
	require.True(t, ok)

	signer, err := evm.ParseKeySigner(devKey)
	require.NoError(t, err)

	return &harness{
		wallet:    &fakeWallet{table: table, ch: ch, signer: signer},
		scanner:   &fakeScanner{table: table},
		prices:    &fakePrices{},
		supplies:  &fakeSupplies{},
		binder:    &fakeBinder{},
		metrics:   &metrics.Metrics{},
		addresses: fakeAddresses{},
	}
}

func (h *harness) controller(opts ...dashboard.Option) *dashboard.Controller {
	deps := dashboard.Deps{
		Table:     chain.DefaultTable(),
		Wallet:    h.wallet,
		Scanner:   h.scanner,
		Prices:    h.prices,
		Supplies:  h.supplies,
		Addresses: h.addresses,
		Contracts: h.binder,
	}
	return dashboard.New(deps, append([]dashboard.Option{dashboard.WithMetrics(h.metrics)}, opts...)...)
}

func burnTx(hash string, ts int64) explorer.RawTx {
	return explorer.RawTx{
		Hash:      hash,
		From:      "0x1111111111111111111111111111111111111111",
		To:        explorer.ZeroAddress,
		Value:     "1000000000000000000",
		TimeStamp: strconv.FormatInt(ts, 10),
	}
}

func transferTx(hash string, ts int64) explorer.RawTx {
	tx := burnTx(hash, ts)
	tx.To = "0x2222222222222222222222222222222222222222"
	return tx
}

func hashes(txs []dashboard.BurnTransaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Hash
	}
	return out
}
