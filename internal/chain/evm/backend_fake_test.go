package evm

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var errRPCDown = errors.New("rpc unavailable")

// fakeBackend is an in-memory Backend for tests.
type fakeBackend struct {
	mu sync.Mutex

	chainID     *big.Int
	balance     *big.Int
	callResults map[string][]byte
	callErr     error
	nonce       uint64
	gasPrice    *big.Int
	baseFee     *big.Int // nil reports a pre-London chain
	tipCap      *big.Int
	estimate    uint64
	estimateErr error
	sendErr     error

	sent []*types.Transaction

	// receipts is consumed in order; a nil entry means "not yet mined".
	receipts   []*types.Receipt
	receiptErr error
	polls      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		chainID:     big.NewInt(11155111),
		balance:     big.NewInt(0),
		callResults: make(map[string][]byte),
		gasPrice:    big.NewInt(2_000_000_000),
		estimate:    50000,
	}
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	method, err := parsedTokenABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	return f.callResults[method.Name], nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: f.baseFee}, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return f.tipCap, nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.estimate, f.estimateErr
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if len(f.receipts) == 0 {
		return nil, ethereum.NotFound
	}
	r := f.receipts[0]
	f.receipts = f.receipts[1:]
	if r == nil {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (f *fakeBackend) setOutput(method string, values ...any) {
	out, err := parsedTokenABI.Methods[method].Outputs.Pack(values...)
	if err != nil {
		panic(err)
	}
	f.callResults[method] = out
}
