package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mrz1836/tokenmigrate/internal/metrics"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

const (
	// fallbackBurnGas is used when the node cannot estimate the burn call.
	fallbackBurnGas uint64 = 120000

	// gasBufferPercent pads estimates to absorb state changes before inclusion.
	gasBufferPercent = 20

	// baseFeeMultiplier scales the latest base fee into the fee cap.
	baseFeeMultiplier = 2
)

var errUnexpectedOutput = errors.New("unexpected contract output")

// Token is a handle to a deployed migration token contract.
type Token struct {
	address common.Address
	chainID *big.Int
	backend Backend
}

// NewToken binds to the contract at address on chainID.
func NewToken(address string, chainID uint64, backend Backend) (*Token, error) {
	if !common.IsHexAddress(address) {
		return nil, migrateerr.WithDetails(migrateerr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}
	return &Token{
		address: common.HexToAddress(address),
		chainID: new(big.Int).SetUint64(chainID),
		backend: backend,
	}, nil
}

// Address returns the contract address.
func (t *Token) Address() common.Address {
	return t.address
}

// TotalSupply returns the token's total supply in base units.
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := t.call(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, errUnexpectedOutput
	}
	return v, nil
}

// BalanceOf returns the token balance of owner.
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := t.call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, errUnexpectedOutput
	}
	return v, nil
}

func (t *Token) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := parsedTokenABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	start := time.Now()
	raw, err := t.backend.CallContract(ctx, ethereum.CallMsg{To: &t.address, Data: data}, nil)
	metrics.Global.RecordCall(metrics.SourceRPC, time.Since(start), err)
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.WithDetails(migrateerr.ErrNetworkError, map[string]string{
			"call": method,
		}), err)
	}

	out, err := parsedTokenABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, errUnexpectedOutput
	}
	return out, nil
}

// Burn destroys amount base units of the signer's tokens. It returns once
// the transaction is accepted by the node; use PendingTx.Wait for inclusion.
func (t *Token) Burn(ctx context.Context, signer Signer, amount *big.Int) (*PendingTx, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, migrateerr.ErrInvalidAmount
	}

	from := signer.Address()

	// A failed balance read does not block the burn; the node has the final word.
	if balance, err := t.BalanceOf(ctx, from); err == nil && balance.Cmp(amount) < 0 {
		return nil, migrateerr.WithDetails(migrateerr.ErrInsufficientFunds, map[string]string{
			"balance": balance.String(),
			"amount":  amount.String(),
		})
	}

	data, err := parsedTokenABI.Pack("burn", amount)
	if err != nil {
		return nil, fmt.Errorf("packing burn: %w", err)
	}
	nonce, err := t.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.ErrNetworkError, fmt.Errorf("getting nonce: %w", err))
	}

	fees, err := t.suggestFees(ctx)
	if err != nil {
		return nil, err
	}

	gasLimit := fallbackBurnGas
	estimate, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:      from,
		To:        &t.address,
		GasPrice:  fees.gasPrice,
		GasFeeCap: fees.gasFeeCap,
		GasTipCap: fees.gasTipCap,
		Data:      data,
	})
	if err == nil && estimate > 0 {
		gasLimit = estimate + estimate*gasBufferPercent/100
	}

	tx := fees.newTx(t.chainID, nonce, t.address, gasLimit, data)

	signed, err := signer.SignTx(tx, t.chainID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = t.backend.SendTransaction(ctx, signed)
	metrics.Global.RecordCall(metrics.SourceRPC, time.Since(start), err)
	if err != nil {
		return nil, classifySendError(err)
	}
	metrics.Global.RecordBurnSubmitted()

	return newPendingTx(signed.Hash(), t.backend), nil
}

// feeQuote holds either a legacy gas price or an EIP-1559 fee cap and tip.
type feeQuote struct {
	gasPrice  *big.Int
	gasFeeCap *big.Int
	gasTipCap *big.Int
}

// suggestFees quotes EIP-1559 fees when the latest header carries a base
// fee and a legacy gas price otherwise.
func (t *Token) suggestFees(ctx context.Context) (feeQuote, error) {
	head, err := t.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return feeQuote{}, migrateerr.WithCause(migrateerr.ErrNetworkError, fmt.Errorf("getting latest header: %w", err))
	}

	if head.BaseFee == nil {
		gasPrice, err := t.backend.SuggestGasPrice(ctx)
		if err != nil {
			return feeQuote{}, migrateerr.WithCause(migrateerr.ErrNetworkError, fmt.Errorf("getting gas price: %w", err))
		}
		return feeQuote{gasPrice: gasPrice}, nil
	}

	tip, err := t.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return feeQuote{}, migrateerr.WithCause(migrateerr.ErrNetworkError, fmt.Errorf("getting gas tip: %w", err))
	}
	feeCap := new(big.Int).Mul(head.BaseFee, big.NewInt(baseFeeMultiplier))
	feeCap.Add(feeCap, tip)
	return feeQuote{gasFeeCap: feeCap, gasTipCap: tip}, nil
}

func (q feeQuote) newTx(chainID *big.Int, nonce uint64, to common.Address, gas uint64, data []byte) *types.Transaction {
	if q.gasPrice != nil {
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &to,
			Value:    big.NewInt(0),
			Gas:      gas,
			GasPrice: q.gasPrice,
			Data:     data,
		})
	}
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		To:        &to,
		Value:     big.NewInt(0),
		Gas:       gas,
		GasFeeCap: q.gasFeeCap,
		GasTipCap: q.gasTipCap,
		Data:      data,
	})
}

func classifySendError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
		return migrateerr.WithCause(migrateerr.ErrInsufficientFunds, err)
	}
	return migrateerr.WithCause(migrateerr.ErrTxRejected, err)
}
