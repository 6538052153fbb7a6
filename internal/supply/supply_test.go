package supply_test

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/supply"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

var errRPC = errors.New("rpc down")

// supplyBackend answers totalSupply calls from a per-contract table.
type supplyBackend struct {
	evm.Backend
	supplies map[common.Address]*big.Int
	fail     bool
}

func (b *supplyBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if b.fail {
		return nil, errRPC
	}
	v := b.supplies[*msg.To]
	if v == nil {
		v = new(big.Int)
	}
	return common.LeftPadBytes(v.Bytes(), 32), nil
}

type backends map[uint64]*supplyBackend

func (m backends) Backend(_ context.Context, chainID uint64) (evm.Backend, error) {
	b, ok := m[chainID]
	if !ok {
		return nil, migrateerr.ErrUnknownChain
	}
	return b, nil
}

func addr(n int64) string {
	return common.BigToAddress(big.NewInt(n)).Hex()
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Networks["sepolia"] = config.NetworkConfig{OldToken: addr(1), NewToken: addr(2)}
	cfg.Networks["avalanche-fuji"] = config.NetworkConfig{NewToken: addr(3)}
	return cfg
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	bs := backends{
		chain.SepoliaID: {supplies: map[common.Address]*big.Int{
			common.HexToAddress(addr(1)): big.NewInt(1000),
			common.HexToAddress(addr(2)): big.NewInt(250),
		}},
		chain.AvalancheFujiID: {supplies: map[common.Address]*big.Int{
			common.HexToAddress(addr(3)): big.NewInt(50),
		}},
		chain.FantomTestnetID: {},
	}
	f := supply.NewFetcher(chain.DefaultTable(), testConfig(), bs, 18)

	state, err := f.Fetch(context.Background(), chain.Testnet)
	require.NoError(t, err)
	assert.Equal(t, chain.Testnet, state.Mode)
	require.Len(t, state.Chains, 3)

	sep, ok := state.For(chain.SepoliaID)
	require.True(t, ok)
	assert.Equal(t, int64(1000), sep.Old.Int64())
	assert.Equal(t, int64(250), sep.New.Int64())
	assert.Equal(t, int32(18), sep.Decimals)
	assert.Equal(t, "Sepolia", sep.Chain.Name)

	fuji, _ := state.For(chain.AvalancheFujiID)
	assert.Nil(t, fuji.Old, "old token not configured on fuji")
	assert.Equal(t, int64(50), fuji.Of(config.NewToken).Int64())

	ftm, _ := state.For(chain.FantomTestnetID)
	assert.Nil(t, ftm.Old)
	assert.Nil(t, ftm.New)

	assert.Equal(t, int64(300), state.All(config.NewToken).Int64())
	assert.Equal(t, int64(1000), state.All(config.OldToken).Int64())

	_, ok = state.For(chain.EthereumID)
	assert.False(t, ok)
}

func TestFetcher_FetchFailure(t *testing.T) {
	t.Parallel()

	bs := backends{
		chain.SepoliaID:       {fail: true},
		chain.AvalancheFujiID: {},
	}
	f := supply.NewFetcher(chain.DefaultTable(), testConfig(), bs, 18)

	_, err := f.Fetch(context.Background(), chain.Testnet)
	require.ErrorIs(t, err, migrateerr.ErrNetworkError)
	require.ErrorIs(t, err, errRPC)
}

func TestFetcher_InvalidAddress(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Networks["ethereum"] = config.NetworkConfig{NewToken: "0xnope"}
	f := supply.NewFetcher(chain.DefaultTable(), cfg, backends{}, 18)

	_, err := f.Fetch(context.Background(), chain.Mainnet)
	require.ErrorIs(t, err, migrateerr.ErrInvalidAddress)
}

// countingBackends records how many backends were requested.
type countingBackends struct {
	backends
	calls atomic.Int32
}

func (c *countingBackends) Backend(ctx context.Context, chainID uint64) (evm.Backend, error) {
	c.calls.Add(1)
	return c.backends.Backend(ctx, chainID)
}

func TestFetcher_InvalidAddressStartsNoReads(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Networks["ethereum"] = config.NetworkConfig{OldToken: addr(1), NewToken: addr(2)}
	cfg.Networks["fantom"] = config.NetworkConfig{NewToken: "0xnope"}
	bs := &countingBackends{backends: backends{chain.EthereumID: {}}}
	f := supply.NewFetcher(chain.DefaultTable(), cfg, bs, 18)

	_, err := f.Fetch(context.Background(), chain.Mainnet)
	require.ErrorIs(t, err, migrateerr.ErrInvalidAddress)
	assert.Zero(t, bs.calls.Load(), "no supply read runs once an address fails to resolve")
}

func TestState_AllEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, supply.State{}.All(config.NewToken).Sign())
}
