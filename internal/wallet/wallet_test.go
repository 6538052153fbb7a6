package wallet

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var errBalance = errors.New("balance unavailable")

type balanceBackend struct {
	evm.Backend
	balance *big.Int
	err     error
}

func (b *balanceBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return b.balance, b.err
}

type staticBackends struct{ b evm.Backend }

func (s staticBackends) Backend(context.Context, uint64) (evm.Backend, error) {
	return s.b, nil
}

func sepolia(t *testing.T) chain.Chain {
	t.Helper()
	c, ok := chain.DefaultTable().Lookup(chain.SepoliaID)
	require.True(t, ok)
	return c
}

func TestWallet_Disconnected(t *testing.T) {
	t.Parallel()

	var connectCalls int
	w := New(chain.DefaultTable(), staticBackends{}, sepolia(t), WithConnectModal(func() { connectCalls++ }))

	assert.False(t, w.IsConnected())
	assert.Empty(t, w.Address())

	_, err := w.Signer()
	require.ErrorIs(t, err, migrateerr.ErrWalletNotConnected)

	_, err = w.RefreshBalance(context.Background())
	require.ErrorIs(t, err, migrateerr.ErrWalletNotConnected)

	w.OpenConnectModal()
	assert.Equal(t, 1, connectCalls)
	w.OpenChainModal() // no callback set
}

func TestWallet_Connected(t *testing.T) {
	t.Parallel()

	signer, err := evm.ParseKeySigner(devKey)
	require.NoError(t, err)
	backend := &balanceBackend{balance: big.NewInt(5)}

	w := New(chain.DefaultTable(), staticBackends{backend}, sepolia(t), WithSigner(signer))
	assert.True(t, w.IsConnected())
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", w.Address())

	s, err := w.Signer()
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), s.Address())

	bal, err := w.RefreshBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), bal.Int64())
	assert.Equal(t, int64(5), w.Balance().Int64())
	require.NoError(t, w.BalanceError())

	backend.err = errBalance
	_, err = w.RefreshBalance(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, w.BalanceError(), errBalance)
}

func TestWallet_SwitchChain(t *testing.T) {
	t.Parallel()

	var modalCalls int
	w := New(chain.DefaultTable(), staticBackends{}, sepolia(t), WithChainModal(func() { modalCalls++ }))

	assert.Len(t, w.Chains(), 3)
	assert.True(t, w.Chains()[0].Testnet)

	ch, err := w.SwitchChain(chain.EthereumID)
	require.NoError(t, err)
	assert.Equal(t, "Ethereum", ch.Name)
	assert.Equal(t, chain.EthereumID, w.Chain().ID)
	assert.False(t, w.Chains()[0].Testnet, "chains follow the network mode")

	_, err = w.SwitchChain(56)
	require.ErrorIs(t, err, migrateerr.ErrUnknownChain)
	assert.Equal(t, chain.EthereumID, w.Chain().ID)

	w.OpenChainModal()
	assert.Equal(t, 1, modalCalls)
}

func TestLoadSigner_HexKey(t *testing.T) {
	t.Parallel()

	s, err := LoadSigner(Sources{HexKey: "  0x" + devKey + "\n"}, nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), s.Address())

	_, err = LoadSigner(Sources{HexKey: "zz"}, nil)
	require.ErrorIs(t, err, migrateerr.ErrInvalidPrivateKey)
}

func TestLoadSigner_NothingConfigured(t *testing.T) {
	t.Parallel()

	_, err := LoadSigner(Sources{}, nil)
	require.ErrorIs(t, err, migrateerr.ErrWalletNotConnected)
}

func TestLoadSigner_Keystore(t *testing.T) {
	t.Parallel()

	priv, err := crypto.HexToECDSA(devKey)
	require.NoError(t, err)
	key := &keystore.Key{
		Id:         uuid.New(),
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}
	data, err := keystore.EncryptKey(key, "hunter2", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	s, err := LoadSigner(Sources{Keystore: path}, func() (string, error) { return "hunter2", nil })
	require.NoError(t, err)
	assert.Equal(t, key.Address, s.Address())

	_, err = LoadSigner(Sources{Keystore: path}, func() (string, error) { return "wrong", nil })
	require.ErrorIs(t, err, migrateerr.ErrKeystoreLocked)

	_, err = LoadSigner(Sources{Keystore: filepath.Join(t.TempDir(), "missing.json")}, nil)
	require.ErrorIs(t, err, migrateerr.ErrNotFound)
}
