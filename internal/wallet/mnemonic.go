package wallet

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	bip32 "github.com/tyler-smith/go-bip32"
	bip39 "github.com/tyler-smith/go-bip39"

	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// ethCoinType is the SLIP-44 coin type shared by every EVM chain, so one
// derived key signs on all of them.
const ethCoinType = 60

// DerivationPath returns the BIP44 path for an account index.
func DerivationPath(index uint32) string {
	return fmt.Sprintf("m/44'/%d'/0'/0/%d", ethCoinType, index)
}

// NormalizeMnemonic lowercases a phrase and collapses commas and runs of
// whitespace into single spaces.
func NormalizeMnemonic(input string) string {
	input = strings.ReplaceAll(strings.ToLower(input), ",", " ")
	return strings.Join(strings.Fields(input), " ")
}

func signerFromMnemonic(mnemonic, passphrase string, index uint32) (*evm.KeySigner, error) {
	normalized := NormalizeMnemonic(mnemonic)

	// MnemonicToByteArray checks word count, word validity and checksum.
	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		return nil, migrateerr.WithCause(migrateerr.ErrInvalidMnemonic, err)
	}

	seed := bip39.NewSeed(normalized, passphrase)
	locked := lockMemory(seed)
	defer func() {
		zero(seed)
		if locked {
			unlockMemory(seed)
		}
	}()

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("creating master key: %w", err)
	}

	path := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + ethCoinType,
		bip32.FirstHardenedChild,
		0,
		index,
	}
	for _, child := range path {
		if key, err = key.NewChildKey(child); err != nil {
			return nil, fmt.Errorf("deriving %s: %w", DerivationPath(index), err)
		}
	}

	priv, err := crypto.ToECDSA(key.Key)
	zero(key.Key)
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.ErrInvalidPrivateKey, err)
	}
	return evm.NewKeySigner(priv), nil
}
