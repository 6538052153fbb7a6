package wallet

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"

	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// PasswordFunc supplies a password, usually from a terminal prompt.
type PasswordFunc func() (string, error)

// Sources lists where a signing key may come from. LoadSigner uses the
// first one that is set, in field order.
type Sources struct {
	// HexKey is a raw hex private key, with or without 0x.
	HexKey string
	// Mnemonic is a BIP39 phrase; Passphrase is its optional extension
	// word and AccountIndex picks the address on DerivationPath.
	Mnemonic     string
	Passphrase   string
	AccountIndex uint32
	// AgeFile is an age-encrypted file holding a hex private key.
	AgeFile string
	// Keystore is a go-ethereum keystore JSON file.
	Keystore string
}

// LoadSigner builds a signer from the first configured source. With none
// configured it returns ErrWalletNotConnected.
func LoadSigner(src Sources, password PasswordFunc) (*evm.KeySigner, error) {
	switch {
	case strings.TrimSpace(src.HexKey) != "":
		return evm.ParseKeySigner(strings.TrimSpace(src.HexKey))
	case strings.TrimSpace(src.Mnemonic) != "":
		return signerFromMnemonic(src.Mnemonic, src.Passphrase, src.AccountIndex)
	case src.AgeFile != "":
		return signerFromAgeFile(src.AgeFile, password)
	case src.Keystore != "":
		return signerFromKeystore(src.Keystore, password)
	}

	return nil, migrateerr.WithSuggestion(migrateerr.ErrWalletNotConnected,
		"set TOKENMIGRATE_PRIVATE_KEY, TOKENMIGRATE_MNEMONIC, wallet.age_key or wallet.keystore in config.yaml")
}

func signerFromKeystore(path string, password PasswordFunc) (*evm.KeySigner, error) {
	data, err := readKeyFile(path, "keystore")
	if err != nil {
		return nil, err
	}

	pass, err := password()
	if err != nil {
		return nil, err
	}

	key, err := keystore.DecryptKey(data, pass)
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.ErrKeystoreLocked, err)
	}
	return evm.NewKeySigner(key.PrivateKey), nil
}

// readKeyFile reads an encrypted key file, mapping a missing file to ErrNotFound.
func readKeyFile(path, kind string) ([]byte, error) {
	// #nosec G304 -- key file path is from config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, migrateerr.WithDetails(migrateerr.ErrNotFound, map[string]string{kind: path})
		}
		return nil, err
	}
	return data, nil
}

// zero overwrites secret material once it is no longer needed.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
