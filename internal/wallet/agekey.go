package wallet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"

	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// signerFromAgeFile decrypts a passphrase-protected age file whose
// plaintext is a hex private key.
func signerFromAgeFile(path string, password PasswordFunc) (*evm.KeySigner, error) {
	ciphertext, err := readKeyFile(path, "age_key")
	if err != nil {
		return nil, err
	}

	pass, err := password()
	if err != nil {
		return nil, err
	}

	identity, err := age.NewScryptIdentity(pass)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.ErrKeystoreLocked, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted key: %w", err)
	}
	locked := lockMemory(plaintext)
	defer func() {
		zero(plaintext)
		if locked {
			unlockMemory(plaintext)
		}
	}()

	return evm.ParseKeySigner(strings.TrimSpace(string(plaintext)))
}
