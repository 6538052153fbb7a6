package cli

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Prompt functions are variables so tests can replace them.
//
//nolint:gochecknoglobals // Swappable for tests
var (
	promptPasswordFn = promptPassword
	promptConfirmFn  = promptConfirm
)

// promptPassword prompts for a password with hidden input.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// walletPassword asks for the password of the keystore or age key file.
func walletPassword() (string, error) {
	pw, err := promptPasswordFn("Wallet password: ")
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// promptConfirm asks a yes/no question on stderr. Anything but y/yes is no.
func promptConfirm(question string) bool {
	out(os.Stderr, "%s [y/N]: ", question)

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
