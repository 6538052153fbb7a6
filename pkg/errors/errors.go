// Package errors provides structured error handling for tokenmigrate.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Wallet not connected or key could not be unlocked
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Insufficient funds or transaction rejected
)

// MigrateError is the structured error type for tokenmigrate.
type MigrateError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *MigrateError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *MigrateError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for MigrateError.
func (e *MigrateError) Is(target error) bool {
	var t *MigrateError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &MigrateError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &MigrateError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &MigrateError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrInsufficientFunds = &MigrateError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for transaction",
		ExitCode: ExitPermission,
	}

	// Wallet errors.
	ErrWalletNotConnected = &MigrateError{
		Code:     "WALLET_NOT_CONNECTED",
		Message:  "wallet is not connected",
		ExitCode: ExitAuth,
	}

	ErrInvalidPrivateKey = &MigrateError{
		Code:     "INVALID_PRIVATE_KEY",
		Message:  "invalid private key",
		ExitCode: ExitAuth,
	}

	ErrInvalidMnemonic = &MigrateError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitAuth,
	}

	ErrKeystoreLocked = &MigrateError{
		Code:     "KEYSTORE_LOCKED",
		Message:  "keystore could not be unlocked - wrong password or corrupted file",
		ExitCode: ExitAuth,
	}

	// Chain errors.
	ErrInvalidAddress = &MigrateError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrUnknownChain = &MigrateError{
		Code:     "UNKNOWN_CHAIN",
		Message:  "unknown chain",
		ExitCode: ExitInput,
	}

	ErrTokenNotConfigured = &MigrateError{
		Code:     "TOKEN_NOT_CONFIGURED",
		Message:  "no token address configured for chain",
		ExitCode: ExitNotFound,
	}

	ErrNetworkError = &MigrateError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	ErrTxRejected = &MigrateError{
		Code:     "TX_REJECTED",
		Message:  "transaction rejected by network",
		ExitCode: ExitPermission,
	}

	ErrTxReverted = &MigrateError{
		Code:     "TX_REVERTED",
		Message:  "transaction reverted",
		ExitCode: ExitPermission,
	}

	ErrTxTimeout = &MigrateError{
		Code:     "TX_TIMEOUT",
		Message:  "timed out waiting for transaction confirmation",
		ExitCode: ExitGeneral,
	}

	// Config errors.
	ErrConfigNotFound = &MigrateError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &MigrateError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	// Burn errors.
	ErrAmountRequired = &MigrateError{
		Code:     "AMOUNT_REQUIRED",
		Message:  "amount is required",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &MigrateError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}

	ErrBurnFailed = &MigrateError{
		Code:     "BURN_FAILED",
		Message:  "burn failed",
		ExitCode: ExitGeneral,
	}

	ErrBurnInProgress = &MigrateError{
		Code:     "BURN_IN_PROGRESS",
		Message:  "a burn is already in progress",
		ExitCode: ExitInput,
	}
)

// New creates a new MigrateError with the given code and message.
func New(code, message string) *MigrateError {
	return &MigrateError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var me *MigrateError
	if errors.As(err, &me) {
		return &MigrateError{
			Code:       me.Code,
			Message:    fmt.Sprintf("%s: %s", msg, me.Message),
			Details:    me.Details,
			Suggestion: me.Suggestion,
			Cause:      err,
			ExitCode:   me.ExitCode,
		}
	}

	return &MigrateError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a sentinel error, keeping its code.
func WithCause(err, cause error) error {
	if err == nil {
		return nil
	}

	var me *MigrateError
	if errors.As(err, &me) {
		return &MigrateError{
			Code:       me.Code,
			Message:    me.Message,
			Details:    me.Details,
			Suggestion: me.Suggestion,
			Cause:      cause,
			ExitCode:   me.ExitCode,
		}
	}

	return fmt.Errorf("%w: %w", err, cause)
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var me *MigrateError
	if errors.As(err, &me) {
		return &MigrateError{
			Code:       me.Code,
			Message:    me.Message,
			Details:    details,
			Suggestion: me.Suggestion,
			Cause:      me.Cause,
			ExitCode:   me.ExitCode,
		}
	}

	return &MigrateError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var me *MigrateError
	if errors.As(err, &me) {
		return &MigrateError{
			Code:       me.Code,
			Message:    me.Message,
			Details:    me.Details,
			Suggestion: suggestion,
			Cause:      me.Cause,
			ExitCode:   me.ExitCode,
		}
	}

	return &MigrateError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var me *MigrateError
	if errors.As(err, &me) {
		return me.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var me *MigrateError
	if errors.As(err, &me) {
		return me.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
