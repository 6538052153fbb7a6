package chain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// TokenDecimals is the number of decimals used by the migration tokens.
const TokenDecimals int32 = 18

// IsNumeric reports whether s parses as a finite decimal number.
func IsNumeric(s string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil
}

// ParseUnits converts a human-readable decimal amount into base units.
// For example, "1.5" with 18 decimals returns 1500000000000000000.
// The amount must be positive and must not carry more fractional digits
// than the token supports.
func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, migrateerr.ErrAmountRequired
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, migrateerr.WithDetails(migrateerr.ErrInvalidAmount, map[string]string{
			"amount": amount,
		})
	}

	if !d.IsPositive() {
		return nil, migrateerr.WithDetails(migrateerr.ErrInvalidAmount, map[string]string{
			"amount": amount,
			"reason": "amount must be greater than zero",
		})
	}

	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, migrateerr.WithDetails(migrateerr.ErrInvalidAmount, map[string]string{
			"amount": amount,
			"reason": "too many decimal places",
		})
	}

	return scaled.BigInt(), nil
}

// FormatUnits converts base units to a human-readable string.
// Trailing zeros after the decimal point are removed.
func FormatUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// ParseBaseUnits parses an integer string as returned by block explorers.
func ParseBaseUnits(value string) (*big.Int, bool) {
	return new(big.Int).SetString(strings.TrimSpace(value), 10)
}

// USDValue returns the USD value of a base-unit amount at the given price,
// rounded to cents.
func USDValue(amount *big.Int, decimals int32, priceUSD float64) string {
	if amount == nil {
		return "0.00"
	}
	value := decimal.NewFromBigInt(amount, -decimals).Mul(decimal.NewFromFloat(priceUSD))
	return value.StringFixed(2)
}
