package chain_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad test value %q", s)
	return v
}

func TestParseUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		decimals int32
		want     string
		wantErr  error
	}{
		{name: "whole", amount: "1", decimals: 18, want: "1000000000000000000"},
		{name: "fraction", amount: "1.5", decimals: 18, want: "1500000000000000000"},
		{name: "smallest unit", amount: "0.000000000000000001", decimals: 18, want: "1"},
		{name: "leading dot", amount: ".25", decimals: 18, want: "250000000000000000"},
		{name: "whitespace", amount: "  2  ", decimals: 6, want: "2000000"},
		{name: "large", amount: "123456789.123456789", decimals: 18, want: "123456789123456789000000000"},
		{name: "empty", amount: "", decimals: 18, wantErr: migrateerr.ErrAmountRequired},
		{name: "blank", amount: "   ", decimals: 18, wantErr: migrateerr.ErrAmountRequired},
		{name: "letters", amount: "abc", decimals: 18, wantErr: migrateerr.ErrInvalidAmount},
		{name: "zero", amount: "0", decimals: 18, wantErr: migrateerr.ErrInvalidAmount},
		{name: "negative", amount: "-1", decimals: 18, wantErr: migrateerr.ErrInvalidAmount},
		{name: "too precise", amount: "0.0000001", decimals: 6, wantErr: migrateerr.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := chain.ParseUnits(tt.amount, tt.decimals)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatUnits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", chain.FormatUnits(nil, 18))
	assert.Equal(t, "1.5", chain.FormatUnits(mustBig(t, "1500000000000000000"), 18))
	assert.Equal(t, "1", chain.FormatUnits(mustBig(t, "1000000000000000000"), 18))
	assert.Equal(t, "0.000000000000000001", chain.FormatUnits(big.NewInt(1), 18))
	assert.Equal(t, "42", chain.FormatUnits(big.NewInt(42), 0))
}

func TestFormatUnits_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "0.5", "1000000", "3.141592653589793238"} {
		v, err := chain.ParseUnits(s, chain.TokenDecimals)
		require.NoError(t, err)
		assert.Equal(t, s, chain.FormatUnits(v, chain.TokenDecimals))
	}
}

func TestIsNumeric(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "0", "1.25", " 7 ", "-3", ".5"} {
		assert.True(t, chain.IsNumeric(s), s)
	}
	for _, s := range []string{"", "abc", "1.2.3", "1e", "ten"} {
		assert.False(t, chain.IsNumeric(s), s)
	}
}

func TestParseBaseUnits(t *testing.T) {
	t.Parallel()

	v, ok := chain.ParseBaseUnits("1000000000000000000")
	require.True(t, ok)
	assert.Equal(t, "1000000000000000000", v.String())

	_, ok = chain.ParseBaseUnits("0x10")
	assert.False(t, ok)
}

func TestUSDValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.00", chain.USDValue(nil, 18, 1.5))
	assert.Equal(t, "3.00", chain.USDValue(mustBig(t, "2000000000000000000"), 18, 1.5))
	assert.Equal(t, "0.12", chain.USDValue(mustBig(t, "1000000000000000000"), 18, 0.123))
	assert.Equal(t, "0.00", chain.USDValue(mustBig(t, "5000000000000000000"), 18, 0))
}
