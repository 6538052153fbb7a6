package explorer

import "strings"

// Addresses a burn transfer may be sent to.
const (
	ZeroAddress = "0x0000000000000000000000000000000000000000"
	DeadAddress = "0x000000000000000000000000000000000000dEaD"
)

// IsBurnTransfer reports whether a transfer destroys tokens: its recipient
// is the zero address or the dead address. Comparison ignores case.
func IsBurnTransfer(tx RawTx) bool {
	to := strings.TrimSpace(tx.To)
	return strings.EqualFold(to, ZeroAddress) || strings.EqualFold(to, DeadAddress)
}

// OnlyBurnTransactions returns the burn transfers of txs in their original
// order. Applying it twice gives the same result as applying it once.
func OnlyBurnTransactions(txs []RawTx) []RawTx {
	out := make([]RawTx, 0, len(txs))
	for _, tx := range txs {
		if IsBurnTransfer(tx) {
			out = append(out, tx)
		}
	}
	return out
}
