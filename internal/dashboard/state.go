// Package dashboard implements the burn page controller: it aggregates burn
// transactions across chains, drives burn submission and holds the market
// and supply data shown next to them.
//
// All page state lives in an immutable State value. Controllers change it
// only by dispatching an Action through Reduce.
package dashboard

import (
	"math/big"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/output"
	"github.com/mrz1836/tokenmigrate/internal/price"
	"github.com/mrz1836/tokenmigrate/internal/supply"
)

// BurnTxProgress is the label of the burn button.
type BurnTxProgress string

// Burn button labels.
const (
	BurnTxDefault BurnTxProgress = "Burn App Tokens"
	BurnTxBurning BurnTxProgress = "Burning..."
)

// Toast messages raised by the controller.
const (
	MsgEnterAmount = "Enter amount to migrate"
	MsgBurnFailed  = "Burn Failed!"
)

// WalletView is the part of the wallet context the page renders.
type WalletView struct {
	Address      string   `json:"address,omitempty"`
	Connected    bool     `json:"connected"`
	Balance      *big.Int `json:"balance,omitempty"`
	BalanceError bool     `json:"balance_error"`
}

// State is one immutable snapshot of the page. Slices and maps held by a
// State are never modified after it is published.
type State struct {
	Wallet WalletView        `json:"wallet"`
	Chain  chain.Chain       `json:"chain"`
	Mode   chain.NetworkMode `json:"mode"`

	BurnAmount   string            `json:"burn_amount"`
	Transactions []BurnTransaction `json:"transactions"`
	CoinData     *price.MarketData `json:"coin_data,omitempty"`

	Supplies          supply.State `json:"-"`
	SuppliesChain     chain.Chain  `json:"supplies_chain"`
	IsOldToken        bool         `json:"is_old_token"`
	ChainSelectorOpen bool         `json:"chain_selector_open"`

	TxButton      BurnTxProgress `json:"tx_button"`
	TxProgress    bool           `json:"tx_progress"`
	ApproveTxHash string         `json:"approve_tx_hash,omitempty"`
	BurnTxHash    string         `json:"burn_tx_hash,omitempty"`

	Toast    output.Toast `json:"toast"`
	ToastSeq uint64       `json:"toast_seq"`

	// Generation identifies the current transaction refresh. Results
	// carrying an older generation are discarded.
	Generation uint64 `json:"generation"`
}

// InitialState is the state before anything has loaded.
func InitialState() State {
	return State{
		Transactions: []BurnTransaction{},
		TxButton:     BurnTxDefault,
	}
}

// TokenKind returns the token the stats panel shows.
func (s State) TokenKind() config.TokenKind {
	if s.IsOldToken {
		return config.OldToken
	}
	return config.NewToken
}

// PriceUSD returns the current USD price. ok is false while the price is
// unknown.
func (s State) PriceUSD() (usd float64, ok bool) {
	if s.CoinData == nil {
		return 0, false
	}
	return s.CoinData.USD()
}
