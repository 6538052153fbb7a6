package dashboard

import (
	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/output"
	"github.com/mrz1836/tokenmigrate/internal/price"
	"github.com/mrz1836/tokenmigrate/internal/supply"
)

// Action is a tagged state transition. The set of actions is closed.
type Action interface {
	isAction()
}

type (
	// WalletUpdated copies the wallet context into the page.
	WalletUpdated struct{ Wallet WalletView }

	// ChainSelected switches the active chain. It starts a new refresh
	// generation and clears the transaction list.
	ChainSelected struct{ Chain chain.Chain }

	// TokenKindToggled flips between the old and new token. Like a chain
	// switch it starts a new refresh generation.
	TokenKindToggled struct{}

	// TransactionsLoaded publishes an aggregation result for a generation.
	TransactionsLoaded struct {
		Generation   uint64
		Transactions []BurnTransaction
	}

	// AmountChanged sets the burn amount input.
	AmountChanged struct{ Amount string }

	// BurnStarted moves the burn button into the burning state.
	BurnStarted struct{}

	// BurnHashRecorded stores the hash of the broadcast burn.
	BurnHashRecorded struct{ Hash string }

	// BurnFinished returns the burn button to its default state.
	BurnFinished struct{}

	// BurnFailed returns the burn button to its default state and raises
	// an error toast.
	BurnFailed struct{}

	// CoinDataLoaded stores the market data snapshot.
	CoinDataLoaded struct{ Data price.MarketData }

	// SuppliesLoaded stores the supplies snapshot.
	SuppliesLoaded struct{ Supplies supply.State }

	// SuppliesChainSelected picks the chain the stats panel shows and
	// closes the chain selector.
	SuppliesChainSelected struct{ Chain chain.Chain }

	// ChainSelectorToggled opens or closes the chain selector.
	ChainSelectorToggled struct{ Open bool }

	// ToastShown raises a notification.
	ToastShown struct{ Toast output.Toast }
)

func (WalletUpdated) isAction()         {}
func (ChainSelected) isAction()         {}
func (TokenKindToggled) isAction()      {}
func (TransactionsLoaded) isAction()    {}
func (AmountChanged) isAction()         {}
func (BurnStarted) isAction()           {}
func (BurnHashRecorded) isAction()      {}
func (BurnFinished) isAction()          {}
func (BurnFailed) isAction()            {}
func (CoinDataLoaded) isAction()        {}
func (SuppliesLoaded) isAction()        {}
func (SuppliesChainSelected) isAction() {}
func (ChainSelectorToggled) isAction()  {}
func (ToastShown) isAction()            {}

// Reduce returns the state that results from applying a to s. It has no
// side effects and never modifies s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case WalletUpdated:
		s.Wallet = a.Wallet

	case ChainSelected:
		s.Chain = a.Chain
		s.Mode = chain.ModeFor(a.Chain.ID)
		s = newGeneration(s)

	case TokenKindToggled:
		s.IsOldToken = !s.IsOldToken
		s = newGeneration(s)

	case TransactionsLoaded:
		if a.Generation != s.Generation {
			return s
		}
		s.Transactions = a.Transactions

	case AmountChanged:
		s.BurnAmount = a.Amount

	case BurnStarted:
		s.TxButton = BurnTxBurning
		s.TxProgress = true
		s.BurnTxHash = ""

	case BurnHashRecorded:
		s.BurnTxHash = a.Hash

	case BurnFinished:
		s.TxButton = BurnTxDefault
		s.TxProgress = false

	case BurnFailed:
		s.TxButton = BurnTxDefault
		s.TxProgress = false
		s = showToast(s, output.Toast{Message: MsgBurnFailed, Severity: output.SeverityError})

	case CoinDataLoaded:
		data := a.Data
		s.CoinData = &data

	case SuppliesLoaded:
		s.Supplies = a.Supplies

	case SuppliesChainSelected:
		s.SuppliesChain = a.Chain
		s.ChainSelectorOpen = false

	case ChainSelectorToggled:
		s.ChainSelectorOpen = a.Open

	case ToastShown:
		s = showToast(s, a.Toast)
	}
	return s
}

func newGeneration(s State) State {
	s.Generation++
	s.Transactions = []BurnTransaction{}
	return s
}

func showToast(s State, t output.Toast) State {
	s.Toast = t
	s.ToastSeq++
	return s
}
