package cli

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/dashboard"
	"github.com/mrz1836/tokenmigrate/internal/output"
	"github.com/mrz1836/tokenmigrate/internal/price"
)

const notAvailable = "n/a"

// TxRow is one burn transaction as printed by the txs and dashboard views.
type TxRow struct {
	Hash      string `json:"hash"`
	Chain     string `json:"chain"`
	ChainID   uint64 `json:"chain_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Amount    string `json:"amount"`
	USD       string `json:"usd,omitempty"`
	TimeStamp int64  `json:"timestamp"`
	URL       string `json:"url"`
}

func txRows(txs []dashboard.BurnTransaction, decimals int32, md *price.MarketData) []TxRow {
	var (
		usd   float64
		hasPx bool
	)
	if md != nil {
		usd, hasPx = md.USD()
	}

	rows := make([]TxRow, 0, len(txs))
	for _, tx := range txs {
		row := TxRow{
			Hash:      tx.Hash,
			Chain:     tx.Chain.Name,
			ChainID:   tx.Chain.ID,
			From:      tx.From,
			To:        tx.To,
			Value:     tx.Value,
			Amount:    notAvailable,
			TimeStamp: tx.Unix(),
			URL:       tx.Chain.TxURL(tx.Hash),
		}
		if v, ok := chain.ParseBaseUnits(tx.Value); ok {
			row.Amount = chain.FormatUnits(v, decimals)
			if hasPx {
				row.USD = chain.USDValue(v, decimals, usd)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func writeTxTable(w io.Writer, rows []TxRow, limit int) {
	if len(rows) == 0 {
		outln(w, "No burn transactions found.")
		return
	}

	tbl := output.NewTable("TIME (UTC)", "CHAIN", "HASH", "FROM", "AMOUNT", "USD").AlignRight(4, 5)
	for i, r := range rows {
		if limit > 0 && i >= limit {
			break
		}
		usd := r.USD
		if usd == "" {
			usd = notAvailable
		}
		tbl.AddRow(
			time.Unix(r.TimeStamp, 0).UTC().Format("2006-01-02 15:04"),
			r.Chain,
			shorten(r.Hash),
			shorten(r.From),
			r.Amount,
			usd,
		)
	}
	_ = tbl.Render(w)

	if limit > 0 && len(rows) > limit {
		out(w, "... %d more (use --limit 0 to show all)\n", len(rows)-limit)
	}
}

// shorten abbreviates a hash or address for table output.
func shorten(s string) string {
	if len(s) <= 14 {
		return s
	}
	return s[:8] + "..." + s[len(s)-4:]
}

func formatUSD(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}

// TxsView is the result of the txs command.
type TxsView struct {
	Mode         string   `json:"mode"`
	Chains       []string `json:"chains"`
	Transactions []TxRow  `json:"transactions"`

	limit int
}

// RenderText prints the burn transaction table.
func (v TxsView) RenderText(w io.Writer) error {
	out(w, "Burn transactions (%s", v.Mode)
	for i, name := range v.Chains {
		sep := ": "
		if i > 0 {
			sep = ", "
		}
		out(w, "%s%s", sep, name)
	}
	outln(w, ")")
	outln(w)
	writeTxTable(w, v.Transactions, v.limit)
	return nil
}

// StatsView is the stats panel: token, price and supplies.
type StatsView struct {
	TokenKind     config.TokenKind `json:"token_kind"`
	TokenAddress  string           `json:"token_address,omitempty"`
	SuppliesChain string           `json:"supplies_chain"`
	PriceUSD      *float64         `json:"price_usd,omitempty"`
	MarketCapUSD  *float64         `json:"market_cap_usd,omitempty"`
	Change24h     *float64         `json:"price_change_24h,omitempty"`
	ChainSupply   string           `json:"chain_supply,omitempty"`
	AllSupply     string           `json:"all_supply"`
	SupplyByChain []SupplyRow      `json:"supply_by_chain"`
}

// SupplyRow is the supply of both tokens on one chain.
type SupplyRow struct {
	Chain string `json:"chain"`
	Old   string `json:"old_token,omitempty"`
	New   string `json:"new_token,omitempty"`
}

func newStatsView(s dashboard.State, tokenAddress string, chains []chain.Chain, decimals int32) StatsView {
	v := StatsView{
		TokenKind:     s.TokenKind(),
		TokenAddress:  tokenAddress,
		SuppliesChain: s.SuppliesChain.Name,
		AllSupply:     chain.FormatUnits(s.Supplies.All(s.TokenKind()), decimals),
	}

	if s.CoinData != nil {
		if p, ok := s.CoinData.USD(); ok {
			v.PriceUSD = &p
		}
		if mc, ok := s.CoinData.MarketCapUSD(); ok {
			v.MarketCapUSD = &mc
		}
		change := s.CoinData.PriceChangePercentage24h
		v.Change24h = &change
	}

	if sup, ok := s.Supplies.For(s.SuppliesChain.ID); ok {
		if amt := sup.Of(s.TokenKind()); amt != nil {
			v.ChainSupply = chain.FormatUnits(amt, decimals)
		}
	}

	for _, ch := range chains {
		sup, ok := s.Supplies.For(ch.ID)
		if !ok {
			continue
		}
		v.SupplyByChain = append(v.SupplyByChain, SupplyRow{
			Chain: ch.Name,
			Old:   formatOptional(sup.Old, decimals),
			New:   formatOptional(sup.New, decimals),
		})
	}
	return v
}

func formatOptional(v *big.Int, decimals int32) string {
	if v == nil {
		return ""
	}
	return chain.FormatUnits(v, decimals)
}

// RenderText prints the stats panel.
func (v StatsView) RenderText(w io.Writer) error {
	address := v.TokenAddress
	if address == "" {
		address = "not configured"
	}
	out(w, "Token:           %s (%s)\n", address, v.TokenKind)
	out(w, "Supplies chain:  %s\n", v.SuppliesChain)

	priceStr := notAvailable
	if v.PriceUSD != nil {
		priceStr = formatUSD(*v.PriceUSD)
		if v.Change24h != nil {
			priceStr += fmt.Sprintf(" (%+.2f%% 24h)", *v.Change24h)
		}
	}
	out(w, "Price:           %s\n", priceStr)
	if v.MarketCapUSD != nil {
		out(w, "Market cap:      %s\n", formatUSD(*v.MarketCapUSD))
	}

	chainSupply := v.ChainSupply
	if chainSupply == "" {
		chainSupply = notAvailable
	}
	out(w, "Supply on chain: %s\n", chainSupply)
	out(w, "Supply total:    %s\n", v.AllSupply)

	if len(v.SupplyByChain) > 0 {
		outln(w)
		tbl := output.NewTable("CHAIN", "OLD TOKEN", "NEW TOKEN").AlignRight(1, 2)
		for _, r := range v.SupplyByChain {
			tbl.AddRow(r.Chain, orNA(r.Old), orNA(r.New))
		}
		_ = tbl.Render(w)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// WalletView is the wallet summary line.
type WalletView struct {
	Address   string `json:"address,omitempty"`
	Connected bool   `json:"connected"`
	Chain     string `json:"chain"`
	ChainID   uint64 `json:"chain_id"`
	Mode      string `json:"mode"`
	Balance   string `json:"balance,omitempty"`
	Symbol    string `json:"symbol"`
}

// ButtonBar is the burn input and button state.
type ButtonBar struct {
	Amount     string `json:"amount"`
	Button     string `json:"button"`
	InProgress bool   `json:"in_progress"`
	BurnTxHash string `json:"burn_tx_hash,omitempty"`
	BurnTxURL  string `json:"burn_tx_url,omitempty"`
}

// DashboardView is the full page.
type DashboardView struct {
	Wallet       WalletView    `json:"wallet"`
	ButtonBar    ButtonBar     `json:"button_bar"`
	Stats        StatsView     `json:"stats"`
	Transactions []TxRow       `json:"transactions"`
	Toast        *output.Toast `json:"toast,omitempty"`

	limit int
}

func newDashboardView(s dashboard.State, tokenAddress string, chains []chain.Chain, decimals int32, limit int) DashboardView {
	v := DashboardView{
		Wallet: WalletView{
			Address:   s.Wallet.Address,
			Connected: s.Wallet.Connected,
			Chain:     s.Chain.Name,
			ChainID:   s.Chain.ID,
			Mode:      s.Mode.String(),
			Symbol:    s.Chain.NativeSymbol,
		},
		ButtonBar: ButtonBar{
			Amount:     s.BurnAmount,
			Button:     string(s.TxButton),
			InProgress: s.TxProgress,
			BurnTxHash: s.BurnTxHash,
		},
		Stats:        newStatsView(s, tokenAddress, chains, decimals),
		Transactions: txRows(s.Transactions, decimals, s.CoinData),
		limit:        limit,
	}
	if s.Wallet.Balance != nil {
		v.Wallet.Balance = chain.FormatUnits(s.Wallet.Balance, chain.TokenDecimals)
	}
	if s.BurnTxHash != "" {
		v.ButtonBar.BurnTxURL = s.Chain.TxURL(s.BurnTxHash)
	}
	if !s.Toast.IsZero() {
		toast := s.Toast
		v.Toast = &toast
	}
	return v
}

// RenderText prints the page: wallet line, button bar, stats and history.
func (v DashboardView) RenderText(w io.Writer) error {
	if v.Wallet.Connected {
		out(w, "Wallet: %s on %s (%s)", v.Wallet.Address, v.Wallet.Chain, v.Wallet.Mode)
		if v.Wallet.Balance != "" {
			out(w, "  balance %s %s", v.Wallet.Balance, v.Wallet.Symbol)
		}
		outln(w)
	} else {
		out(w, "Wallet: not connected, chain %s (%s)\n", v.Wallet.Chain, v.Wallet.Mode)
	}

	amount := v.ButtonBar.Amount
	if amount == "" {
		amount = "-"
	}
	out(w, "[ %s ]  amount: %s\n", v.ButtonBar.Button, amount)
	if v.ButtonBar.BurnTxURL != "" {
		out(w, "Last burn: %s\n", v.ButtonBar.BurnTxURL)
	}

	outln(w)
	_ = v.Stats.RenderText(w)

	outln(w)
	writeTxTable(w, v.Transactions, v.limit)

	if v.Toast != nil {
		outln(w)
		output.WriteToast(w, *v.Toast)
	}
	return nil
}
