package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	txsChain string
	txsLimit int
	txsUSD   bool
)

// txsCmd lists burn transactions.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txsCmd = &cobra.Command{
	Use:   "txs",
	Short: "List burn transactions across chains",
	Long: `Fetch token transfers from the block explorer of every chain in the network
mode of the selected chain, keep the burns (transfers to the zero or dead
address) and print them newest first.

If any chain fails to respond the command fails; partial lists are never
printed. With --usd an unavailable price only drops the USD values.`,
	Example: `  tokenmigrate txs
  tokenmigrate txs --chain sepolia --limit 0
  tokenmigrate txs --usd -o json`,
	RunE: runTxs,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(txsCmd)
	txsCmd.GroupID = "dashboard"

	txsCmd.Flags().StringVarP(&txsChain, "chain", "c", "", "chain whose network mode is listed (default: wallet.chain)")
	txsCmd.Flags().IntVar(&txsLimit, "limit", 50, "maximum transactions to print in text mode (0 for all)")
	txsCmd.Flags().BoolVar(&txsUSD, "usd", false, "load the token price and show USD values")
}

func runTxs(cmd *cobra.Command, _ []string) error {
	ch, err := cmdCtx.ResolveChain(txsChain)
	if err != nil {
		return err
	}

	w, err := cmdCtx.Wallet(ch, false)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, fetchTimeout)
	defer cancel()

	ctrl := cmdCtx.Controller(w)
	if txsUSD {
		if err := ctrl.LoadCoinData(ctx); err != nil {
			cmdCtx.Logger.Error("txs without USD values: %v", err)
			if !formatter.IsJSON() {
				output.Warnf("price unavailable, USD values omitted: %v", err)
			}
		}
	}
	if err := ctrl.SelectChain(ctx, ch.ID); err != nil {
		return err
	}

	s := ctrl.State()
	view := TxsView{
		Mode:         s.Mode.String(),
		Transactions: txRows(s.Transactions, cmdCtx.Config.TokenDecimals(), s.CoinData),
		limit:        txsLimit,
	}
	for _, c := range cmdCtx.Table.ChainsFor(s.Mode) {
		view.Chains = append(view.Chains, c.Name)
	}
	return formatter.Print(view)
}
