package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/dashboard"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	statsChain         string
	statsSuppliesChain string
	statsOldToken      bool
)

// statsCmd prints token supplies and market data.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token supplies and price",
	Long: `Read the total supply of the old and new token on every chain of the
network mode, and print them with the current market data.

The stats panel focuses on one chain (--supplies-chain) and one token
(new by default, --old for the pre-migration token).`,
	Example: `  tokenmigrate stats
  tokenmigrate stats --chain sepolia --supplies-chain fantom-testnet --old`,
	RunE: runStats,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.GroupID = "dashboard"

	statsCmd.Flags().StringVarP(&statsChain, "chain", "c", "", "chain whose network mode is read (default: wallet.chain)")
	statsCmd.Flags().StringVar(&statsSuppliesChain, "supplies-chain", "", "chain shown in the stats panel (default: --chain)")
	statsCmd.Flags().BoolVar(&statsOldToken, "old", false, "show the old token")
}

func runStats(cmd *cobra.Command, _ []string) error {
	ch, err := cmdCtx.ResolveChain(statsChain)
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
	ctrl.SyncWallet()
	if statsOldToken {
		ctrl.Dispatch(dashboard.TokenKindToggled{})
	}

	supplies := ch
	if statsSuppliesChain != "" {
		if supplies, err = cmdCtx.ResolveChain(statsSuppliesChain); err != nil {
			return err
		}
	}
	if err := ctrl.SetSuppliesChain(supplies.ID); err != nil {
		return err
	}

	if err := ctrl.RefreshSupplies(ctx); err != nil {
		return err
	}
	if err := ctrl.LoadCoinData(ctx); err != nil {
		cmdCtx.Logger.Error("stats without price: %v", err)
	}

	tokenAddress, _ := ctrl.TokenAddress()
	view := newStatsView(ctrl.State(), tokenAddress, ctrl.SelectorChains(), cmdCtx.Config.TokenDecimals())
	return formatter.Print(view)
}
