package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/dashboard"
	"github.com/mrz1836/tokenmigrate/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	viewChain         string
	viewSuppliesChain string
	viewOldToken      bool
	viewLimit         int
)

// dashboardCmd prints the whole burn page.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the burn dashboard",
	Long: `Load market data, token supplies and the burn history for the network
mode of the selected chain, and print them as one page.

Fetch failures do not abort the command: the affected section is left empty
and a warning is printed.`,
	Example: `  tokenmigrate dashboard
  tokenmigrate dashboard --chain sepolia --supplies-chain avalanche-fuji
  tokenmigrate dashboard --old -o json`,
	RunE: runDashboard,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.GroupID = "dashboard"

	dashboardCmd.Flags().StringVarP(&viewChain, "chain", "c", "", "wallet chain key, name or ID (default: wallet.chain)")
	dashboardCmd.Flags().StringVar(&viewSuppliesChain, "supplies-chain", "", "chain shown in the stats panel (default: wallet chain)")
	dashboardCmd.Flags().BoolVar(&viewOldToken, "old", false, "show the old token in the stats panel")
	dashboardCmd.Flags().IntVar(&viewLimit, "limit", 20, "maximum transactions to print in text mode (0 for all)")
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ch, err := cmdCtx.ResolveChain(viewChain)
	if err != nil {
		return err
	}

	w, err := cmdCtx.Wallet(ch, false)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, fetchTimeout)
	defer cancel()

	if w.IsConnected() {
		if _, balErr := w.RefreshBalance(ctx); balErr != nil {
			cmdCtx.Logger.Error("reading balance: %v", balErr)
		}
	}

	ctrl := cmdCtx.Controller(w)
	if viewOldToken {
		ctrl.Dispatch(dashboard.TokenKindToggled{})
	}
	if viewSuppliesChain != "" {
		sc, scErr := cmdCtx.ResolveChain(viewSuppliesChain)
		if scErr != nil {
			return scErr
		}
		ctrl.SetChainSelectorOpen(true)
		if err := ctrl.SetSuppliesChain(sc.ID); err != nil {
			return err
		}
	}

	if err := ctrl.Start(ctx); err != nil && !formatter.IsJSON() {
		output.Warnf("some data could not be loaded: %v", err)
	}

	s := ctrl.State()
	tokenAddress, _ := ctrl.TokenAddress()
	view := newDashboardView(s, tokenAddress, ctrl.SelectorChains(), cmdCtx.Config.TokenDecimals(), viewLimit)
	return formatter.Print(view)
}
