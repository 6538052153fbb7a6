package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/dashboard"
	"github.com/mrz1836/tokenmigrate/internal/output"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	burnAmount string
	burnChain  string
	burnYes    bool
)

// BurnResult is the outcome of a confirmed burn.
type BurnResult struct {
	Chain   string `json:"chain"`
	ChainID uint64 `json:"chain_id"`
	Amount  string `json:"amount"`
	Hash    string `json:"hash"`
	URL     string `json:"url"`
}

// RenderText prints the confirmed burn.
func (r BurnResult) RenderText(w io.Writer) error {
	output.WriteToast(w, output.Toast{
		Message:  "Burned " + r.Amount + " on " + r.Chain,
		Severity: output.SeveritySuccess,
	})
	out(w, "  Hash: %s\n", r.Hash)
	out(w, "  View: %s\n", r.URL)
	return nil
}

// burnCmd burns new tokens from the local wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn new tokens to migrate them",
	Long: `Burn an amount of the new token on the selected chain by calling the
token contract's burn(uint256) from the local wallet, then wait for the
transaction to be mined.

The wallet key comes from TOKENMIGRATE_PRIVATE_KEY or the keystore set in
wallet.keystore. The command waits at most burn.timeout_seconds for the
receipt. On success the burn history and supplies are refreshed.`,
	Example: `  tokenmigrate burn --amount 1.5
  tokenmigrate burn --amount 250 --chain avalanche-fuji --yes`,
	RunE: runBurn,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(burnCmd)
	burnCmd.GroupID = "migrate"

	burnCmd.Flags().StringVarP(&burnAmount, "amount", "a", "", "amount of new tokens to burn (required)")
	burnCmd.Flags().StringVarP(&burnChain, "chain", "c", "", "chain to burn on (default: wallet.chain)")
	burnCmd.Flags().BoolVarP(&burnYes, "yes", "y", false, "skip the confirmation prompt")
}

func runBurn(cmd *cobra.Command, _ []string) error {
	if burnAmount == "" {
		return migrateerr.WithSuggestion(migrateerr.ErrAmountRequired, "pass --amount <tokens>")
	}

	ch, err := cmdCtx.ResolveChain(burnChain)
	if err != nil {
		return err
	}

	w, err := cmdCtx.Wallet(ch, true)
	if err != nil {
		return err
	}

	ctrl := cmdCtx.Controller(w, dashboard.WithObserver(burnProgress(os.Stderr)))
	ctrl.SyncWallet()

	if !ctrl.OnChangeBurnAmount(burnAmount) {
		return migrateerr.WithDetails(migrateerr.ErrInvalidAmount, map[string]string{"amount": burnAmount})
	}
	amount := ctrl.State().BurnAmount

	if !burnYes && !formatter.IsJSON() {
		question := "Burn " + amount + " new tokens on " + ch.Name + " from " + w.Address() + "?"
		if !promptConfirmFn(question) {
			output.Info("Burn canceled")
			return nil
		}
	}

	ctx, cancel := contextWithTimeout(cmd, cmdCtx.Config.BurnTimeout()+burnGrace)
	defer cancel()

	if err := ctrl.ExecuteBurn(ctx); err != nil {
		return err
	}

	s := ctrl.State()
	return formatter.Print(BurnResult{
		Chain:   ch.Name,
		ChainID: ch.ID,
		Amount:  amount,
		Hash:    s.BurnTxHash,
		URL:     ch.TxURL(s.BurnTxHash),
	})
}

// burnProgress returns an observer that reports the button label, the
// submitted hash and every toast as the burn moves through its states.
func burnProgress(w io.Writer) func(dashboard.State) {
	var (
		label    = dashboard.BurnTxDefault
		hash     string
		toastSeq uint64
	)
	return func(s dashboard.State) {
		if formatter != nil && formatter.IsJSON() {
			return
		}
		if s.TxButton != label {
			label = s.TxButton
			if s.TxProgress {
				outln(w, string(label))
			}
		}
		if s.BurnTxHash != "" && s.BurnTxHash != hash {
			hash = s.BurnTxHash
			out(w, "Submitted %s, waiting for confirmation\n", shorten(hash))
		}
		if s.ToastSeq != toastSeq {
			toastSeq = s.ToastSeq
			output.WriteToast(w, s.Toast)
		}
	}
}

// amountCmd validates an amount the way the burn form does.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var amountCmd = &cobra.Command{
	Use:   "amount <value>",
	Short: "Check a burn amount",
	Long: `Check an amount the way the burn form does and print it in base units.

Non-numeric input is rejected, as is zero, a negative value or more
fractional digits than the token has (burn.decimals).`,
	Example: `  tokenmigrate amount 1.5
  tokenmigrate amount 0.000000000000000001 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runAmount,
}

// AmountResult is the result of the amount command.
type AmountResult struct {
	Input     string `json:"input"`
	Numeric   bool   `json:"numeric"`
	BaseUnits string `json:"base_units,omitempty"`
	Decimals  int32  `json:"decimals"`
}

// RenderText prints the base units.
func (r AmountResult) RenderText(w io.Writer) error {
	out(w, "%s = %s base units (%d decimals)\n", r.Input, r.BaseUnits, r.Decimals)
	return nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(amountCmd)
	amountCmd.GroupID = "migrate"
}

func runAmount(_ *cobra.Command, args []string) error {
	decimals := cmdCtx.Config.TokenDecimals()
	res := AmountResult{
		Input:    args[0],
		Numeric:  chain.IsNumeric(args[0]),
		Decimals: decimals,
	}
	if !res.Numeric {
		return migrateerr.WithDetails(migrateerr.ErrInvalidAmount, map[string]string{"amount": args[0]})
	}

	units, err := chain.ParseUnits(args[0], decimals)
	if err != nil {
		return err
	}
	res.BaseUnits = units.String()
	return formatter.Print(res)
}
