package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/output"
)

// ChainRow is one supported chain with its configured token contracts.
type ChainRow struct {
	ID       uint64 `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Mode     string `json:"mode"`
	Native   string `json:"native_symbol"`
	RPC      string `json:"rpc_url"`
	OldToken string `json:"old_token,omitempty"`
	NewToken string `json:"new_token,omitempty"`
	Current  bool   `json:"current"`
}

// ChainsView is the result of the chains command.
type ChainsView struct {
	Chains []ChainRow `json:"chains"`
}

func newChainsView(table *chain.Table, cfg *config.Config, current chain.Chain) ChainsView {
	var v ChainsView
	for _, c := range table.All() {
		row := ChainRow{
			ID:      c.ID,
			Key:     c.Key,
			Name:    c.Name,
			Mode:    chain.ModeFor(c.ID).String(),
			Native:  c.NativeSymbol,
			RPC:     c.RPCURL,
			Current: c.ID == current.ID,
		}
		row.OldToken, _ = cfg.FetchAddressForChain(c.ID, config.OldToken)
		row.NewToken, _ = cfg.FetchAddressForChain(c.ID, config.NewToken)
		v.Chains = append(v.Chains, row)
	}
	return v
}

// RenderText prints the chain table. The wallet chain is marked with '*'.
func (v ChainsView) RenderText(w io.Writer) error {
	tbl := output.NewTable("", "ID", "KEY", "NAME", "MODE", "NATIVE", "OLD TOKEN", "NEW TOKEN").AlignRight(1)
	for _, r := range v.Chains {
		marker := ""
		if r.Current {
			marker = "*"
		}
		tbl.AddRow(
			marker,
			strconv.FormatUint(r.ID, 10),
			r.Key,
			r.Name,
			r.Mode,
			r.Native,
			orDash(shorten(r.OldToken)),
			orDash(shorten(r.NewToken)),
		)
	}
	return tbl.Render(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// chainsCmd lists the supported chains.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains",
	Long: `List every chain the dashboard knows, grouped by network mode, with the
configured old and new token contracts. The chain the wallet starts on
(wallet.chain) is marked with '*'.`,
	Example: `  tokenmigrate chains
  tokenmigrate chains -o json`,
	RunE: runChains,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(chainsCmd)
	chainsCmd.GroupID = "dashboard"
}

func runChains(_ *cobra.Command, _ []string) error {
	current, err := cmdCtx.ResolveChain("")
	if err != nil {
		return err
	}
	return formatter.Print(newChainsView(cmdCtx.Table, cmdCtx.Config, current))
}
