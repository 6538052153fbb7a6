package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/price"
)

// PriceView is the market data snapshot printed by the price command.
type PriceView struct {
	CoinID            string   `json:"coin_id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	PriceUSD          *float64 `json:"price_usd,omitempty"`
	MarketCapUSD      *float64 `json:"market_cap_usd,omitempty"`
	VolumeUSD         *float64 `json:"volume_usd,omitempty"`
	Change24h         float64  `json:"price_change_24h"`
	CirculatingSupply float64  `json:"circulating_supply"`
	TotalSupply       float64  `json:"total_supply"`
	LastUpdated       string   `json:"last_updated,omitempty"`
}

func newPriceView(data *price.CoinData) PriceView {
	md := data.MarketData
	v := PriceView{
		CoinID:            data.ID,
		Symbol:            data.Symbol,
		Name:              data.Name,
		Change24h:         md.PriceChangePercentage24h,
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
	}
	if !md.LastUpdated.IsZero() {
		v.LastUpdated = md.LastUpdated.UTC().Format(time.RFC3339)
	}
	if p, ok := md.USD(); ok {
		v.PriceUSD = &p
	}
	if mc, ok := md.MarketCapUSD(); ok {
		v.MarketCapUSD = &mc
	}
	if vol, ok := md.TotalVolume["usd"]; ok {
		v.VolumeUSD = &vol
	}
	return v
}

// RenderText prints the market data.
func (v PriceView) RenderText(w io.Writer) error {
	out(w, "%s (%s)\n", v.Name, v.Symbol)
	out(w, "  Price:        %s\n", optionalUSD(v.PriceUSD))
	out(w, "  24h change:   %+.2f%%\n", v.Change24h)
	out(w, "  Market cap:   %s\n", optionalUSD(v.MarketCapUSD))
	out(w, "  Volume (24h): %s\n", optionalUSD(v.VolumeUSD))
	out(w, "  Circulating:  %.0f\n", v.CirculatingSupply)
	out(w, "  Total supply: %.0f\n", v.TotalSupply)
	if v.LastUpdated != "" {
		out(w, "  Updated:      %s\n", v.LastUpdated)
	}
	return nil
}

func optionalUSD(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return formatUSD(*v)
}

// priceCmd prints market data for the token.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show market data for the token",
	Long: `Fetch the current market data of the configured coin (price.coin_id) from
CoinGecko. A missing USD price is shown as n/a, never as zero.`,
	Example: `  tokenmigrate price
  tokenmigrate price -o json`,
	RunE: runPrice,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(priceCmd)
	priceCmd.GroupID = "dashboard"
}

func runPrice(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd, 30*time.Second)
	defer cancel()

	data, err := cmdCtx.Prices().FetchCoinData(ctx)
	if err != nil {
		return err
	}
	return formatter.Print(newPriceView(data))
}
