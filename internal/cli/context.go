package cli

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/cache"
	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	"github.com/mrz1836/tokenmigrate/internal/chain/explorer"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/dashboard"
	"github.com/mrz1836/tokenmigrate/internal/metrics"
	"github.com/mrz1836/tokenmigrate/internal/output"
	"github.com/mrz1836/tokenmigrate/internal/price"
	"github.com/mrz1836/tokenmigrate/internal/supply"
	"github.com/mrz1836/tokenmigrate/internal/wallet"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

const (
	// fetchTimeout bounds read-only commands.
	fetchTimeout = 60 * time.Second
	// burnGrace is added to the configured burn timeout for the refreshes
	// that follow a confirmed burn.
	burnGrace = 30 * time.Second

	tracingShutdownTimeout = 5 * time.Second
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Table     *chain.Table

	dialerOnce sync.Once
	dialer     *evm.Dialer
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) *CommandContext {
	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Formatter: formatter,
		Table:     cfg.Table(),
	}
}

// Dialer returns the shared RPC dialer.
func (c *CommandContext) Dialer() *evm.Dialer {
	c.dialerOnce.Do(func() {
		c.dialer = evm.NewDialer(c.Table)
	})
	return c.dialer
}

// Close releases open RPC connections.
func (c *CommandContext) Close() {
	if c.dialer != nil {
		c.dialer.Close()
	}
}

// ResolveChain resolves a --chain value, falling back to wallet.chain.
func (c *CommandContext) ResolveChain(flag string) (chain.Chain, error) {
	name := strings.TrimSpace(flag)
	if name == "" {
		name = c.Config.Wallet.Chain
	}
	ch, ok := c.Table.Parse(name)
	if ok {
		return ch, nil
	}

	err := migrateerr.WithDetails(migrateerr.ErrUnknownChain, map[string]string{"chain": name})
	if s := c.Table.Suggest(name); s != "" {
		return chain.Chain{}, migrateerr.WithSuggestion(err, "did you mean '"+s+"'?")
	}
	return chain.Chain{}, migrateerr.WithSuggestion(err, "run 'tokenmigrate chains' to list supported chains")
}

// Scanner returns a block explorer scanner over the new token.
func (c *CommandContext) Scanner() *explorer.Scanner {
	rate := c.Config.Explorer.RateLimit
	client := explorer.NewClient(c.Config.Explorer.APIKey, &explorer.ClientOptions{
		RateLimiter: chain.NewRateLimiter(rate, max(1, int(rate))),
	})
	return explorer.NewScanner(client, c.Table, c.Config.ContractResolver(config.NewToken), c.Config.Explorer.PageSize)
}

// Prices returns the market data source. Without a configured coin every
// fetch fails with a configuration error.
func (c *CommandContext) Prices() dashboard.PriceSource {
	client, err := price.NewClient(c.Config.Price.CoinID, &price.ClientOptions{
		BaseURL: c.Config.Price.BaseURL,
		APIKey:  c.Config.Price.APIKey,
	})
	if err != nil {
		return unavailablePrices{err: migrateerr.WithSuggestion(err, "set price.coin_id in config.yaml or "+config.EnvCoinID)}
	}
	storage := cache.NewFileStorage(c.Config.CachePath())
	return cache.NewCachedPrices(c.Config.Price.CoinID, client, storage, c.Config.PriceCacheAge())
}

type unavailablePrices struct{ err error }

func (u unavailablePrices) FetchCoinData(context.Context) (*price.CoinData, error) {
	return nil, u.err
}

// Wallet builds the wallet context on ch. When requireKey is false a
// missing key yields a disconnected wallet instead of an error.
func (c *CommandContext) Wallet(ch chain.Chain, requireKey bool) (*wallet.Wallet, error) {
	w := wallet.New(c.Table, c.Dialer(), ch,
		wallet.WithChainModal(func() {
			output.Warn("Switch chains with --chain <key>; see 'tokenmigrate chains'")
		}),
		wallet.WithConnectModal(func() {
			output.Warn("No wallet connected: set " + config.EnvPrivateKey + ", " + config.EnvMnemonic + ", or wallet.keystore in config.yaml")
		}),
	)

	signer, err := wallet.LoadSigner(wallet.Sources{
		HexKey:       os.Getenv(config.EnvPrivateKey),
		Mnemonic:     os.Getenv(config.EnvMnemonic),
		Passphrase:   os.Getenv(config.EnvPassphrase),
		AccountIndex: c.Config.Wallet.AccountIndex,
		AgeFile:      config.ExpandHome(c.Config.Wallet.AgeKey),
		Keystore:     config.ExpandHome(c.Config.Wallet.Keystore),
	}, walletPassword)
	switch {
	case err == nil:
		w.Connect(signer)
	case requireKey && !migrateerr.Is(err, migrateerr.ErrWalletNotConnected):
		return nil, err
	case !migrateerr.Is(err, migrateerr.ErrWalletNotConnected):
		c.Logger.Error("wallet not loaded: %v", err)
	}
	return w, nil
}

// Controller wires a dashboard controller for w.
func (c *CommandContext) Controller(w *wallet.Wallet, opts ...dashboard.Option) *dashboard.Controller {
	decimals := c.Config.TokenDecimals()
	deps := dashboard.Deps{
		Table:     c.Table,
		Wallet:    w,
		Scanner:   c.Scanner(),
		Prices:    c.Prices(),
		Supplies:  supply.NewFetcher(c.Table, c.Config, c.Dialer(), decimals),
		Addresses: c.Config,
		Contracts: dashboard.EVMBinder{Backends: c.Dialer(), PollInterval: c.Config.BurnPollInterval()},
	}
	base := []dashboard.Option{
		dashboard.WithLogger(c.Logger.Zap()),
		dashboard.WithMetrics(metrics.Global),
		dashboard.WithDecimals(decimals),
		dashboard.WithBurnTimeout(c.Config.BurnTimeout()),
	}
	return dashboard.New(deps, append(base, opts...)...)
}

// contextWithTimeout returns a timeout context rooted in the command context.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	return context.WithTimeout(base, d)
}
