package dashboard

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/chain/evm"
	"github.com/mrz1836/tokenmigrate/internal/config"
	"github.com/mrz1836/tokenmigrate/internal/metrics"
	"github.com/mrz1836/tokenmigrate/internal/output"
	"github.com/mrz1836/tokenmigrate/internal/price"
	"github.com/mrz1836/tokenmigrate/internal/supply"
	"github.com/mrz1836/tokenmigrate/internal/telemetry"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// DefaultBurnTimeout bounds a burn from submission to confirmation.
const DefaultBurnTimeout = 5 * time.Minute

// WalletContext is the wallet the page works with.
type WalletContext interface {
	IsConnected() bool
	Address() string
	Chain() chain.Chain
	Chains() []chain.Chain
	SwitchChain(chainID uint64) (chain.Chain, error)
	Balance() *big.Int
	BalanceError() error
	OpenChainModal()
	OpenConnectModal()
	Signer() (evm.Signer, error)
}

// PriceSource fetches market data for the token.
type PriceSource interface {
	FetchCoinData(ctx context.Context) (*price.CoinData, error)
}

// SupplySource reads token supplies for a network mode.
type SupplySource interface {
	Fetch(ctx context.Context, mode chain.NetworkMode) (supply.State, error)
}

// AddressResolver maps a chain and token kind to a contract address.
type AddressResolver interface {
	FetchAddressForChain(chainID uint64, kind config.TokenKind) (string, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Table     *chain.Table
	Wallet    WalletContext
	Scanner   TxScanner
	Prices    PriceSource
	Supplies  SupplySource
	Addresses AddressResolver
	Contracts ContractBinder
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMetrics sets the metrics sink. The default is metrics.Global.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithDecimals sets the token decimals used to parse burn amounts.
func WithDecimals(d int32) Option {
	return func(c *Controller) { c.decimals = d }
}

// WithBurnTimeout bounds how long ExecuteBurn waits for confirmation.
func WithBurnTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.burnTimeout = d
		}
	}
}

// WithObserver registers fn to receive every published state. Observers run
// synchronously on the goroutine that dispatched the action.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// Controller owns the page state and runs the page operations.
type Controller struct {
	deps        Deps
	log         *zap.Logger
	metrics     *metrics.Metrics
	decimals    int32
	burnTimeout time.Duration
	observers   []func(State)

	mu            sync.Mutex
	state         State
	cancelRefresh context.CancelFunc
}

// New creates a controller in the initial state.
func New(deps Deps, opts ...Option) *Controller {
	c := &Controller{
		deps:        deps,
		log:         zap.NewNop(),
		metrics:     metrics.Global,
		decimals:    chain.TokenDecimals,
		burnTimeout: DefaultBurnTimeout,
		state:       InitialState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies an action and publishes the resulting state.
func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	next := c.applyLocked(a)
	c.mu.Unlock()
	c.publish(next)
	return next
}

func (c *Controller) applyLocked(a Action) State {
	c.state = Reduce(c.state, a)
	return c.state
}

func (c *Controller) publish(s State) {
	for _, fn := range c.observers {
		fn(s)
	}
}

// Start loads everything the page shows: market data, supplies for the
// wallet's network mode and the burn history. Failures are logged and
// leave the affected data empty; they are also returned joined so callers
// can report them.
func (c *Controller) Start(ctx context.Context) error {
	c.SyncWallet()
	if c.State().SuppliesChain.ID == 0 {
		c.Dispatch(SuppliesChainSelected{Chain: c.deps.Wallet.Chain()})
	}

	var wg sync.WaitGroup
	var coinErr, supErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		coinErr = c.LoadCoinData(ctx)
	}()
	go func() {
		defer wg.Done()
		supErr = c.RefreshSupplies(ctx)
	}()
	txErr := c.reload(ctx, ChainSelected{Chain: c.deps.Wallet.Chain()})
	wg.Wait()

	return errors.Join(coinErr, supErr, txErr)
}

// SyncWallet copies the wallet context into the page state.
func (c *Controller) SyncWallet() State {
	w := c.deps.Wallet
	return c.Dispatch(WalletUpdated{Wallet: WalletView{
		Address:      w.Address(),
		Connected:    w.IsConnected(),
		Balance:      w.Balance(),
		BalanceError: w.BalanceError() != nil,
	}})
}

// SelectChain switches the wallet to chainID and reloads the burn history
// for its network mode. A refresh still running for the previous chain is
// canceled and its result discarded.
func (c *Controller) SelectChain(ctx context.Context, chainID uint64) error {
	ch, err := c.deps.Wallet.SwitchChain(chainID)
	if err != nil {
		return err
	}
	c.SyncWallet()
	return c.reload(ctx, ChainSelected{Chain: ch})
}

// ToggleTokenKind flips the stats panel between the old and new token and
// reloads the burn history.
func (c *Controller) ToggleTokenKind(ctx context.Context) error {
	return c.reload(ctx, TokenKindToggled{})
}

// reload starts a new refresh generation with a and runs it.
func (c *Controller) reload(ctx context.Context, a Action) error {
	c.mu.Lock()
	if c.cancelRefresh != nil {
		c.cancelRefresh()
	}
	rctx, cancel := context.WithCancel(ctx)
	c.cancelRefresh = cancel
	next := c.applyLocked(a)
	c.mu.Unlock()
	defer cancel()

	c.publish(next)
	if next.Chain.ID == 0 {
		return nil
	}
	return c.refresh(rctx, next.Generation, next.Mode)
}

// RefetchTransactions reloads the burn history for the current network
// mode without starting a new generation.
func (c *Controller) RefetchTransactions(ctx context.Context) error {
	s := c.State()
	return c.refresh(ctx, s.Generation, s.Mode)
}

func (c *Controller) refresh(ctx context.Context, gen uint64, mode chain.NetworkMode) error {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.refresh_transactions",
		attribute.String("mode", mode.String()),
		attribute.Int64("generation", int64(gen)), //nolint:gosec // generation never exceeds int64
	)
	txs, err := Aggregate(ctx, c.deps.Scanner, mode)
	telemetry.End(span, err)

	if err != nil {
		if ctx.Err() != nil && c.isStale(gen) {
			c.metrics.RecordStaleResult()
			c.log.Debug("refresh superseded", zap.Uint64("generation", gen))
			return nil
		}
		c.log.Error("refreshing burn transactions",
			zap.String("mode", mode.String()),
			zap.Error(err),
		)
		return err
	}

	c.mu.Lock()
	stale := gen != c.state.Generation
	next := c.applyLocked(TransactionsLoaded{Generation: gen, Transactions: txs})
	c.mu.Unlock()

	if stale {
		c.metrics.RecordStaleResult()
		c.log.Debug("discarding stale burn transactions",
			zap.Uint64("generation", gen),
			zap.Int("count", len(txs)),
		)
		return nil
	}
	c.publish(next)
	c.log.Info("burn transactions loaded",
		zap.String("mode", mode.String()),
		zap.Int("count", len(txs)),
	)
	return nil
}

func (c *Controller) isStale(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen != c.state.Generation
}

// OnChangeBurnAmount handles input to the amount field. An empty value
// clears it, a non-numeric value is ignored and leaves the previous amount
// in place. It reports whether the value was accepted.
func (c *Controller) OnChangeBurnAmount(value string) bool {
	if value != "" && !chain.IsNumeric(value) {
		return false
	}
	c.Dispatch(AmountChanged{Amount: value})
	return true
}

// ShowToast raises a notification.
func (c *Controller) ShowToast(message string, severity output.Severity) {
	c.Dispatch(ToastShown{Toast: output.Toast{Message: message, Severity: severity}})
}

// ExecuteBurn burns the entered amount of the new token on the wallet's
// chain and waits for confirmation.
//
// A disconnected wallet gets a connect request and nothing is submitted.
// A missing or invalid amount raises a warning toast. Once submission
// starts, any failure resets the button and raises a single error toast;
// success resets the button and refreshes the burn history and supplies.
func (c *Controller) ExecuteBurn(ctx context.Context) error {
	if !c.deps.Wallet.IsConnected() {
		c.deps.Wallet.OpenConnectModal()
		return migrateerr.ErrWalletNotConnected
	}

	s := c.State()
	amount, err := chain.ParseUnits(s.BurnAmount, c.decimals)
	if err != nil {
		c.ShowToast(MsgEnterAmount, output.SeverityWarning)
		return err
	}

	// The token is resolved on the wallet's chain, which the page state
	// only learns about once a refresh has run.
	ch := c.deps.Wallet.Chain()
	if s.Chain.ID != ch.ID {
		c.Dispatch(ChainSelected{Chain: ch})
	}

	c.mu.Lock()
	if c.state.TxProgress {
		c.mu.Unlock()
		return migrateerr.ErrBurnInProgress
	}
	started := c.applyLocked(BurnStarted{})
	c.mu.Unlock()
	c.publish(started)

	err = c.submitBurn(ctx, ch, amount)
	c.metrics.RecordBurnResult(err)
	if err != nil {
		c.Dispatch(BurnFailed{})
		c.log.Error("burn failed",
			zap.Uint64("chain_id", ch.ID),
			zap.String("amount", s.BurnAmount),
			zap.Error(err),
		)
		return migrateerr.WithCause(migrateerr.ErrBurnFailed, err)
	}

	c.Dispatch(BurnFinished{})
	c.log.Info("burn confirmed",
		zap.Uint64("chain_id", ch.ID),
		zap.String("hash", c.State().BurnTxHash),
	)

	if err := c.RefetchTransactions(ctx); err != nil {
		c.log.Error("refreshing after burn", zap.Error(err))
	}
	if err := c.RefreshSupplies(ctx); err != nil {
		c.log.Error("refreshing supplies after burn", zap.Error(err))
	}
	return nil
}

func (c *Controller) submitBurn(ctx context.Context, ch chain.Chain, amount *big.Int) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.burnTimeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "dashboard.execute_burn",
		attribute.String("chain", ch.Key),
		attribute.String("amount", amount.String()),
	)
	defer func() { telemetry.End(span, err) }()

	address, err := c.deps.Addresses.FetchAddressForChain(ch.ID, config.NewToken)
	if err != nil {
		return err
	}
	signer, err := c.deps.Wallet.Signer()
	if err != nil {
		return err
	}
	contract, err := c.deps.Contracts.Bind(ctx, ch.ID, address)
	if err != nil {
		return err
	}

	pending, err := contract.Burn(ctx, signer, amount)
	if err != nil {
		return err
	}
	hash := pending.Hash().Hex()
	c.Dispatch(BurnHashRecorded{Hash: hash})
	c.log.Info("burn submitted", zap.String("hash", hash), zap.String("chain", ch.Key))

	_, err = pending.Wait(ctx)
	return err
}

// LoadCoinData fetches the market data snapshot. On failure the data stays
// empty and the error is logged.
func (c *Controller) LoadCoinData(ctx context.Context) error {
	data, err := c.deps.Prices.FetchCoinData(ctx)
	if err != nil {
		c.log.Error("loading coin data", zap.Error(err))
		return err
	}
	c.Dispatch(CoinDataLoaded{Data: data.MarketData})
	return nil
}

// RefreshSupplies reloads the supplies of the current network mode. On
// failure the previous figures are kept.
func (c *Controller) RefreshSupplies(ctx context.Context) error {
	mode := chain.ModeFor(c.deps.Wallet.Chain().ID)
	st, err := c.deps.Supplies.Fetch(ctx, mode)
	if err != nil {
		c.log.Error("loading supplies", zap.String("mode", mode.String()), zap.Error(err))
		return err
	}
	c.Dispatch(SuppliesLoaded{Supplies: st})
	return nil
}

// SetSuppliesChain picks the chain shown in the stats panel.
func (c *Controller) SetSuppliesChain(chainID uint64) error {
	ch, ok := c.deps.Table.Lookup(chainID)
	if !ok {
		return migrateerr.WithDetails(migrateerr.ErrUnknownChain, map[string]string{
			"chain_id": strconv.FormatUint(chainID, 10),
		})
	}
	c.Dispatch(SuppliesChainSelected{Chain: ch})
	return nil
}

// SetChainSelectorOpen opens or closes the supplies chain selector.
func (c *Controller) SetChainSelectorOpen(open bool) {
	c.Dispatch(ChainSelectorToggled{Open: open})
}

// SelectorChains lists the chains offered by the supplies chain selector.
func (c *Controller) SelectorChains() []chain.Chain {
	return c.deps.Wallet.Chains()
}

// TokenAddress returns the address of the selected token kind on the
// supplies chain.
func (c *Controller) TokenAddress() (string, error) {
	s := c.State()
	return c.deps.Addresses.FetchAddressForChain(s.SuppliesChain.ID, s.TokenKind())
}
