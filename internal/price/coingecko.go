// Package price fetches market data for the migration token from CoinGecko.
package price

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	"github.com/mrz1836/tokenmigrate/internal/metrics"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

const (
	// DefaultBaseURL is the public CoinGecko API.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	httpTimeout     = 15 * time.Second
	maxResponseBody = 2 << 20
)

// ErrAPIError indicates CoinGecko returned an unexpected response.
var ErrAPIError = &migrateerr.MigrateError{
	Code:     "PRICE_API_ERROR",
	Message:  "price service returned an error",
	ExitCode: migrateerr.ExitGeneral,
}

// CoinData is the subset of the /coins/{id} response the dashboard uses.
type CoinData struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Name       string     `json:"name"`
	MarketData MarketData `json:"market_data"`
}

// MarketData is a market snapshot. Currency maps are keyed by lowercase
// currency code; a missing key means the value is unknown.
type MarketData struct {
	CurrentPrice             map[string]float64 `json:"current_price"`
	MarketCap                map[string]float64 `json:"market_cap"`
	TotalVolume              map[string]float64 `json:"total_volume"`
	PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
	CirculatingSupply        float64            `json:"circulating_supply"`
	TotalSupply              float64            `json:"total_supply"`
	LastUpdated              time.Time          `json:"last_updated"`
}

// USD returns the current USD price. ok is false when the price is unknown,
// which is not the same as a price of zero.
func (m MarketData) USD() (price float64, ok bool) {
	price, ok = m.CurrentPrice["usd"]
	return price, ok
}

// MarketCapUSD returns the USD market cap, if known.
func (m MarketData) MarketCapUSD() (float64, bool) {
	v, ok := m.MarketCap["usd"]
	return v, ok
}

// Client is a CoinGecko API client bound to one coin.
type Client struct {
	coinID      string
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *chain.RateLimiter
}

// ClientOptions configures the price client.
type ClientOptions struct {
	// BaseURL overrides the CoinGecko API URL (useful for testing).
	BaseURL string
	// APIKey is sent as the demo API key header when set.
	APIKey string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
}

// NewClient creates a price client for coinID.
func NewClient(coinID string, opts *ClientOptions) (*Client, error) {
	coinID = strings.TrimSpace(coinID)
	if coinID == "" {
		return nil, migrateerr.WithDetails(migrateerr.ErrConfigInvalid, map[string]string{
			"field": "price.coin_id",
		})
	}

	c := &Client{
		coinID:  coinID,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		// Public tier allows roughly 30 calls per minute.
		rateLimiter: chain.NewRateLimiter(0.5, 2),
	}

	if opts != nil {
		if opts.BaseURL != "" {
			c.baseURL = strings.TrimSuffix(opts.BaseURL, "/")
		}
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		c.apiKey = opts.APIKey
	}

	return c, nil
}

// FetchCoinData returns the current market data for the client's coin.
func (c *Client) FetchCoinData(ctx context.Context) (*CoinData, error) {
	start := time.Now()
	data, err := c.fetch(ctx)
	metrics.Global.RecordCall(metrics.SourcePrice, time.Since(start), err)
	return data, err
}

func (c *Client) fetch(ctx context.Context) (*CoinData, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if err := c.rateLimiter.Wait(ctx, base.Host); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	reqURL := fmt.Sprintf("%s/coins/%s?%s", c.baseURL, url.PathEscape(c.coinID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL is built from config, not user input
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.ErrNetworkError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, migrateerr.WithDetails(migrateerr.ErrNotFound, map[string]string{"coin": c.coinID})
	case http.StatusTooManyRequests:
		return nil, chain.ErrRateLimited
	default:
		return nil, migrateerr.WithDetails(ErrAPIError, map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
		})
	}

	var data CoinData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, migrateerr.WithCause(ErrAPIError, fmt.Errorf("parsing response: %w", err))
	}
	return &data, nil
}
