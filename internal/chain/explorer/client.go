// Package explorer provides an Etherscan v2 compatible block explorer client
// used to list token transfers across every chain of a network mode.
package explorer

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
	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 30 * time.Second

	// maxResponseBody is the maximum response body size to read (4 MB).
	maxResponseBody = 4 << 20

	// noTransactions is the explorer's status "0" message for an empty result.
	noTransactions = "No transactions found"
)

// Sentinel errors for explorer API calls.
var (
	// ErrAPIError indicates the explorer returned an error response.
	ErrAPIError = &migrateerr.MigrateError{
		Code:     "EXPLORER_API_ERROR",
		Message:  "block explorer returned an error",
		ExitCode: migrateerr.ExitGeneral,
	}

	// ErrBadResponse indicates the explorer response could not be decoded.
	ErrBadResponse = &migrateerr.MigrateError{
		Code:     "EXPLORER_BAD_RESPONSE",
		Message:  "block explorer response could not be parsed",
		ExitCode: migrateerr.ExitGeneral,
	}
)

// apiResponse is the Etherscan response envelope. Result is an array on
// success and a string message on failure.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Client is a block explorer API client. One client serves every chain;
// the chain ID travels with each request.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	rateLimiter *chain.RateLimiter
	retry       chain.RetryPolicy
}

// ClientOptions configures the explorer client.
type ClientOptions struct {
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimiter overrides the default limiter (5 req/s per host).
	RateLimiter *chain.RateLimiter
	// Retry overrides the retry policy used for rate-limited responses.
	Retry *chain.RetryPolicy
}

// NewClient creates a new explorer client. An empty API key is allowed;
// keyless requests are subject to much stricter limits upstream.
func NewClient(apiKey string, opts *ClientOptions) *Client {
	c := &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		rateLimiter: chain.DefaultRateLimiter(),
		retry:       chain.DefaultRetryPolicy(),
	}

	if opts != nil {
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		if opts.RateLimiter != nil {
			c.rateLimiter = opts.RateLimiter
		}
		if opts.Retry != nil {
			c.retry = *opts.Retry
		}
	}

	return c
}

// get performs a GET against {apiBase}/api for a chain and returns the raw
// result payload. Rate-limit responses are retried with backoff.
func (c *Client) get(ctx context.Context, apiBase string, chainID uint64, params url.Values) (json.RawMessage, error) {
	base, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(apiBase), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, migrateerr.WithDetails(migrateerr.ErrConfigInvalid, map[string]string{
			"explorer_api": apiBase,
		})
	}

	params.Set("chainid", strconv.FormatUint(chainID, 10))
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	reqURL := fmt.Sprintf("%s/api?%s", base.String(), params.Encode())

	return chain.Retry(ctx, c.retry, func(ctx context.Context) (json.RawMessage, error) {
		start := time.Now()
		result, err := c.doRequest(ctx, base.Host, reqURL)
		metrics.Global.RecordCall(metrics.SourceExplorer, time.Since(start), err)
		return result, err
	})
}

func (c *Client) doRequest(ctx context.Context, host, reqURL string) (json.RawMessage, error) {
	if err := c.rateLimiter.Wait(ctx, host); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq) //nolint:gosec // G704: URL is built from the chain table, not user input
	if err != nil {
		return nil, migrateerr.WithCause(migrateerr.ErrNetworkError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, chain.RateLimitedAfter(chain.ParseRetryAfter(resp.Header.Get("Retry-After")))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, migrateerr.WithDetails(ErrAPIError, map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
			"body":   truncateBody(string(body), 512),
		})
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, migrateerr.WithCause(ErrBadResponse, err)
	}

	if apiResp.Status != "1" {
		var msg string
		_ = json.Unmarshal(apiResp.Result, &msg)
		switch {
		case apiResp.Message == noTransactions || msg == noTransactions:
			return json.RawMessage("[]"), nil
		case strings.Contains(strings.ToLower(msg), "rate limit"):
			return nil, chain.ErrRateLimited
		}
		return nil, migrateerr.WithDetails(ErrAPIError, map[string]string{
			"message": apiResp.Message,
			"result":  truncateBody(msg, 256),
		})
	}

	return apiResp.Result, nil
}

// truncateBody truncates a string to maxLen characters.
func truncateBody(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
