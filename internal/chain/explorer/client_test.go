package explorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tokenmigrate/internal/chain"
	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

const testContract = "0x1111111111111111111111111111111111111111"

func testClient(apiKey string) *Client {
	return NewClient(apiKey, &ClientOptions{
		RateLimiter: chain.NewRateLimiter(0, 0),
		Retry:       &chain.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	})
}

func testChain(serverURL string) chain.Chain {
	return chain.Chain{ID: chain.SepoliaID, Key: "sepolia", Name: "Sepolia", ExplorerAPI: serverURL + "/v2"}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		c := NewClient("", nil)
		assert.NotNil(t, c.httpClient)
		assert.NotNil(t, c.rateLimiter)
		assert.Equal(t, chain.DefaultRetryPolicy(), c.retry)
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()
		httpClient := &http.Client{Timeout: 5 * time.Second}
		c := NewClient("key", &ClientOptions{HTTPClient: httpClient})
		assert.Equal(t, httpClient, c.httpClient)
		assert.Equal(t, "key", c.apiKey)
	})
}

func TestTokenTransfers(t *testing.T) {
	t.Parallel()

	t.Run("sends tokentx query and decodes result", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "/v2/api", r.URL.Path)
			assert.Equal(t, "account", q.Get("module"))
			assert.Equal(t, "tokentx", q.Get("action"))
			assert.Equal(t, testContract, q.Get("contractaddress"))
			assert.Equal(t, "11155111", q.Get("chainid"))
			assert.Equal(t, "desc", q.Get("sort"))
			assert.Equal(t, "25", q.Get("offset"))
			assert.Equal(t, "test-key", q.Get("apikey"))
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			writeJSON(t, w, map[string]any{
				"status":  "1",
				"message": "OK",
				"result": []map[string]string{{
					"hash":      "0xabc",
					"from":      "0xfrom",
					"to":        DeadAddress,
					"value":     "1000000000000000000",
					"timeStamp": "1700000000",
				}},
			})
		}))
		defer server.Close()

		txs, err := testClient("test-key").TokenTransfers(context.Background(), testChain(server.URL), testContract, 25)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "0xabc", txs[0].Hash)
		assert.Equal(t, int64(1700000000), txs[0].Unix())
	})

	t.Run("no key means no auth header", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Empty(t, r.URL.Query().Get("apikey"))
			assert.Equal(t, "100", r.URL.Query().Get("offset"))
			writeJSON(t, w, map[string]any{"status": "1", "message": "OK", "result": []any{}})
		}))
		defer server.Close()

		txs, err := testClient("").TokenTransfers(context.Background(), testChain(server.URL), testContract, 0)
		require.NoError(t, err)
		assert.Empty(t, txs)
		assert.NotNil(t, txs)
	})

	t.Run("no transactions found is empty", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, map[string]any{"status": "0", "message": "No transactions found", "result": []any{}})
		}))
		defer server.Close()

		txs, err := testClient("k").TokenTransfers(context.Background(), testChain(server.URL), testContract, 10)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("api error", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, map[string]any{"status": "0", "message": "NOTOK", "result": "Invalid API Key"})
		}))
		defer server.Close()

		_, err := testClient("bad").TokenTransfers(context.Background(), testChain(server.URL), testContract, 10)
		require.ErrorIs(t, err, ErrAPIError)
		assert.Contains(t, err.Error(), "Invalid API Key")
		assert.Contains(t, err.Error(), "Sepolia")
	})

	t.Run("http error status", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}))
		defer server.Close()

		_, err := testClient("k").TokenTransfers(context.Background(), testChain(server.URL), testContract, 10)
		require.ErrorIs(t, err, ErrAPIError)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		defer server.Close()

		_, err := testClient("k").TokenTransfers(context.Background(), testChain(server.URL), testContract, 10)
		require.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("retries on 429 then succeeds", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeJSON(t, w, map[string]any{"status": "1", "message": "OK", "result": []map[string]string{{"hash": "0x1"}}})
		}))
		defer server.Close()

		txs, err := testClient("k").TokenTransfers(context.Background(), testChain(server.URL), testContract, 10)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("rate limit message exhausts retries", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			writeJSON(t, w, map[string]any{"status": "0", "message": "NOTOK", "result": "Max rate limit reached"})
		}))
		defer server.Close()

		_, err := testClient("k").TokenTransfers(context.Background(), testChain(server.URL), testContract, 10)
		require.ErrorIs(t, err, chain.ErrRateLimited)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("invalid explorer base", func(t *testing.T) {
		t.Parallel()
		ch := chain.Chain{ID: 1, Name: "Broken", ExplorerAPI: "not a url"}
		_, err := testClient("k").TokenTransfers(context.Background(), ch, testContract, 10)
		require.ErrorIs(t, err, migrateerr.ErrConfigInvalid)
	})
}

func TestTruncateBody(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", truncateBody("short", 10))
	assert.Equal(t, "abc...", truncateBody("abcdef", 3))
}
