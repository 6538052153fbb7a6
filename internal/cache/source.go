package cache

import (
	"context"
	"time"

	"github.com/mrz1836/tokenmigrate/internal/price"
)

// pruneAge drops snapshots of coins that are no longer queried.
const pruneAge = time.Hour

// Fetcher is the upstream market data source.
type Fetcher interface {
	FetchCoinData(ctx context.Context) (*price.CoinData, error)
}

// CachedPrices serves market data from disk while it is younger than
// maxAge and falls through to the upstream source otherwise.
type CachedPrices struct {
	coinID  string
	src     Fetcher
	storage *FileStorage
	maxAge  time.Duration
}

// NewCachedPrices wraps src with a file cache at storage. A non-positive
// maxAge disables the cache and every call goes upstream.
func NewCachedPrices(coinID string, src Fetcher, storage *FileStorage, maxAge time.Duration) *CachedPrices {
	return &CachedPrices{coinID: coinID, src: src, storage: storage, maxAge: maxAge}
}

// FetchCoinData returns a fresh cached snapshot or fetches a new one.
// Cache read and write failures never fail the fetch.
func (p *CachedPrices) FetchCoinData(ctx context.Context) (*price.CoinData, error) {
	if p.maxAge <= 0 {
		return p.src.FetchCoinData(ctx)
	}

	mc, err := p.storage.Load()
	if err != nil {
		mc = NewMarketCache()
	}
	if entry, ok, age := mc.Get(p.coinID); ok && age <= p.maxAge {
		data := entry.Data
		return &data, nil
	}

	data, err := p.src.FetchCoinData(ctx)
	if err != nil {
		return nil, err
	}

	mc.Prune(pruneAge)
	mc.Set(p.coinID, *data)
	_ = p.storage.Save(mc)

	return data, nil
}
