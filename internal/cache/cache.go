// Package cache keeps a small on-disk snapshot of token market data so
// consecutive commands do not hit the price API every time.
package cache

import (
	"sync"
	"time"

	"github.com/mrz1836/tokenmigrate/internal/price"
)

// DefaultStaleness is the default duration after which entries are considered stale.
const DefaultStaleness = time.Minute

// MarketCache stores market data snapshots keyed by coin ID.
type MarketCache struct {
	mu      sync.RWMutex     `json:"-"`
	Entries map[string]Entry `json:"entries"`
}

// Entry is a single cached market snapshot.
type Entry struct {
	CoinID    string         `json:"coin_id"`
	Data      price.CoinData `json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewMarketCache creates a new empty cache.
func NewMarketCache() *MarketCache {
	return &MarketCache{
		Entries: make(map[string]Entry),
	}
}

// Get retrieves the entry for a coin.
// Returns the entry, whether it exists, and its age.
func (c *MarketCache) Get(coinID string) (*Entry, bool, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.Entries[coinID]
	if !exists {
		return nil, false, 0
	}

	return &entry, true, time.Since(entry.UpdatedAt)
}

// Set stores a snapshot for a coin, stamped with the current time.
func (c *MarketCache) Set(coinID string, data price.CoinData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries[coinID] = Entry{
		CoinID:    coinID,
		Data:      data,
		UpdatedAt: time.Now(),
	}
}

// IsStale checks staleness against DefaultStaleness.
func (c *MarketCache) IsStale(coinID string) bool {
	return c.IsStaleWithDuration(coinID, DefaultStaleness)
}

// IsStaleWithDuration reports whether the entry is missing or older than staleness.
func (c *MarketCache) IsStaleWithDuration(coinID string, staleness time.Duration) bool {
	_, exists, age := c.Get(coinID)
	if !exists {
		return true
	}
	return age > staleness
}

// Size returns the number of cache entries.
func (c *MarketCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.Entries)
}

// Prune removes entries older than maxAge and returns how many were removed.
func (c *MarketCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for key, entry := range c.Entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(c.Entries, key)
			removed++
		}
	}

	return removed
}
