package collector

import (
	"sync"
	"time"

	"TrendSentinel/internal/model"
)

// BarCache memoizes the bars of the active symbol. Requesting a different
// symbol, or reading after the TTL, invalidates the entry.
type BarCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	symbol    string
	bars      []model.Bar
	fetchedAt time.Time
}

// NewBarCache creates a cache. A ttl <= 0 keeps entries until the symbol changes.
func NewBarCache(ttl time.Duration) *BarCache {
	return &BarCache{ttl: ttl, now: time.Now}
}

// Get returns the cached bars for symbol if they are still valid.
func (c *BarCache) Get(symbol string) ([]model.Bar, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bars == nil || c.symbol != symbol {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(c.fetchedAt) > c.ttl {
		c.invalidateLocked()
		return nil, false
	}
	return c.bars, true
}

// Put replaces the cached entry.
func (c *BarCache) Put(symbol string, bars []model.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symbol = symbol
	c.bars = bars
	c.fetchedAt = c.now()
}

// Invalidate drops the cached entry.
func (c *BarCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *BarCache) invalidateLocked() {
	c.symbol = ""
	c.bars = nil
	c.fetchedAt = time.Time{}
}

// Symbol returns the symbol currently held, or "".
func (c *BarCache) Symbol() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.symbol
}
