package cache

import (
	"sync"
	"time"
)

// PresenceCache is an in-memory L1 cache recording which parent stocks are
// known to exist, by symbol and by id. Series imports consult it to skip
// redundant ensure-parent round trips on files that repeat the same symbol
// thousands of times. Entries expire so externally deleted stocks are
// re-checked eventually.
type PresenceCache struct {
	symbols  map[string]time.Time
	ids      map[int64]time.Time
	symbolMu sync.RWMutex
	idMu     sync.RWMutex
	ttl      time.Duration
}

// NewPresenceCache creates a new presence cache with the given entry TTL
func NewPresenceCache(ttl time.Duration) *PresenceCache {
	return &PresenceCache{
		symbols: make(map[string]time.Time),
		ids:     make(map[int64]time.Time),
		ttl:     ttl,
	}
}

// SeenSymbol reports whether the symbol was marked present and is still fresh
func (c *PresenceCache) SeenSymbol(symbol string) bool {
	c.symbolMu.RLock()
	defer c.symbolMu.RUnlock()

	markedAt, exists := c.symbols[symbol]
	if !exists {
		return false
	}
	return time.Since(markedAt) <= c.ttl
}

// MarkSymbol records that a stock with this symbol exists
func (c *PresenceCache) MarkSymbol(symbol string) {
	c.symbolMu.Lock()
	defer c.symbolMu.Unlock()

	c.symbols[symbol] = time.Now()
}

// SeenID reports whether the stock id was marked present and is still fresh
func (c *PresenceCache) SeenID(id int64) bool {
	c.idMu.RLock()
	defer c.idMu.RUnlock()

	markedAt, exists := c.ids[id]
	if !exists {
		return false
	}
	return time.Since(markedAt) <= c.ttl
}

// MarkID records that a stock with this id exists
func (c *PresenceCache) MarkID(id int64) {
	c.idMu.Lock()
	defer c.idMu.Unlock()

	c.ids[id] = time.Now()
}

// Invalidate removes a symbol from the cache
func (c *PresenceCache) Invalidate(symbol string) {
	c.symbolMu.Lock()
	defer c.symbolMu.Unlock()

	delete(c.symbols, symbol)
}

// Clear removes all cached entries
func (c *PresenceCache) Clear() {
	c.symbolMu.Lock()
	c.symbols = make(map[string]time.Time)
	c.symbolMu.Unlock()

	c.idMu.Lock()
	c.ids = make(map[int64]time.Time)
	c.idMu.Unlock()
}
