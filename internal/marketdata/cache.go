package marketdata

import (
	"strings"
	"sync"
	"time"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

// ttlByTimeframe is the TTL table of spec.md §4.4, keyed by timeframe.
var ttlByTimeframe = map[ohlc.Timeframe]time.Duration{
	ohlc.TF1m:  30 * time.Second,
	ohlc.TF3m:  30 * time.Second,
	ohlc.TF5m:  45 * time.Second,
	ohlc.TF15m: 60 * time.Second,
	ohlc.TF1h:  120 * time.Second,
	ohlc.TF4h:  300 * time.Second,
	ohlc.TF1d:  900 * time.Second,
	ohlc.TF1w:  3600 * time.Second,
	ohlc.TF1M:  3600 * time.Second,
}

const defaultTTL = 300 * time.Second

func ttlFor(tf ohlc.Timeframe) time.Duration {
	if d, ok := ttlByTimeframe[tf]; ok {
		return d
	}
	return defaultTTL
}

// cacheEntry wraps a cached Result with its expiry, grounded on the
// teacher's cacheEntry shape in internal/data/cache/ttl.go (minus the
// LRU/maxEntries machinery the spec's cache does not call for).
type cacheEntry struct {
	result    Result
	expiresAt time.Time
	timeframe ohlc.Timeframe
}

// Cache is a single mutex-guarded map from "symbol:timeframe" to CacheEntry
// (spec.md §4.4), exclusively owned by one Service instance.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache constructs an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry), now: time.Now}
}

func cacheKey(symbol string, tf ohlc.Timeframe) string {
	return symbol + ":" + string(tf)
}

// Get returns a cached result if present and unexpired. On expiry the entry
// is lazily deleted. The returned Result is annotated Cached=true with its
// CacheExpiresAt.
func (c *Cache) Get(symbol string, tf ohlc.Timeframe) (Result, bool) {
	key := cacheKey(symbol, tf)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Result{}, false
	}

	now := c.now()
	if now.After(entry.expiresAt) || now.Equal(entry.expiresAt) {
		c.mu.Lock()
		if cur, stillThere := c.entries[key]; stillThere && cur.expiresAt == entry.expiresAt {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return Result{}, false
	}

	out := entry.result
	out.Cached = true
	out.CacheExpiresAt = entry.expiresAt
	return out, true
}

// Set stores result under (symbol, tf) with the timeframe's TTL. Error
// results (Success=false) are never cached, per spec.md §4.4 and §7.
func (c *Cache) Set(symbol string, tf ohlc.Timeframe, result Result) {
	if !result.Success {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(symbol, tf)] = cacheEntry{
		result:    result,
		expiresAt: c.now().Add(ttlFor(tf)),
		timeframe: tf,
	}
}

// Invalidate removes a single (symbol, tf) entry.
func (c *Cache) Invalidate(symbol string, tf ohlc.Timeframe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(symbol, tf))
}

// InvalidateSymbol removes every entry whose key begins with "symbol:".
func (c *Cache) InvalidateSymbol(symbol string) {
	prefix := symbol + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Size returns the number of entries currently stored (including any not
// yet lazily evicted past their TTL).
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Contains reports whether a live (unexpired) entry exists for (symbol, tf).
func (c *Cache) Contains(symbol string, tf ohlc.Timeframe) bool {
	_, ok := c.Get(symbol, tf)
	return ok
}
